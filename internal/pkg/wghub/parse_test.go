package wghub

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestParseServerConfigInterfaceAndPeer(t *testing.T) {
	data := []byte(`[Interface]
PrivateKey = server-priv
Address = 10.10.10.1/24
ListenPort = 51820

[Peer]
PublicKey = peer-pub
PresharedKey = peer-psk
AllowedIPs = 10.10.10.2/32
`)
	config := ParseServerConfig(data)

	if config.Interface == nil {
		t.Fatal("Interface = nil, want parsed [Interface] block")
	}
	if config.Interface.PrivateKey != "server-priv" {
		t.Errorf("Interface.PrivateKey = %q, want server-priv", config.Interface.PrivateKey)
	}
	if config.Interface.Address != "10.10.10.1/24" {
		t.Errorf("Interface.Address = %q, want 10.10.10.1/24", config.Interface.Address)
	}

	if len(config.Peers) != 1 {
		t.Fatalf("len(Peers) = %d, want 1", len(config.Peers))
	}
	peer := config.Peers[0]
	if peer.PublicKey != "peer-pub" || peer.PresharedKey != "peer-psk" || peer.AllowedIPs != "10.10.10.2/32" {
		t.Errorf("parsed peer = %+v, want matching fields", peer)
	}
	if peer.Managed {
		t.Error("Managed = true, want false for a stanza outside the managed block")
	}
}

func TestParseServerConfigManagedBlockRoundTrip(t *testing.T) {
	data := []byte(`[Interface]
PrivateKey = server-priv
Address = 10.10.10.1/24

# human comment outside managed block
[Peer]
PublicKey = human-pub
AllowedIPs = 10.10.10.9/32

` + managedBlockBegin + `
# managed-peer
[Peer]
PublicKey = managed-pub
PresharedKey = managed-psk
AllowedIPs = 10.10.10.2/32
` + managedBlockEnd + `
`)
	config := ParseServerConfig(data)

	if len(config.Peers) != 2 {
		t.Fatalf("len(Peers) = %d, want 2", len(config.Peers))
	}
	human, managed := config.Peers[0], config.Peers[1]
	if human.Managed {
		t.Error("human peer Managed = true, want false")
	}
	if !managed.Managed {
		t.Error("managed peer Managed = false, want true")
	}

	out := RenderServerConfig(config)
	if !strings.Contains(string(out), managedBlockBegin) || !strings.Contains(string(out), managedBlockEnd) {
		t.Error("rendered config missing managed-block markers around the managed peer")
	}
	if !strings.Contains(string(out), "PublicKey = human-pub") {
		t.Error("rendered config lost the human-edited peer stanza")
	}
}

func TestRenderServerConfigDisabledPeerCommentedOut(t *testing.T) {
	config := &ServerConfig{
		Interface: &InterfaceBlock{PrivateKey: "priv", Address: "10.10.10.1/24", Extra: map[string]string{}},
		Peers: []*PeerBlock{
			{PublicKey: "pub1", AllowedIPs: "10.10.10.2/32", Disabled: true, Managed: true, Extra: map[string]string{}},
		},
	}
	out := string(RenderServerConfig(config))

	if !strings.Contains(out, "#[Peer]") && !strings.Contains(out, "#PublicKey = pub1") {
		t.Errorf("disabled peer should be commented out in rendered config; got:\n%s", out)
	}

	// A disabled stanza is commented out, not dropped: re-parsing it must
	// reconstruct the same peer with Disabled still set, so EnablePeer keeps
	// finding it by public key across a process restart.
	reparsed := ParseServerConfig([]byte(out))
	if len(reparsed.Peers) != 1 {
		t.Fatalf("disabled stanza reparsed as %d peers, want 1", len(reparsed.Peers))
	}
	peer := reparsed.Peers[0]
	if !peer.Disabled {
		t.Error("reparsed peer Disabled = false, want true")
	}
	if peer.PublicKey != "pub1" {
		t.Errorf("reparsed peer PublicKey = %q, want pub1", peer.PublicKey)
	}
	if peer.AllowedIPs != "10.10.10.2/32" {
		t.Errorf("reparsed peer AllowedIPs = %q, want 10.10.10.2/32", peer.AllowedIPs)
	}
	if !peer.Managed {
		t.Error("reparsed peer Managed = false, want true")
	}
}

func TestParseServerConfigEnablesDisabledPeerAfterRestart(t *testing.T) {
	// Simulates boot.New loading a config file that already has a peer
	// disabled from a prior run: EnablePeer must find it by public key.
	dir := t.TempDir()
	path := dir + "/wg0.conf"
	data := []byte(`[Interface]
PrivateKey = server-priv
Address = 10.10.10.1/24

` + managedBlockBegin + `
#[Peer]
#PublicKey = disabled-pub
#AllowedIPs = 10.10.10.5/32
` + managedBlockEnd + `
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	h, err := New(path, false, WithAutoSync(false))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := h.EnablePeer(context.Background(), "disabled-pub"); err != nil {
		t.Fatalf("EnablePeer() after restart error = %v, want peer found and re-enabled", err)
	}
}

func TestParseServerConfigEmptyData(t *testing.T) {
	config := ParseServerConfig(nil)
	if config.Interface != nil {
		t.Error("Interface = non-nil, want nil for empty input")
	}
	if len(config.Peers) != 0 {
		t.Error("Peers = non-empty, want none for empty input")
	}
}
