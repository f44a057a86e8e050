package peerconfig

import (
	"strings"
	"testing"

	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/pkg/options"
)

func TestRenderWireguardBasic(t *testing.T) {
	peer := &model.WireguardPeer{
		PrivateKey:   "client-priv",
		PublicKey:    "client-pub",
		PresharedKey: "psk",
		SharedIP:     "10.10.10.5",
	}
	wg := options.NewWireGuardOptions()
	wg.PublicKey = "server-pub"
	wg.EndpointIP = "203.0.113.1"
	wg.EndpointPort = 51820
	wg.DNS = "1.1.1.1"

	out := RenderWireguard(peer, wg)

	for _, want := range []string{
		"Address = 10.10.10.5/32",
		"DNS = 1.1.1.1",
		"PrivateKey = client-priv",
		"PublicKey = server-pub",
		"PresharedKey = psk",
		"Endpoint = 203.0.113.1:51820",
		"AllowedIPs = 0.0.0.0/0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered config missing %q; got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Jc =") {
		t.Error("rendered config should omit Amnezia jitter fields when IsAmnezia is false")
	}
}

func TestRenderWireguardAmnezia(t *testing.T) {
	peer := &model.WireguardPeer{
		PrivateKey:   "client-priv",
		PublicKey:    "client-pub",
		PresharedKey: "psk",
		SharedIP:     "10.10.10.6",
		IsAmnezia:    true,
		JunkJc:       10,
		JunkJmin:     100,
		JunkJmax:     200,
	}
	wg := options.NewWireGuardOptions()
	wg.PublicKey = "server-pub"
	wg.EndpointIP = "203.0.113.1"
	wg.JunkS1, wg.JunkS2 = 1, 2
	wg.JunkH1, wg.JunkH2, wg.JunkH3, wg.JunkH4 = 3, 4, 5, 6

	out := RenderWireguard(peer, wg)

	for _, want := range []string{"Jc = 10", "Jmin = 100", "Jmax = 200", "S1 = 1", "H4 = 6"} {
		if !strings.Contains(out, want) {
			t.Errorf("amnezia config missing %q; got:\n%s", want, out)
		}
	}
}
