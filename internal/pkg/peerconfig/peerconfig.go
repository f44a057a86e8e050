// Package peerconfig renders the client-facing config text of §6: a
// WireGuard `.conf` file for WireguardPeer records, or delegates to
// XrayWorker.GetConnectionString for XrayPeer records.
package peerconfig

import (
	"fmt"
	"strings"

	"github.com/heavensgate/vpncore/internal/pkg/model"
	"github.com/heavensgate/vpncore/pkg/options"
)

// RenderWireguard builds the `.conf` text of §6 for peer, relative to the
// server's WireGuard and Xray-unrelated config.
func RenderWireguard(peer *model.WireguardPeer, wg *options.WireGuardOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[Interface]\n")
	fmt.Fprintf(&b, "Address = %s/32\n", peer.SharedIP)
	if wg.DNS != "" {
		fmt.Fprintf(&b, "DNS = %s\n", wg.DNS)
	}
	fmt.Fprintf(&b, "PrivateKey = %s\n", peer.PrivateKey)
	if peer.IsAmnezia {
		fmt.Fprintf(&b, "Jc = %d\n", peer.JunkJc)
		fmt.Fprintf(&b, "Jmin = %d\n", peer.JunkJmin)
		fmt.Fprintf(&b, "Jmax = %d\n", peer.JunkJmax)
		fmt.Fprintf(&b, "S1 = %d\n", wg.JunkS1)
		fmt.Fprintf(&b, "S2 = %d\n", wg.JunkS2)
		fmt.Fprintf(&b, "H1 = %d\n", wg.JunkH1)
		fmt.Fprintf(&b, "H2 = %d\n", wg.JunkH2)
		fmt.Fprintf(&b, "H3 = %d\n", wg.JunkH3)
		fmt.Fprintf(&b, "H4 = %d\n", wg.JunkH4)
	}
	fmt.Fprintf(&b, "\n[Peer]\n")
	fmt.Fprintf(&b, "PublicKey = %s\n", wg.PublicKey)
	fmt.Fprintf(&b, "PresharedKey = %s\n", peer.PresharedKey)
	fmt.Fprintf(&b, "AllowedIPs = 0.0.0.0/0\n")
	fmt.Fprintf(&b, "Endpoint = %s:%d\n", wg.EndpointIP, wg.EndpointPort)
	fmt.Fprintf(&b, "PersistentKeepalive = 60\n")

	return b.String()
}
