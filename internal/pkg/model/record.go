package model

// WireguardPeerRecord is the full, joined view of a WireGuard peer returned
// by Storage — the base Peer row plus its WireguardPeer extension. Kept as a
// flat struct (not embedding/inheritance) so callers see exactly the columns
// that live in each of the two tables (§4.1).
type WireguardPeerRecord struct {
	Peer
	WireguardPeer
}

// XrayPeerRecord is the joined view of an XRay peer.
type XrayPeerRecord struct {
	Peer
	XrayPeer
}

// AnyPeerRecord is the dispatch-friendly shape PeerOps and the observer work
// with, regardless of which backend a peer belongs to.
type AnyPeerRecord struct {
	Peer
	Wireguard *WireguardPeer
	Xray      *XrayPeer
}
