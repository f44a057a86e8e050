// Package wghub implements §4.2's WGHub: an in-memory mirror of a WireGuard
// interface config file, kept in sync with the kernel interface through a
// write-then-sync contract.
package wghub

// InterfaceBlock is the parsed [Interface] section of a server config.
type InterfaceBlock struct {
	PrivateKey string
	Address    string
	ListenPort string
	MTU        string
	DNS        string
	PostUp     string
	PostDown   string
	// Junk holds the six Amnezia jitter parameters (S1,S2,H1,H2,H3,H4) as
	// Extra entries when IsAmnezia is set; empty otherwise.
	Extra map[string]string
}

// PeerBlock is one [Peer] stanza, keyed by PublicKey within a ServerConfig.
type PeerBlock struct {
	Comment             string
	PublicKey           string
	PresharedKey        string
	AllowedIPs          string
	Endpoint            string
	PersistentKeepalive int
	// Disabled marks a stanza as commented out: present in the model but not
	// emitted as a live [Peer] block (§4.2's enable_peer/disable_peer toggle).
	Disabled bool
	// Managed marks a stanza as owned by this hub (inside the managed
	// block), as opposed to a human-edited stanza outside it that round-trips
	// unchanged.
	Managed bool
	Extra   map[string]string
}

// ServerConfig is the full parsed file: one interface, an ordered peer list,
// and any raw lines outside both (comments, unknown sections) that must
// round-trip byte-for-byte per §8.
type ServerConfig struct {
	Interface *InterfaceBlock
	Peers     []*PeerBlock
	RawLines  []string
}

const (
	managedBlockBegin = "# vpncore managed peers BEGIN"
	managedBlockEnd   = "# vpncore managed peers END"
)
