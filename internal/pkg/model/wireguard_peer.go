package model

// WireguardPeer extends Peer (joined on PeerID) with the WireGuard-specific
// key material, the assigned tunnel address, and the Amnezia jitter
// parameters (§3).
type WireguardPeer struct {
	PeerID          string `json:"peer_id" gorm:"primaryKey"`
	PrivateKey      string `json:"private_key" gorm:"not null"`
	PublicKey       string `json:"public_key" gorm:"uniqueIndex;not null"`
	PresharedKey    string `json:"preshared_key" gorm:"not null"`
	SharedIP        string `json:"shared_ip" gorm:"uniqueIndex;not null"` // stored as a.b.c.d, advertised as /32
	IsAmnezia       bool   `json:"is_amnezia" gorm:"not null;default:false"`
	JunkJc          int    `json:"junk_jc,omitempty"`   // [3,127]
	JunkJmin        int    `json:"junk_jmin,omitempty"` // [3,700]
	JunkJmax        int    `json:"junk_jmax,omitempty"` // (Jmin,1270]

	// Peer is declared solely so gorm emits the FK + ON DELETE CASCADE
	// required by §3 invariant 5 ("deleting a Peer cascades to its
	// protocol-specific row").
	Peer *Peer `json:"-" gorm:"foreignKey:PeerID;references:ID;constraint:OnDelete:CASCADE"`
}

// Amnezia jitter parameter bounds (§3).
const (
	JcMin   = 3
	JcMax   = 127
	JminMin = 3
	JminMax = 700
	JmaxMax = 1270
)
