package model

// XrayPeer extends Peer (joined on PeerID) with the inbound id and flow tag
// needed to address the remote XRay admin API (§3).
type XrayPeer struct {
	PeerID    string `json:"peer_id" gorm:"primaryKey"`
	InboundID int    `json:"inbound_id" gorm:"index;not null"`
	Flow      string `json:"flow" gorm:"not null;default:''"`

	// Peer is declared solely so gorm emits the FK + ON DELETE CASCADE
	// required by §3 invariant 5.
	Peer *Peer `json:"-" gorm:"foreignKey:PeerID;references:ID;constraint:OnDelete:CASCADE"`
}
