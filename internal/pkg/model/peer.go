package model

import "time"

// Peer kinds (§3).
const (
	PeerKindWireguard        = "wireguard"
	PeerKindAmneziaWireguard = "amnezia_wireguard"
	PeerKindXray             = "xray"
)

// Peer status values (§3).
const (
	PeerStatusDisconnected = "disconnected"
	PeerStatusConnected    = "connected"
	PeerStatusTimeExpired  = "time_expired"
	PeerStatusBlocked      = "blocked"
)

// Peer is the common row shared by every protocol-specific peer; it is
// joined to exactly one protocol extension table (WireguardPeers or
// XrayPeers) on ID, per §9's "ORM with runtime-reflected models" redesign —
// two real tables, not struct inheritance mapped by the ORM.
type Peer struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	UserID     string     `json:"user_id" gorm:"index:idx_peer_user_name,priority:1;not null"`
	Name       string     `json:"name" gorm:"index:idx_peer_user_name,priority:2,unique;not null" validate:"required,max=15"`
	Kind       string     `json:"kind" gorm:"index;not null"`
	Status     string     `json:"status" gorm:"index;not null"`
	ActiveUntil *time.Time `json:"active_until,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// User is declared solely so gorm emits the FK + ON DELETE CASCADE
	// required by §3 invariant 5 ("deleting a User cascades to all its
	// Peers"); callers never populate or read it directly.
	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// IsWireguard reports whether this peer's kind is one of the two WireGuard
// flavors (standard or Amnezia).
func (p *Peer) IsWireguard() bool {
	return p.Kind == PeerKindWireguard || p.Kind == PeerKindAmneziaWireguard
}

// IsLive reports whether, per §3 invariant 4, a Connected peer's active-until
// is still in the future relative to now. A Connected peer whose active_until
// equals now exactly is treated as expired (§8 boundary behaviour).
func (p *Peer) IsLive(now time.Time) bool {
	if p.ActiveUntil == nil {
		return false
	}
	return p.ActiveUntil.After(now)
}
