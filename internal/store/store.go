// Package store defines the Storage component of §4.1: a transactional
// typed store over Users, Peers, WireguardPeers and XrayPeers. Per §9's
// redesign flag against module-level singletons, there is no package-level
// accessor here — Boot constructs a Factory once and passes the handle down.
package store

import (
	"context"
	"time"

	"github.com/heavensgate/vpncore/internal/pkg/model"
)

// UpdatePeerFields is the base-field subset of update_peer(id, fields) in
// §4.1; only these may be patched via UpdatePeer. Extension-table fields are
// patched through the protocol-specific store methods instead.
type UpdatePeerFields struct {
	Name        *string
	Status      *string
	ActiveUntil **time.Time
}

// Factory is the full Storage capability set. A single concrete
// implementation (sqlite) backs it; Boot is the only place that constructs
// one.
type Factory interface {
	Users() UserStore
	WireguardPeers() WireguardPeerStore
	XrayPeers() XrayPeerStore
	Close() error
}

// UserStore covers the User-level operations of §4.1.
type UserStore interface {
	GetOrCreate(ctx context.Context, id, name string) (*model.User, bool, error)
	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	SetStatus(ctx context.Context, id, status string) error
	SetExpiry(ctx context.Context, id string, expiresAt *time.Time) error
}

// AddWireguardPeerParams is the input to add_wg_peer(user, shared_ip, keys?,
// is_amnezia, name?) of §4.1. PrivateKey/PublicKey/PresharedKey are optional:
// when empty, the store generates them via its injected keygen.KeyTool. When
// IsAmnezia is set and the Junk* fields are all zero, the store draws jitter
// parameters itself in the ranges stated in §3.
type AddWireguardPeerParams struct {
	UserID       string
	Name         string // empty means "derive <username>_<next_peer_id>"
	SharedIP     string
	PrivateKey   string // empty means "generate via KeyTool"
	PublicKey    string // empty means "derive from PrivateKey via KeyTool"
	PresharedKey string // empty means "generate via KeyTool"
	IsAmnezia    bool
	JunkJc       int // 0 means "draw in [JcMin,JcMax]" when IsAmnezia
	JunkJmin     int // 0 means "draw in [JminMin,JminMax]" when IsAmnezia
	JunkJmax     int // 0 means "draw in (Jmin,JmaxMax]" when IsAmnezia
}

// AddXrayPeerParams is the input to add_xray_peer (§4.1).
type AddXrayPeerParams struct {
	UserID    string
	Name      string
	InboundID int
	Flow      string
}

// WireguardPeerStore covers the WireGuard-specific peer operations of §4.1.
type WireguardPeerStore interface {
	Add(ctx context.Context, p AddWireguardPeerParams) (*model.WireguardPeerRecord, error)
	Get(ctx context.Context, peerID string) (*model.WireguardPeerRecord, error)
	GetByIP(ctx context.Context, ip string) (*model.WireguardPeerRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*model.WireguardPeerRecord, error)
	ListAll(ctx context.Context) ([]*model.WireguardPeerRecord, error)
	ListUsedIPs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, peerID string, fields UpdatePeerFields) error
	Delete(ctx context.Context, peerID string) error
}

// XrayPeerStore covers the XRay-specific peer operations of §4.1.
type XrayPeerStore interface {
	Add(ctx context.Context, p AddXrayPeerParams) (*model.XrayPeerRecord, error)
	Get(ctx context.Context, peerID string) (*model.XrayPeerRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*model.XrayPeerRecord, error)
	ListAll(ctx context.Context) ([]*model.XrayPeerRecord, error)
	Update(ctx context.Context, peerID string, fields UpdatePeerFields) error
	Delete(ctx context.Context, peerID string) error
}
