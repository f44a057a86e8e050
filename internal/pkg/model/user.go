package model

import (
	"time"

	"github.com/marmotedu/component-base/pkg/validation"
	"github.com/marmotedu/component-base/pkg/validation/field"
)

// User is a principal identified by a stable external id (e.g. the chat
// platform's user id). It is created on first sight and never deleted by the
// core; only its status and expiry change.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"not null" validate:"required,max=64"`
	Status       string     `json:"status" gorm:"index;not null"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// User status values (§3).
const (
	UserStatusCreated        = "created"
	UserStatusIPBlocked      = "ip_blocked"
	UserStatusAccountBlocked = "account_blocked"
	UserStatusTimeExpired    = "time_expired"
	UserStatusConnected      = "connected"
	UserStatusDisconnected   = "disconnected"
)

// HasAnyConnectedPeer is a convenience used by the observer to decide whether
// a user should drop out of the Connected status when one of its peers does.
func (u *User) IsBlocked() bool {
	return u.Status == UserStatusAccountBlocked || u.Status == UserStatusTimeExpired
}

// Validate runs field-level struct validation ahead of GetOrCreate, on top
// of the JSON-binding validation already done at the HTTP boundary.
func (u *User) Validate() field.ErrorList {
	val := validation.NewValidator(u)
	return val.Validate()
}
