// Package authz gates the administrative HTTP surface (§2a) against the
// admin-id set from [TelegramBot] admins. The core "accepts ... an
// administrator set as inputs" per §1 — it never reimplements chat auth,
// only this one operator-facing gate.
package authz

// Subject roles recognised by the casbin policy.
const (
	SubjectAdmin = "admin"
	SubjectGuest = "guest"
)
