package authz

import "testing"

func TestEnforceAdminAllowedOnV1(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	ok, err := e.Enforce(SubjectAdmin, "/v1/users", "GET")
	if err != nil {
		t.Fatalf("Enforce() error = %v", err)
	}
	if !ok {
		t.Error("Enforce() = false, want true for admin on /v1/*")
	}
}

func TestEnforceGuestDeniedOnV1(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	ok, err := e.Enforce(SubjectGuest, "/v1/users", "GET")
	if err != nil {
		t.Fatalf("Enforce() error = %v", err)
	}
	if ok {
		t.Error("Enforce() = true, want false: guest must not reach /v1/*")
	}
}

func TestEnforceGuestAllowedOnHealthz(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	ok, err := e.Enforce(SubjectGuest, "/healthz", "GET")
	if err != nil {
		t.Fatalf("Enforce() error = %v", err)
	}
	if !ok {
		t.Error("Enforce() = false, want true: guest may reach /healthz")
	}
}
