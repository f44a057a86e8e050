package jwt

import (
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	token, err := Issue("admin", "super-secret", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := ParseToken(token, "super-secret")
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("Username = %q, want %q", claims.Username, "admin")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := Issue("admin", "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := ParseToken(token, "wrong-secret"); err == nil {
		t.Error("ParseToken() error = nil, want an error for a mismatched secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := Issue("admin", "secret", -time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := ParseToken(token, "secret"); err == nil {
		t.Error("ParseToken() error = nil, want an error for an expired token")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-jwt", "secret"); err == nil {
		t.Error("ParseToken() error = nil, want an error for a malformed token")
	}
}
