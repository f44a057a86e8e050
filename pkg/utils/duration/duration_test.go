package duration

import (
	"testing"
	"time"
)

func TestParseCombined(t *testing.T) {
	got, err := Parse("1y2M3w4d5h6m")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := 365*24*time.Hour + 2*30*24*time.Hour + 3*7*24*time.Hour + 4*24*time.Hour + 5*time.Hour + 6*time.Minute
	if got != want {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

func TestParseSingleToken(t *testing.T) {
	got, err := Parse("7d")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != 7*24*time.Hour {
		t.Errorf("Parse() = %v, want 7 days", got)
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Error("Parse(\"\") error = nil, want an error")
	}
}

func TestParseMalformed(t *testing.T) {
	for _, literal := range []string{"abc", "3x", "3d ", "-3d", "3"} {
		if _, err := Parse(literal); err == nil {
			t.Errorf("Parse(%q) error = nil, want an error", literal)
		}
	}
}

func TestParseExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseExpiry("1d", now)
	if err != nil {
		t.Fatalf("ParseExpiry() error = %v", err)
	}
	want := now.Add(24 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("ParseExpiry() = %v, want %v", got, want)
	}
}
