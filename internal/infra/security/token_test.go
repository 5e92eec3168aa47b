package security

import (
	"errors"
	"testing"
	"time"

	"stayinn/internal/domain/identity"
)

func TestIssueVerifyRoundtrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	issued := identity.Claims{UserID: "user-1", Username: "pera", Role: identity.RoleHost}

	raw, err := m.Issue(issued, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != issued {
		t.Fatalf("claims = %+v, want %+v", got, issued)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewTokenManager("secret-a", time.Hour).Issue(
		identity.Claims{UserID: "user-1", Username: "pera", Role: identity.RoleGuest},
		time.Now(),
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenManager("secret-b", time.Hour).Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	raw, err := m.Issue(
		identity.Claims{UserID: "user-1", Username: "pera", Role: identity.RoleGuest},
		time.Now().Add(-time.Hour),
	)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}
