package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/example/helpdesk/internal/models"
	"github.com/example/helpdesk/internal/session"
)

func testSession(expires time.Time) *session.Session {
	return &session.Session{
		ID:        "5f3c2a9e-1111-4222-8333-444455556666",
		UserID:    3,
		Username:  "alice",
		Role:      models.RoleUser,
		CreatedAt: time.Now().Add(-time.Minute),
		ExpiresAt: expires,
	}
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	s := testSession(time.Now().Add(time.Hour))
	token, err := issuer.Issue(s)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.SessionID != s.ID || claims.UserID != 3 || claims.Role != "user" || claims.Subject != "alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	expired, err := issuer.Issue(testSession(time.Now().Add(-time.Minute)))
	if err != nil {
		t.Fatal(err)
	}
	forged, err := NewTokenIssuer("other").Issue(testSession(time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	for name, token := range map[string]string{
		"expired": expired,
		"forged":  forged,
		"garbage": "not.a.token",
		"empty":   "",
	} {
		if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: error = %v, want ErrInvalidToken", name, err)
		}
	}
}
