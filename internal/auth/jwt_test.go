package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	issuer := NewIssuer("test-secret-key", "leasesync", time.Hour)

	token, expireAt, err := issuer.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if token == "" {
		t.Error("Expected non-empty token")
	}
	if time.Until(expireAt) <= 0 {
		t.Errorf("expireAt %v is not in the future", expireAt)
	}

	claims, err := issuer.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("Expected username admin, got %s", claims.Username)
	}
	if claims.Issuer != "leasesync" {
		t.Errorf("Expected issuer leasesync, got %s", claims.Issuer)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, err := NewIssuer("secret-a", "leasesync", time.Hour).GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	if _, err := NewIssuer("secret-b", "leasesync", time.Hour).ParseToken(token); err == nil {
		t.Error("Expected error for token signed with another secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	issuer := NewIssuer("test-secret-key", "leasesync", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := issuer.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	issuer.now = time.Now
	_, err = issuer.ParseToken(token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	issuer := NewIssuer("test-secret-key", "leasesync", time.Hour)
	if _, err := issuer.ParseToken("not-a-token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestIssuer_Disabled(t *testing.T) {
	issuer := NewIssuer("", "leasesync", time.Hour)
	if issuer.Enabled() {
		t.Error("issuer without secret should be disabled")
	}
	if _, _, err := issuer.GenerateToken("admin"); err == nil {
		t.Error("Expected error when secret is not set")
	}
}
