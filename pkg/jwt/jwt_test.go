package jwt

import (
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"dashboard-engagement/server/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:   "test-secret-key-for-unit-testing-2026",
		JWTAudience: "authenticated",
	})
}

func TestGenerateAndParseToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateToken("user-1", "officer@sjsu.edu", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if claims.Subject != "user-1" {
		t.Errorf("expected Subject=user-1, got %s", claims.Subject)
	}
	if claims.Email != "officer@sjsu.edu" {
		t.Errorf("expected Email=officer@sjsu.edu, got %s", claims.Email)
	}
	if claims.Role != "authenticated" {
		t.Errorf("expected Role=authenticated, got %s", claims.Role)
	}
	if claims.ID == "" {
		t.Error("jti should not be empty")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 14*time.Minute || ttl > 16*time.Minute {
		t.Errorf("expected TTL of about 15m, got %v", ttl)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{JWTSecret: "different-secret-key", JWTAudience: "authenticated"})

	token, _ := m1.GenerateToken("user-1", "a@sjsu.edu", time.Minute)
	if _, err := m2.ParseToken(token); err == nil {
		t.Error("a token signed with another secret must not verify")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := newTestManager()

	token, _ := m.GenerateToken("user-1", "a@sjsu.edu", -time.Minute)
	_, err := m.ParseToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongAudience(t *testing.T) {
	issuer := NewManager(&config.AuthConfig{JWTSecret: "shared-secret", JWTAudience: "anon"})
	verifier := NewManager(&config.AuthConfig{JWTSecret: "shared-secret", JWTAudience: "authenticated"})

	token, _ := issuer.GenerateToken("user-1", "a@sjsu.edu", time.Minute)
	if _, err := verifier.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for audience mismatch, got %v", err)
	}
}

func TestParseToken_RejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager()

	claims := Claims{RegisteredClaims: jwtv5.RegisteredClaims{
		Subject:   "user-1",
		Audience:  jwtv5.ClaimStrings{"authenticated"},
		ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing unsigned token: %v", err)
	}

	if _, err := m.ParseToken(token); err == nil {
		t.Error("an unsigned token must not verify")
	}
}

func TestManager_Disabled(t *testing.T) {
	m := NewManager(&config.AuthConfig{})

	if m.Enabled() {
		t.Fatal("manager without secret should be disabled")
	}
	if _, err := m.ParseToken("x.y.z"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := m.GenerateToken("u", "e", time.Minute); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
