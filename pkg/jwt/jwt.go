package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dashboard-engagement/server/config"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrNotConfigured = errors.New("jwt secret not configured")
)

// Claims is the subset of a Supabase access token the server looks at.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"` // "authenticated" for signed-in dashboard users
	jwtv5.RegisteredClaims
}

// Manager verifies (and, for local tooling, issues) HS256 tokens signed with
// the project's JWT secret.
type Manager struct {
	secret   []byte
	audience string
}

// NewManager builds a Manager from auth settings.
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:   []byte(cfg.JWTSecret),
		audience: cfg.JWTAudience,
	}
}

// Enabled reports whether a secret is configured.
func (m *Manager) Enabled() bool {
	return len(m.secret) > 0
}

// GenerateToken issues a token shaped like a Supabase session token.
func (m *Manager) GenerateToken(subject, email string, ttl time.Duration) (string, error) {
	if !m.Enabled() {
		return "", ErrNotConfigured
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	if m.audience != "" {
		claims.Audience = jwtv5.ClaimStrings{m.audience}
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies signature, expiry and (when configured) audience.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if !m.Enabled() {
		return nil, ErrNotConfigured
	}

	opts := []jwtv5.ParserOption{jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()})}
	if m.audience != "" {
		opts = append(opts, jwtv5.WithAudience(m.audience))
	}

	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
