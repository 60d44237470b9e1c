// Package auth issues and verifies session tokens for users signed in
// through the external OAuth provider.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims are the JWT claims carried by a session token. The subject is the
// user's email address.
type Claims struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}

// Session is the authenticated identity attached to a request.
type Session struct {
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	UserID    *uuid.UUID `json:"userId"`
	IsAdmin   bool       `json:"isAdmin"`
	TokenID   string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Identity is the profile a token is issued for.
type Identity struct {
	Email     string
	Name      string
	AvatarURL string
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenManager returns a manager signing with secret. issuer doubles as
// the audience.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: issuer,
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL is the lifetime of newly issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for id.
func (m *TokenManager) Issue(id Identity) (string, *Claims, error) {
	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" {
		return "", nil, errors.New("cannot issue a token without an email")
	}

	now := m.now()
	claims := &Claims{
		Name:      id.Name,
		AvatarURL: id.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature, expiry, issuer and audience of raw.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SessionFromClaims builds the session view of verified claims.
func SessionFromClaims(c *Claims) *Session {
	s := &Session{
		Email:     c.Subject,
		Name:      c.Name,
		AvatarURL: c.AvatarURL,
		TokenID:   c.ID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
