package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default credential lifetimes, matching the backend's simplejwt settings.
const (
	DefaultAccessTokenTTL  = 5 * time.Minute
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// Token types carried in the "token_type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Identity is the user profile embedded into every credential so clients
// can render a display name without another round trip.
type Identity struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// Claims are the credential claims issued by the pricecheck backend. The
// profile fields are read back, unverified, by the client session decoder.
type Claims struct {
	jwt.RegisteredClaims

	TokenType string `json:"token_type"`
	UserID    int64  `json:"user_id"`

	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// NewAccessClaims builds access credential claims for id.
func NewAccessClaims(id Identity, ttl time.Duration, issuer string, now time.Time) Claims {
	return newClaims(TokenTypeAccess, id, ttl, issuer, now)
}

// NewRefreshClaims builds refresh credential claims for id.
func NewRefreshClaims(id Identity, ttl time.Duration, issuer string, now time.Time) Claims {
	return newClaims(TokenTypeRefresh, id, ttl, issuer, now)
}

func newClaims(tokenType string, id Identity, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenType: tokenType,
		UserID:    id.UserID,
		Username:  id.Username,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Email:     id.Email,
	}
}

// Identity returns the profile carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:    c.UserID,
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateTokenType rejects a refresh credential presented as an access
// credential and vice versa.
func (c *Claims) ValidateTokenType(expected string) error {
	if c.TokenType != expected {
		return ErrWrongType
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
