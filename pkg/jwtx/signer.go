package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer mints credentials.
type Signer interface {
	KID() string
	Sign(Claims) (string, error)
}

// Ed25519Signer signs credentials with EdDSA, stamping its kid into the
// header so a Keyring can pick the verification key.
type Ed25519Signer struct {
	kid string
	key ed25519.PrivateKey
}

// ParseSigner loads a PKCS8 PEM encoded Ed25519 private key.
func ParseSigner(kid string, pemKey []byte) (*Ed25519Signer, error) {
	block, _ := pem.Decode(pemKey)
	switch {
	case block == nil:
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	case block.Type != "PRIVATE KEY":
		return nil, fmt.Errorf("jwtx: expected PKCS8 PRIVATE KEY block, got %q", block.Type)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok || len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}
	if kid == "" {
		return nil, errors.New("jwtx: signer needs a kid")
	}

	return &Ed25519Signer{kid: kid, key: key}, nil
}

func (s *Ed25519Signer) KID() string { return s.kid }

// PublicKey is the half a Keyring trusts.
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

func (s *Ed25519Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Pair is what a successful password grant hands back.
type Pair struct {
	Access  string
	Refresh string
}

// IssuePair signs an access and a refresh credential for id, both issued
// at now. Non-positive lifetimes fall back to the defaults.
func IssuePair(s Signer, id Identity, issuer string, accessTTL, refreshTTL time.Duration, now time.Time) (Pair, error) {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}

	access, err := s.Sign(NewAccessClaims(id, accessTTL, issuer, now))
	if err != nil {
		return Pair{}, fmt.Errorf("jwtx: sign access: %w", err)
	}
	refresh, err := s.Sign(NewRefreshClaims(id, refreshTTL, issuer, now))
	if err != nil {
		return Pair{}, fmt.Errorf("jwtx: sign refresh: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}
