package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrWrongType   = errors.New("jwtx: wrong token type")
)

// IsExpired reports whether err came from an expired credential, whether
// the jwt parser or our own claim checks noticed.
func IsExpired(err error) bool {
	return errors.Is(err, ErrExpired) || errors.Is(err, jwt.ErrTokenExpired)
}

// Verifier checks a credential of the given token type ("access" or
// "refresh") and returns its claims. An empty tokenType accepts either.
type Verifier interface {
	Verify(token, tokenType string) (Claims, error)
}

// KeyringVerifier verifies EdDSA credentials against a Keyring.
type KeyringVerifier struct {
	keys   *Keyring
	issuer string
	parser *jwt.Parser
}

func NewVerifier(keys *Keyring, issuer string) *KeyringVerifier {
	return &KeyringVerifier{
		keys:   keys,
		issuer: issuer,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()})),
	}
}

func (v *KeyringVerifier) Verify(raw, tokenType string) (Claims, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(raw, &claims, v.keyFor)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidSig, err)
	default:
		return Claims{}, fmt.Errorf("jwtx: verify: %w", err)
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}
	if tokenType != "" {
		if err := claims.ValidateTokenType(tokenType); err != nil {
			return Claims{}, err
		}
	}
	return claims, nil
}

func (v *KeyringVerifier) keyFor(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", ErrUnknownKID)
	}
	pub, err := v.keys.Key(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrUnknownKID, kid, err)
	}
	return pub, nil
}
