package authsdk

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionPayload is the unverified payload of an access credential. It is
// for display only; the backend is the sole verifier.
type SessionPayload struct {
	Username  string
	FirstName string
	LastName  string
	Email     string

	// Claims holds the whole decoded payload object.
	Claims map[string]any
}

// DisplayName is the first name, falling back to the username.
func (p SessionPayload) DisplayName() string {
	if p.FirstName != "" {
		return p.FirstName
	}
	return p.Username
}

// ExpiresAt reads the exp claim. ok is false when it is absent or not a
// number.
func (p SessionPayload) ExpiresAt() (t time.Time, ok bool) {
	exp, ok := p.Claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}

// segmentDecoder decodes base64url segments with or without padding.
var segmentDecoder = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeSession extracts the payload of a header.payload.signature
// credential without checking its signature. Every failure is a
// *DecodeError.
func DecodeSession(token string) (SessionPayload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return SessionPayload{}, &DecodeError{Reason: "credential must have 3 segments"}
	}

	raw, err := segmentDecoder.DecodeSegment(parts[1])
	if err != nil {
		return SessionPayload{}, &DecodeError{Reason: "payload is not base64url", Err: err}
	}

	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return SessionPayload{}, &DecodeError{Reason: "payload is not a JSON object", Err: err}
	}
	if claims == nil {
		return SessionPayload{}, &DecodeError{Reason: "payload is not a JSON object"}
	}

	str := func(key string) string {
		s, _ := claims[key].(string)
		return s
	}
	return SessionPayload{
		Username:  str("username"),
		FirstName: str("first_name"),
		LastName:  str("last_name"),
		Email:     str("email"),
		Claims:    claims,
	}, nil
}

// Session decodes the stored access credential. ok is false when there is
// no credential or it cannot be decoded.
func Session(ctx context.Context, creds Credentials) (SessionPayload, bool) {
	access, ok := creds.Access(ctx)
	if !ok {
		return SessionPayload{}, false
	}
	p, err := DecodeSession(access)
	return p, err == nil
}
