package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// linkTokenBytes is 256 bits, 43 characters once encoded.
const linkTokenBytes = 32

// NewLinkToken returns the secret carried by an emailed confirmation or
// password reset link, base64url without padding.
func NewLinkToken() (string, error) {
	buf := make([]byte, linkTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random link token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// LinkDigest is what gets stored for a link token. Looking a link up by
// digest means a leaked table cannot be replayed as links.
func LinkDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// LinkMatches reports whether token hashes to digest.
func LinkMatches(token, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(LinkDigest(token)), []byte(digest)) == 1
}
