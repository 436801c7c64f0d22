package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrPasswordMismatch is returned by VerifyPassword for a wrong password.
var ErrPasswordMismatch = errors.New("password does not match")

// ErrHashFormat wraps every failure to read a stored hash.
var ErrHashFormat = errors.New("cryptox: unrecognised password hash")

// argonParams are the Argon2id cost settings recorded in each hash.
type argonParams struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
}

// currentParams is what new hashes use: the OWASP minimum for Argon2id.
var currentParams = argonParams{Memory: 19 * 1024, Time: 2, Threads: 1}

const (
	saltLength = 16
	keyLength  = 32
)

// phcHash is a decoded "$argon2id$v=19$m=..,t=..,p=..$salt$key" string.
type phcHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func (h phcHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func parsePHC(encoded string) (phcHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return phcHash{}, fmt.Errorf("%w: expected 6 segments", ErrHashFormat)
	}
	if parts[1] != "argon2id" {
		return phcHash{}, fmt.Errorf("%w: algorithm %q", ErrHashFormat, parts[1])
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return phcHash{}, fmt.Errorf("%w: version %q", ErrHashFormat, parts[2])
	}

	var h phcHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Time, &h.params.Threads); err != nil {
		return phcHash{}, fmt.Errorf("%w: parameters: %w", ErrHashFormat, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return phcHash{}, fmt.Errorf("%w: salt: %w", ErrHashFormat, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return phcHash{}, fmt.Errorf("%w: key: %w", ErrHashFormat, err)
	}
	if len(h.key) == 0 {
		return phcHash{}, fmt.Errorf("%w: empty key", ErrHashFormat)
	}
	return h, nil
}

func derive(password, pepper string, salt []byte, p argonParams, n uint32) []byte {
	return argon2.IDKey([]byte(password+pepper), salt, p.Time, p.Memory, p.Threads, n)
}

// HashPassword hashes password with a fresh salt and the current cost
// settings, in PHC string form.
func HashPassword(password string) (string, error) {
	pep, err := getPepper()
	if err != nil {
		return "", err
	}

	h := phcHash{params: currentParams, salt: make([]byte, saltLength)}
	if _, err := rand.Read(h.salt); err != nil {
		return "", err
	}
	h.key = derive(password, pep, h.salt, h.params, keyLength)
	return h.String(), nil
}

// VerifyPassword checks password against a hash from HashPassword, using
// whatever cost settings the hash records.
func VerifyPassword(password, encoded string) error {
	h, err := parsePHC(encoded)
	if err != nil {
		return err
	}
	pep, err := getPepper()
	if err != nil {
		return err
	}

	got := derive(password, pep, h.salt, h.params, uint32(len(h.key))) // #nosec G115 -- key lengths are tiny
	if subtle.ConstantTimeCompare(got, h.key) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether encoded was made with cost settings other
// than the current ones. Unreadable hashes need one too.
func NeedsRehash(encoded string) bool {
	h, err := parsePHC(encoded)
	return err != nil || h.params != currentParams || len(h.key) != keyLength
}
