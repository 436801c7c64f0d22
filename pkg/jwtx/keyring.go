package jwtx

import (
	"crypto/ed25519"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// Keyring is the set of Ed25519 keys whose credentials are trusted, by kid.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
}

func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string]ed25519.PublicKey)}
}

// Trust accepts credentials signed by pub under kid from now on.
func (k *Keyring) Trust(kid string, pub ed25519.PublicKey) error {
	if kid == "" || len(pub) != ed25519.PublicKeySize {
		return errors.New("jwtx: refusing malformed verification key")
	}

	k.mu.Lock()
	k.keys[kid] = pub
	k.mu.Unlock()
	return nil
}

// TrustSigner trusts everything s signs.
func (k *Keyring) TrustSigner(s *Ed25519Signer) error {
	return k.Trust(s.KID(), s.PublicKey())
}

// Key returns the key trusted under kid.
func (k *Keyring) Key(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	pub, ok := k.keys[kid]
	if !ok {
		return nil, ErrNoKey
	}
	return pub, nil
}

// Ready reports whether any key is trusted yet.
func (k *Keyring) Ready() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}
