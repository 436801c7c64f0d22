package authsdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// Well-known keys the credentials are persisted under.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// ErrCredentialNotFound is returned by a CredentialStore for an unset key.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialStore is durable key/value storage for credentials.
type CredentialStore interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Authenticator reports whether a session is currently held.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// Credentials is the session service handed to everything that reads or
// changes the stored credentials.
type Credentials interface {
	Authenticator
	SetTokens(ctx context.Context, access, refresh string) error
	Access(ctx context.Context) (string, bool)
	Refresh(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
	Subscribe(fn func()) (unsubscribe func())
}

// TokenStore holds the access and refresh credentials. Every mutation is
// persisted before the Bus event announcing it is published.
type TokenStore struct {
	mu      sync.Mutex
	backend CredentialStore
	bus     *Bus
	logger  *slog.Logger
}

var _ Credentials = (*TokenStore)(nil)

// NewTokenStore binds a store to its backend and bus. A nil bus gets a
// private one.
func NewTokenStore(backend CredentialStore, bus *Bus, logger *slog.Logger) *TokenStore {
	logger = slogx.OrDefault(logger)
	if bus == nil {
		bus = NewBus(logger)
	}
	return &TokenStore{backend: backend, bus: bus, logger: logger}
}

// SetTokens persists both credentials and publishes one change event.
func (s *TokenStore) SetTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	err := s.backend.Save(ctx, AccessTokenKey, access)
	if err == nil {
		err = s.backend.Save(ctx, RefreshTokenKey, refresh)
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	s.bus.Publish()
	return nil
}

// Access returns the access credential if one is stored.
func (s *TokenStore) Access(ctx context.Context) (string, bool) {
	return s.load(ctx, AccessTokenKey)
}

// Refresh returns the refresh credential if one is stored.
func (s *TokenStore) Refresh(ctx context.Context) (string, bool) {
	return s.load(ctx, RefreshTokenKey)
}

func (s *TokenStore) load(ctx context.Context, key string) (string, bool) {
	v, err := s.backend.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCredentialNotFound) {
			s.logger.Warn("credential read failed", "key", key, "error", err)
		}
		return "", false
	}
	return v, v != ""
}

// Clear removes both credentials and publishes one change event. The event
// is published even when the backend fails so listeners re-read state.
func (s *TokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.backend.Delete(ctx, AccessTokenKey, RefreshTokenKey)
	s.mu.Unlock()

	s.bus.Publish()
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// IsAuthenticated is true iff a non-empty access credential is stored.
func (s *TokenStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Access(ctx)
	return ok
}

// Subscribe registers fn on the store's bus.
func (s *TokenStore) Subscribe(fn func()) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

// PartialState reports whether exactly one of the two credentials is set.
// It is logged, never repaired.
func (s *TokenStore) PartialState(ctx context.Context) bool {
	_, hasAccess := s.Access(ctx)
	_, hasRefresh := s.Refresh(ctx)
	if hasAccess != hasRefresh {
		s.logger.Warn("credential store holds only one credential",
			"access", hasAccess, "refresh", hasRefresh)
		return true
	}
	return false
}

// MemoryCredentials is a CredentialStore kept in memory.
type MemoryCredentials struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryCredentials returns an empty in-memory store.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{data: make(map[string]string)}
}

func (m *MemoryCredentials) Load(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", ErrCredentialNotFound
	}
	return v, nil
}

func (m *MemoryCredentials) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryCredentials) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
