// Package store opens the durable credential store the shell keeps its
// session in.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/store/drivers/redis"
	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/store/drivers/sqlite"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
)

var (
	ErrNotFound      = authsdk.ErrCredentialNotFound
	ErrUnknownScheme = errors.New("store: unknown dsn scheme")
)

// Store is a credential store with a lifecycle. Drivers: sqlite, redis and
// memory.
type Store interface {
	authsdk.CredentialStore

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backend is still reachable.
	Ping(ctx context.Context) error
}

// Open selects a driver by DSN scheme:
//
//	sqlite:pricecheck.db     sqlite file (also file:...)
//	redis://host:6379/0      redis (also rediss://)
//	memory:                  process memory, lost on exit
//
// Migrations are applied before the store is returned.
func Open(dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		s, err = openSQLite(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "file:"):
		s, err = openSQLite(dsn)
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		s, err = openRedis(dsn)
	case dsn == "memory:" || dsn == "memory":
		s = NewMemory()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, dsn)
	}
	if err != nil {
		return nil, err
	}

	if err := s.ApplyMigrations(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return s, nil
}

func openSQLite(dsn string) (Store, error) {
	s, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return s, nil
}

func openRedis(dsn string) (Store, error) {
	s, err := redis.Open(dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Memory is a Store with no persistence.
type Memory struct {
	*authsdk.MemoryCredentials
}

func NewMemory() *Memory {
	return &Memory{MemoryCredentials: authsdk.NewMemoryCredentials()}
}

func (*Memory) ApplyMigrations() error     { return nil }
func (*Memory) Close() error               { return nil }
func (*Memory) Ping(context.Context) error { return nil }
