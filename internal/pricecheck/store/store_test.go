package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/store"
)

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name string
		dsn  string
	}{
		{"memory", "memory:"},
		{"sqlite scheme", "sqlite:" + filepath.Join(t.TempDir(), "a.db")},
		{"file scheme", "file:" + filepath.Join(t.TempDir(), "b.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.Open(tt.dsn)
			require.NoError(t, err)
			defer s.Close()

			require.NoError(t, s.Ping(ctx))
			require.NoError(t, s.Save(ctx, "k", "v"))
			v, err := s.Load(ctx, "k")
			require.NoError(t, err)
			require.Equal(t, "v", v)

			_, err = s.Load(ctx, "other")
			require.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestOpen_UnknownScheme(t *testing.T) {
	t.Parallel()
	_, err := store.Open("postgres://localhost/db")
	require.ErrorIs(t, err, store.ErrUnknownScheme)
}
