package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/pricecheck/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func parseEd25519(t *testing.T, pemBytes []byte) ed25519.PrivateKey {
	t.Helper()

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	keyInterface, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)

	key, ok := keyInterface.(ed25519.PrivateKey)
	require.True(t, ok)
	return key
}

func TestGenerateEd25519Key(t *testing.T) {
	t.Parallel()

	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.Len(t, parseEd25519(t, pemBytes), ed25519.PrivateKeySize)
}

func TestLoadOrGenerateEd25519Key(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keys", "signing.pem")

	first, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)

	second, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "second call should read the saved key")
	require.Equal(t, parseEd25519(t, first), parseEd25519(t, second))

	ephemeral, err := cryptox.LoadOrGenerateEd25519Key("")
	require.NoError(t, err)
	require.NotEqual(t, first, ephemeral)
}
