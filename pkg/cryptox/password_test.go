package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	for _, password := range []string{"correct-horse", "", "épicerie🛒", strings.Repeat("a", 100)} {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"), hash)
		require.False(t, NeedsRehash(hash))

		require.NoError(t, VerifyPassword(password, hash))
		require.ErrorIs(t, VerifyPassword(password+" ", hash), ErrPasswordMismatch)
	}

	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "salts must differ")
}

func TestVerifyPassword_UnreadableHash(t *testing.T) {
	for name, hash := range map[string]string{
		"empty":           "",
		"bcrypt":          "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"truncated":       "$argon2id$v=19$m=19456",
		"bad parameters":  "$argon2id$v=19$invalid$c2FsdA$aGFzaA",
		"bad salt":        "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA",
		"old version":     "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"missing key":     "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$",
		"leading garbage": "x$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
	} {
		t.Run(name, func(t *testing.T) {
			err := VerifyPassword("test-password", hash)
			require.ErrorIs(t, err, ErrHashFormat)
			require.True(t, NeedsRehash(hash))
		})
	}
}

func TestNeedsRehash_OlderCost(t *testing.T) {
	pep, err := getPepper()
	require.NoError(t, err)

	cheap := phcHash{params: argonParams{Memory: 8 * 1024, Time: 1, Threads: 1}, salt: []byte("0123456789abcdef")}
	cheap.key = derive("legacy", pep, cheap.salt, cheap.params, keyLength)
	hash := cheap.String()

	require.NoError(t, VerifyPassword("legacy", hash), "older cost settings still verify")
	require.True(t, NeedsRehash(hash))
}

func TestPepper_PersistsAcrossReload(t *testing.T) {
	hash, err := HashPassword("persisted")
	require.NoError(t, err)

	// Forget the in-memory pepper; it must be read back from the same file.
	pepperMu.Lock()
	pepper = ""
	pepperMu.Unlock()

	require.NoError(t, VerifyPassword("persisted", hash))
}

func TestLoadOrGeneratePepper_Ephemeral(t *testing.T) {
	a, err := loadOrGeneratePepper("")
	require.NoError(t, err)
	b, err := loadOrGeneratePepper("")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
