package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/pricecheck/pkg/cryptox"
	"github.com/aussiebroadwan/pricecheck/pkg/jwtx"
)

const signingKeyID = "devapi-1"

// Keys is the signing key with the verifier for credentials it signed.
type Keys struct {
	Signer   *jwtx.Ed25519Signer
	Keyring  *jwtx.Keyring
	Verifier jwtx.Verifier
}

// InitKeys loads the Ed25519 signing key, generating it on first use. With
// no key file the key is ephemeral and every restart invalidates issued
// credentials.
func InitKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	pemKey, err := cryptox.LoadOrGenerateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, err
	}

	signer, err := jwtx.ParseSigner(signingKeyID, pemKey)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}

	ring := jwtx.NewKeyring()
	if err := ring.TrustSigner(signer); err != nil {
		return nil, err
	}

	if cfg.SigningKeyFile == "" {
		logger.Warn("ephemeral signing key: credentials are invalid after restart")
	} else {
		logger.Info("signing key loaded", "kid", signer.KID(), "file", cfg.SigningKeyFile)
	}

	return &Keys{
		Signer:   signer,
		Keyring:  ring,
		Verifier: jwtx.NewVerifier(ring, cfg.Issuer),
	}, nil
}
