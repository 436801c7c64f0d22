package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewClaims_CarryProfile(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := jwtx.NewRefreshClaims(shopper, time.Hour, testIssuer, now)

	require.Equal(t, jwtx.TokenTypeRefresh, c.TokenType)
	require.Equal(t, "7", c.Subject)
	require.Equal(t, testIssuer, c.Issuer)
	require.Equal(t, now.Add(time.Hour), c.ExpiresAt.Time)
	require.Equal(t, shopper, c.Identity())

	require.NoError(t, c.ValidateTokenType(jwtx.TokenTypeRefresh))
	require.ErrorIs(t, c.ValidateTokenType(jwtx.TokenTypeAccess), jwtx.ErrWrongType)

	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("grocer"), jwtx.ErrIssuer)
}

func TestValidateExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	at := func(d time.Duration) *jwt.NumericDate { return jwt.NewNumericDate(now.Add(d)) }

	tests := []struct {
		name    string
		exp     *jwt.NumericDate
		nbf     *jwt.NumericDate
		leeway  time.Duration
		wantErr error
	}{
		{name: "live", exp: at(time.Minute)},
		{name: "no bounds"},
		{name: "expired", exp: at(-time.Minute), wantErr: jwtx.ErrExpired},
		{name: "not yet valid", nbf: at(time.Minute), wantErr: jwtx.ErrNotYetValid},
		{name: "inside leeway", exp: at(-10 * time.Second), leeway: 30 * time.Second},
		{name: "beyond leeway", exp: at(-2 * time.Minute), leeway: 30 * time.Second, wantErr: jwtx.ErrExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: tt.exp, NotBefore: tt.nbf}}
			err := c.ValidateExpiryWithLeeway(tt.leeway)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
