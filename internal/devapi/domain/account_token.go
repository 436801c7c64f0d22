package domain

import "time"

// Purposes of a one-time account token.
const (
	PurposeConfirmEmail  = "confirm_email"
	PurposeResetPassword = "reset_password"
)

// AccountToken is a one-time token mailed in a confirmation or password
// reset link. Only the fingerprint is stored.
type AccountToken struct {
	TokenHash string
	UserID    int64
	Purpose   string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be redeemed at now.
func (t AccountToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
