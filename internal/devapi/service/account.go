package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/pkg/cryptox"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	ConfirmEmailTTL  = 72 * time.Hour
	ResetPasswordTTL = time.Hour

	minPasswordLength = 8

	MsgSignedUp        = "User created successfully. Please check your email to confirm your account."
	MsgEmailConfirmed  = "Email confirmed successfully."
	MsgResetLinkSent   = "If an account exists for that email, a password reset link has been sent."
	MsgPasswordChanged = "Password has been reset successfully."
)

// Mailer delivers account emails. The development backend has no mail
// server so the default just logs.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes each email to the request logger.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	slogx.FromContext(ctx).Info("email", slog.String("to", to), slog.String("subject", subject), slog.String("body", body))
	return nil
}

// NewUser is a signup request.
type NewUser struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

type AccountService struct {
	Store  store.Store
	Tokens *TokenService
	Mailer Mailer

	// LinkBase is the frontend origin the emailed links point at.
	LinkBase string
}

// Signup creates an unconfirmed account and mails a confirmation link.
func (s *AccountService) Signup(ctx context.Context, req NewUser) (int64, error) {
	l := slogx.FromContext(ctx)

	verr := &ValidationError{}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" {
		verr.Add("username", msgRequired)
	}
	if req.Email == "" {
		verr.Add("email", msgRequired)
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		verr.Add("email", "Enter a valid email address.")
	}
	checkPassword(verr, "password", req.Password)
	if err := verr.OrNil(); err != nil {
		return 0, err
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return 0, err
	}

	var userID int64
	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		if _, err := tx.Users().GetUserByEmail(ctx, req.Email); err == nil {
			verr.Add("email", "A user with that email already exists.")
			return verr
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		id, err := tx.Users().CreateUser(ctx, domain.User{
			Username:     req.Username,
			Email:        req.Email,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			PasswordHash: hash,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			verr.Add("username", "A user with that username already exists.")
			return verr
		}
		if err != nil {
			return err
		}
		userID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	link, err := s.mintLink(ctx, userID, domain.PurposeConfirmEmail, ConfirmEmailTTL, "/confirm-email")
	if err != nil {
		return 0, err
	}
	if err := s.mailer().Send(ctx, req.Email, "Confirm your email", "Confirm your account: "+link); err != nil {
		l.Warn("confirmation email not sent", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	l.Info("user signed up", slog.Int64("user_id", userID))
	return userID, nil
}

// ConfirmEmail redeems a confirmation link and logs the user in.
func (s *AccountService) ConfirmEmail(ctx context.Context, uid, token string) (domain.TokenPair, error) {
	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		userID, err := s.redeem(ctx, tx, uid, token, domain.PurposeConfirmEmail)
		if err != nil {
			return err
		}
		if err := tx.Users().ConfirmEmail(ctx, userID); err != nil {
			return err
		}
		user, err = tx.Users().GetUserByID(ctx, userID)
		return err
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).Info("email confirmed", slog.Int64("user_id", user.ID))
	return s.Tokens.Issue(user, time.Now())
}

// ForgotPassword mails a reset link when email belongs to an account. The
// outcome is the same either way so accounts cannot be enumerated.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" {
		verr := &ValidationError{}
		verr.Add("error", "Email is required.")
		return verr
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		l.Info("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	link, err := s.mintLink(ctx, user.ID, domain.PurposeResetPassword, ResetPasswordTTL, "/reset-password")
	if err != nil {
		return err
	}
	if err := s.mailer().Send(ctx, user.Email, "Reset your password", "Reset your password: "+link); err != nil {
		l.Warn("reset email not sent", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}
	return nil
}

// ResetPassword redeems a reset link and sets a new password.
func (s *AccountService) ResetPassword(ctx context.Context, uid, token, newPassword string) error {
	verr := &ValidationError{}
	checkPassword(verr, "error", newPassword)
	if err := verr.OrNil(); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Store) error {
		userID, err := s.redeem(ctx, tx, uid, token, domain.PurposeResetPassword)
		if err != nil {
			return err
		}
		return tx.Users().UpdatePasswordHash(ctx, userID, hash)
	})
}

// mintLink stores a one-time token for userID and returns the link that
// carries it.
func (s *AccountService) mintLink(ctx context.Context, userID int64, purpose string, ttl time.Duration, path string) (string, error) {
	token, err := cryptox.NewLinkToken()
	if err != nil {
		return "", err
	}

	err = s.Store.AccountTokens().CreateToken(ctx, domain.AccountToken{
		TokenHash: cryptox.LinkDigest(token),
		UserID:    userID,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("store %s token: %w", purpose, err)
	}

	q := url.Values{}
	q.Set("uid", EncodeUID(userID))
	q.Set("token", token)
	return strings.TrimRight(s.LinkBase, "/") + path + "?" + q.Encode(), nil
}

// redeem checks uid and token against a stored one-time token and marks it
// used. Every mismatch is ErrInvalidLink.
func (s *AccountService) redeem(ctx context.Context, tx store.Store, uid, token, purpose string) (int64, error) {
	userID, err := DecodeUID(uid)
	if err != nil || token == "" {
		return 0, ErrInvalidLink
	}

	hash := cryptox.LinkDigest(token)
	t, err := tx.AccountTokens().GetToken(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrInvalidLink
	}
	if err != nil {
		return 0, err
	}

	now := time.Now()
	if t.UserID != userID || t.Purpose != purpose || !t.Usable(now) || !cryptox.LinkMatches(token, t.TokenHash) {
		return 0, ErrInvalidLink
	}
	if err := tx.AccountTokens().MarkUsed(ctx, hash, now); err != nil {
		return 0, err
	}
	return userID, nil
}

func (s *AccountService) mailer() Mailer {
	if s.Mailer == nil {
		return LogMailer{}
	}
	return s.Mailer
}

func checkPassword(verr *ValidationError, field, password string) {
	switch {
	case password == "":
		verr.Add(field, msgRequired)
	case len(password) < minPasswordLength:
		verr.Add(field, fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
}

// EncodeUID renders a user id the way account links carry it.
func EncodeUID(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}
