package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/pkg/cryptox"
	"github.com/aussiebroadwan/pricecheck/pkg/jwtx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

type TokenService struct {
	Signer     jwtx.Signer
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login implements the password grant. Unknown users, wrong passwords and
// accounts whose email is unconfirmed are all ErrInvalidCredentials.
func (s *TokenService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password grant for unknown user", slog.String("username", username))
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("password grant rejected", slog.Int64("user_id", user.ID))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if !user.EmailConfirmed {
		l.Info("password grant for unconfirmed account", slog.Int64("user_id", user.ID))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if cryptox.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	return s.Issue(user, time.Now())
}

// rehash upgrades a stored hash made with older cost settings. Failure
// only costs the upgrade, so it is logged and the grant goes ahead.
func (s *TokenService) rehash(ctx context.Context, userID int64, password string) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		l.Warn("password rehash failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return
	}
	l.Info("password rehashed", slog.Int64("user_id", userID))
}

// IssueFor signs a pair for username as of now without a password check.
// It backs the development tooling that needs credentials minted at a
// chosen time, such as already expired ones.
func (s *TokenService) IssueFor(ctx context.Context, username string, now time.Time) (domain.TokenPair, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.Issue(user, now)
}

// Issue signs a fresh access and refresh pair for user as of now.
func (s *TokenService) Issue(user domain.User, now time.Time) (domain.TokenPair, error) {
	pair, err := jwtx.IssuePair(s.Signer, jwtx.Identity{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, s.Issuer, s.AccessTTL, s.RefreshTTL, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{Access: pair.Access, Refresh: pair.Refresh}, nil
}
