package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store/drivers/sqlite/gen"
)

type accountTokensRepo struct {
	q *gen.Queries
}

func (r *accountTokensRepo) CreateToken(ctx context.Context, t domain.AccountToken) error {
	err := r.q.CreateAccountToken(ctx, gen.CreateAccountTokenParams{
		TokenHash: t.TokenHash,
		UserID:    t.UserID,
		Purpose:   t.Purpose,
		ExpiresAt: t.ExpiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	})
	return mapConstraint(err)
}

func (r *accountTokensRepo) GetToken(ctx context.Context, tokenHash string) (domain.AccountToken, error) {
	row, err := r.q.GetAccountToken(ctx, tokenHash)
	if err != nil {
		return domain.AccountToken{}, mapNotFound(err)
	}
	return domain.AccountToken{
		TokenHash: row.TokenHash,
		UserID:    row.UserID,
		Purpose:   row.Purpose,
		ExpiresAt: row.ExpiresAt,
		UsedAt:    mapNullTimePtr(row.UsedAt),
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *accountTokensRepo) MarkUsed(ctx context.Context, tokenHash string, at time.Time) error {
	return r.q.MarkAccountTokenUsed(ctx, gen.MarkAccountTokenUsedParams{
		UsedAt:    sql.NullTime{Time: at.UTC(), Valid: true},
		TokenHash: tokenHash,
	})
}
