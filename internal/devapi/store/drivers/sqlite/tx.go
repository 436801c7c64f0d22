package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store/drivers/sqlite/gen"
)

// txStore runs the same generated queries bound to one transaction.
type txStore struct {
	q *gen.Queries
}

func newTx(tx *sql.Tx, q *gen.Queries) *txStore {
	return &txStore{q: q.WithTx(tx)}
}

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.q} }
func (t *txStore) AccountTokens() store.AccountTokens { return &accountTokensRepo{q: t.q} }
func (t *txStore) Groceries() store.Groceries         { return &groceriesRepo{q: t.q} }
func (t *txStore) Shops() store.Shops                 { return &shopsRepo{q: t.q} }
func (t *txStore) Products() store.Products           { return &productsRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations are applied before starting a tx
