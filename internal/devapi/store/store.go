package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface of the development backend. It
// exposes sub-repositories so multi-step operations can run them inside one
// transaction.
type Store interface {
	Users() Users
	AccountTokens() AccountTokens
	Groceries() Groceries
	Shops() Shops
	Products() Products

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Close() error

	Ping(ctx context.Context) error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used by the token endpoint.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u and returns its id. A taken username or email
	// yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	ConfirmEmail(ctx context.Context, userID int64) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string) error
}

type AccountTokens interface {
	CreateToken(ctx context.Context, t domain.AccountToken) error

	GetToken(ctx context.Context, tokenHash string) (domain.AccountToken, error)

	MarkUsed(ctx context.Context, tokenHash string, at time.Time) error
}

type Groceries interface {
	// ListGroceries returns the user's groceries, newest first.
	ListGroceries(ctx context.Context, userID int64) ([]domain.Grocery, error)

	CreateGrocery(ctx context.Context, g domain.Grocery) (domain.Grocery, error)

	// DeleteGrocery removes a grocery owned by userID. Someone else's
	// grocery is reported as ErrNotFound.
	DeleteGrocery(ctx context.Context, userID, id int64) error
}

type Shops interface {
	ListShops(ctx context.Context) ([]domain.Shop, error)

	GetShop(ctx context.Context, id int64) (domain.Shop, error)
}

type Products interface {
	// GetProductByBarcode returns the catalog entry with its store prices.
	GetProductByBarcode(ctx context.Context, barcode string) (domain.Product, error)
}
