package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

type GroceryService struct {
	Store store.Store
}

// ListGroceries returns the user's groceries, newest first.
func (s *GroceryService) ListGroceries(ctx context.Context, userID int64) ([]domain.Grocery, error) {
	return s.Store.Groceries().ListGroceries(ctx, userID)
}

// AddGrocery saves g for userID. Only the name is required.
func (s *GroceryService) AddGrocery(ctx context.Context, userID int64, g domain.Grocery) (domain.Grocery, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		verr := &ValidationError{}
		verr.Add("name", msgRequired)
		return domain.Grocery{}, verr
	}
	if g.StorePrice.Valid && g.StorePrice.Decimal.IsNegative() {
		verr := &ValidationError{}
		verr.Add("store_price", "Ensure this value is greater than or equal to 0.")
		return domain.Grocery{}, verr
	}

	g.ID = 0
	g.UserID = userID
	created, err := s.Store.Groceries().CreateGrocery(ctx, g)
	if err != nil {
		return domain.Grocery{}, err
	}

	slogx.FromContext(ctx).Info("grocery added",
		slog.Int64("user_id", userID),
		slog.Int64("grocery_id", created.ID),
		slog.Bool("manually_entered", created.ManuallyEntered),
	)
	return created, nil
}

// DeleteGrocery removes one of the user's groceries.
func (s *GroceryService) DeleteGrocery(ctx context.Context, userID, id int64) error {
	return s.Store.Groceries().DeleteGrocery(ctx, userID, id)
}
