package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store/drivers/sqlite/gen"
)

type groceriesRepo struct {
	q *gen.Queries
}

func (r *groceriesRepo) ListGroceries(ctx context.Context, userID int64) ([]domain.Grocery, error) {
	rows, err := r.q.ListGroceriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Grocery, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapGrocery(row))
	}
	return out, nil
}

func (r *groceriesRepo) CreateGrocery(ctx context.Context, g domain.Grocery) (domain.Grocery, error) {
	g.CreatedAt = time.Now().UTC()
	id, err := r.q.CreateGrocery(ctx, gen.CreateGroceryParams{
		UserID:              g.UserID,
		BarcodeNumber:       mapStringNull(g.BarcodeNumber),
		Name:                g.Name,
		Description:         mapStringNull(g.Description),
		Category:            mapStringNull(g.Category),
		Brand:               mapStringNull(g.Brand),
		Size:                mapStringNull(g.Size),
		ImageUrl:            mapStringNull(g.ImageURL),
		StoreName:           mapStringNull(g.StoreName),
		StorePrice:          g.StorePrice,
		ManuallyEntered:     g.ManuallyEntered,
		BarcodeLookupFailed: g.BarcodeLookupFailed,
		CreatedAt:           g.CreatedAt,
	})
	if err != nil {
		return domain.Grocery{}, err
	}
	g.ID = id
	return g, nil
}

func (r *groceriesRepo) DeleteGrocery(ctx context.Context, userID, id int64) error {
	n, err := r.q.DeleteGrocery(ctx, gen.DeleteGroceryParams{ID: id, UserID: userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapGrocery(row gen.Grocery) domain.Grocery {
	return domain.Grocery{
		ID:                  row.ID,
		UserID:              row.UserID,
		BarcodeNumber:       mapNullString(row.BarcodeNumber),
		Name:                row.Name,
		Description:         mapNullString(row.Description),
		Category:            mapNullString(row.Category),
		Brand:               mapNullString(row.Brand),
		Size:                mapNullString(row.Size),
		ImageURL:            mapNullString(row.ImageUrl),
		StoreName:           mapNullString(row.StoreName),
		StorePrice:          row.StorePrice,
		ManuallyEntered:     row.ManuallyEntered,
		BarcodeLookupFailed: row.BarcodeLookupFailed,
		CreatedAt:           row.CreatedAt,
	}
}
