package sqlite

import (
	"context"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store/drivers/sqlite/gen"
)

type shopsRepo struct {
	q *gen.Queries
}

func (r *shopsRepo) ListShops(ctx context.Context) ([]domain.Shop, error) {
	rows, err := r.q.ListShops(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Shop, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapShop(row))
	}
	return out, nil
}

func (r *shopsRepo) GetShop(ctx context.Context, id int64) (domain.Shop, error) {
	row, err := r.q.GetShop(ctx, id)
	if err != nil {
		return domain.Shop{}, mapNotFound(err)
	}
	return mapShop(row), nil
}

func mapShop(row gen.Shop) domain.Shop {
	return domain.Shop{
		ID:           row.ID,
		Name:         row.Name,
		AddressLine1: row.AddressLine1,
		AddressLine2: mapNullString(row.AddressLine2),
		City:         row.City,
		State:        row.State,
		PostalCode:   row.PostalCode,
		Country:      row.Country,
		PhoneNumber:  row.PhoneNumber,
		Email:        mapNullString(row.Email),
		Website:      mapNullString(row.Website),
		Description:  mapNullString(row.Description),
		Latitude:     row.Latitude,
		Longitude:    row.Longitude,
		OpeningHours: row.OpeningHours,
	}
}
