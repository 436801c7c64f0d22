package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store/drivers/sqlite/gen"
)

type productsRepo struct {
	q *gen.Queries
}

func (r *productsRepo) GetProductByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	row, err := r.q.GetProduct(ctx, barcode)
	if err != nil {
		return domain.Product{}, mapNotFound(err)
	}

	p := domain.Product{
		Barcode:     row.Barcode,
		Title:       row.Title,
		Category:    row.Category,
		Description: row.Description,
		Size:        row.Size,
	}
	// images is a JSON array of URLs
	if row.Images != "" {
		if err := json.Unmarshal([]byte(row.Images), &p.Images); err != nil {
			return domain.Product{}, fmt.Errorf("product %s images: %w", barcode, err)
		}
	}

	prices, err := r.q.ListProductPrices(ctx, barcode)
	if err != nil {
		return domain.Product{}, err
	}
	for _, pp := range prices {
		p.Prices = append(p.Prices, domain.ProductPrice{
			Store:      pp.Store,
			Price:      pp.Price,
			LastUpdate: pp.LastUpdate,
		})
	}
	return p, nil
}
