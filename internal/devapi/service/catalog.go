package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/store"
	"github.com/aussiebroadwan/pricecheck/pkg/barcode"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

type CatalogService struct {
	Store store.Store
}

// LookupBarcode finds the catalog product for code. A well-formed code
// with no product is not an error: ok is false. A UPC-A code and its
// EAN-13 form (leading zero) find the same product.
func (s *CatalogService) LookupBarcode(ctx context.Context, code string) (domain.Product, bool, error) {
	code = strings.TrimSpace(code)
	if !validBarcode(code) {
		return domain.Product{}, false, ErrInvalidBarcode
	}

	for _, candidate := range barcodeForms(code) {
		p, err := s.Store.Products().GetProductByBarcode(ctx, candidate)
		if err == nil {
			return p, true, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return domain.Product{}, false, err
		}
	}

	slogx.FromContext(ctx).Info("barcode not in catalog", slog.String("barcode", code))
	return domain.Product{}, false, nil
}

func validBarcode(code string) bool {
	switch len(code) {
	case 8, 12, 13:
	default:
		return false
	}
	return barcode.Checksum(code)
}

func barcodeForms(code string) []string {
	switch {
	case len(code) == 12:
		return []string{code, "0" + code}
	case len(code) == 13 && code[0] == '0':
		return []string{code, code[1:]}
	default:
		return []string{code}
	}
}
