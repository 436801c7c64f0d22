package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPriceStore is the store whose price is shown for a scanned product.
const DefaultPriceStore = "Walmart Canada"

// ProductResult is the product lookup response. An empty Products list is
// a valid "no match" answer, not an error.
type ProductResult struct {
	Products []Product `json:"products"`
}

// Product is one match for a barcode.
type Product struct {
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Size        string       `json:"size"`
	Images      []string     `json:"images"`
	Stores      []StorePrice `json:"stores"`
}

// StorePrice is the price of a product at one store.
type StorePrice struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price" swaggertype:"string"`
	LastUpdate string          `json:"last_update"`
}

// Empty reports a lookup with no matching product.
func (r *ProductResult) Empty() bool {
	return r == nil || len(r.Products) == 0
}

// First returns the best match. ok is false for an empty result.
func (r *ProductResult) First() (Product, bool) {
	if r.Empty() {
		return Product{}, false
	}
	return r.Products[0], true
}

// PriceAt finds the price record for store by exact name.
func (p Product) PriceAt(store string) (StorePrice, bool) {
	for _, s := range p.Stores {
		if s.Name == store {
			return s, true
		}
	}
	return StorePrice{}, false
}

// Image is the first product image, if any.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

var lastUpdateLayouts = []string{
	time.DateTime,
	time.RFC3339,
	time.DateOnly,
}

// LastUpdated parses LastUpdate in any of the layouts the backend emits.
func (s StorePrice) LastUpdated() (time.Time, bool) {
	for _, layout := range lastUpdateLayouts {
		if t, err := time.ParseInLocation(layout, s.LastUpdate, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LastUpdatedLabel formats LastUpdate as FormatDay does, falling back to
// the raw value when it cannot be parsed.
func (s StorePrice) LastUpdatedLabel() string {
	t, ok := s.LastUpdated()
	if !ok {
		return s.LastUpdate
	}
	return FormatDay(t)
}

// FormatDay renders t as "24th Oct 2023".
func FormatDay(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%d%s %s %d", day, ordinal(day), t.Format("Jan"), t.Year())
}

func ordinal(n int) string {
	if n > 3 && n < 21 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// LookupBarcode resolves a scanned barcode to products and store prices.
func (c *SDKClient) LookupBarcode(ctx context.Context, barcode string) (*ProductResult, error) {
	result, err := fetchInto[ProductResult](ctx, c, "/api/product-from-barcode/", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"barcode_number": barcode},
	}, true)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
