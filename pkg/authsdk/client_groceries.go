package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Grocery is a saved grocery record.
type Grocery struct {
	ID                  int64               `json:"id"`
	BarcodeNumber       string              `json:"barcode_number,omitempty"`
	Name                string              `json:"name"`
	Description         string              `json:"description,omitempty"`
	Category            string              `json:"category,omitempty"`
	Brand               string              `json:"brand,omitempty"`
	Size                string              `json:"size,omitempty"`
	ImageURL            string              `json:"image_url,omitempty"`
	StoreName           string              `json:"store_name,omitempty"`
	StorePrice          decimal.NullDecimal `json:"store_price" swaggertype:"string"`
	ManuallyEntered     bool                `json:"manually_entered"`
	BarcodeLookupFailed bool                `json:"barcode_lookup_failed"`
	CreatedAt           time.Time           `json:"created_at"`
}

// NewGrocery is a manually entered grocery.
type NewGrocery struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Brand       string              `json:"brand"`
	Size        string              `json:"size"`
	ImageURL    string              `json:"image_url"`
	StoreName   string              `json:"store_name"`
	StorePrice  decimal.NullDecimal `json:"store_price"`
}

type newGroceryBody struct {
	NewGrocery
	ManuallyEntered bool `json:"manually_entered"`
}

// ListGroceries returns every saved grocery.
func (c *SDKClient) ListGroceries(ctx context.Context) ([]Grocery, error) {
	return fetchInto[[]Grocery](ctx, c, "/api/groceries/", RequestOptions{}, true)
}

// AddGrocery saves a manually entered grocery.
func (c *SDKClient) AddGrocery(ctx context.Context, g NewGrocery) (Grocery, error) {
	return fetchInto[Grocery](ctx, c, "/api/groceries/", RequestOptions{
		Method: http.MethodPost,
		Body:   newGroceryBody{NewGrocery: g, ManuallyEntered: true},
	}, true)
}

// DeleteGrocery removes a grocery by id.
func (c *SDKClient) DeleteGrocery(ctx context.Context, id int64) error {
	_, err := c.Fetch(ctx, fmt.Sprintf("/api/groceries/%d/", id), RequestOptions{Method: http.MethodDelete})
	return err
}
