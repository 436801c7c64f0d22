package authsdk

import (
	"context"
	"fmt"
	"strings"
)

// Shop is a store record.
type Shop struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	PhoneNumber  string  `json:"phone_number"`
	Email        string  `json:"email,omitempty"`
	Website      string  `json:"website,omitempty"`
	Description  string  `json:"description,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	OpeningHours string  `json:"opening_hours"`
}

// Address formats the postal address on one line.
func (s Shop) Address() string {
	var b strings.Builder
	b.WriteString(s.AddressLine1)
	if s.AddressLine2 != "" {
		b.WriteString(", ")
		b.WriteString(s.AddressLine2)
	}
	fmt.Fprintf(&b, ", %s, %s %s, %s", s.City, s.State, s.PostalCode, s.Country)
	return b.String()
}

// Matches reports whether term appears, ignoring case, in the name or any
// address field. An empty term matches everything.
func (s Shop) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range []string{s.Name, s.AddressLine1, s.AddressLine2, s.City, s.State, s.PostalCode, s.Country} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// ListShops returns every store.
func (c *SDKClient) ListShops(ctx context.Context) ([]Shop, error) {
	return fetchInto[[]Shop](ctx, c, "/api/shops", RequestOptions{}, true)
}

// GetShop returns one store.
func (c *SDKClient) GetShop(ctx context.Context, id int64) (Shop, error) {
	return fetchInto[Shop](ctx, c, fmt.Sprintf("/api/shops/%d", id), RequestOptions{}, true)
}

// FilterShops keeps the shops matching term, in order.
func FilterShops(shops []Shop, term string) []Shop {
	out := make([]Shop, 0, len(shops))
	for _, s := range shops {
		if s.Matches(term) {
			out = append(out, s)
		}
	}
	return out
}
