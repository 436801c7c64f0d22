package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Grocery is a grocery record saved by a user, either from a scan or
// entered by hand.
type Grocery struct {
	ID                  int64
	UserID              int64
	BarcodeNumber       string
	Name                string
	Description         string
	Category            string
	Brand               string
	Size                string
	ImageURL            string
	StoreName           string
	StorePrice          decimal.NullDecimal
	ManuallyEntered     bool
	BarcodeLookupFailed bool
	CreatedAt           time.Time
}
