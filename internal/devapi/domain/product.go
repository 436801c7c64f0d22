package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry keyed by its barcode.
type Product struct {
	Barcode     string
	Title       string
	Category    string
	Description string
	Size        string
	Images      []string
	Prices      []ProductPrice
}

// ProductPrice is the last known price of a product at one store.
type ProductPrice struct {
	Store      string
	Price      decimal.Decimal
	LastUpdate string // "2006-01-02 15:04:05"
}
