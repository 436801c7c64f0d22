// Package barcode decodes EAN-13, UPC-A and EAN-8 symbols from still
// images using the gozxing one-dimensional readers.
package barcode

import (
	"fmt"

	"github.com/makiuchi-d/gozxing"
)

// Symbology is a barcode encoding standard.
type Symbology int

const (
	UPC Symbology = iota + 1
	EAN
	EAN8
)

// String is the friendly format name shown to users.
func (s Symbology) String() string {
	switch s {
	case UPC:
		return "UPC"
	case EAN:
		return "EAN"
	case EAN8:
		return "EAN-8"
	default:
		return fmt.Sprintf("Symbology(%d)", int(s))
	}
}

// UPC maps to UPC-A and EAN to EAN-13.
func formatOf(s Symbology) (gozxing.BarcodeFormat, bool) {
	switch s {
	case UPC:
		return gozxing.BarcodeFormat_UPC_A, true
	case EAN:
		return gozxing.BarcodeFormat_EAN_13, true
	case EAN8:
		return gozxing.BarcodeFormat_EAN_8, true
	}
	return 0, false
}

func symbologyOf(f gozxing.BarcodeFormat) (Symbology, bool) {
	switch f {
	case gozxing.BarcodeFormat_UPC_A:
		return UPC, true
	case gozxing.BarcodeFormat_EAN_13:
		return EAN, true
	case gozxing.BarcodeFormat_EAN_8:
		return EAN8, true
	}
	return 0, false
}

// Result is one decoded symbol.
type Result struct {
	Text      string
	Symbology Symbology
}
