package barcode

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

var (
	ErrNoSymbology      = errors.New("barcode: no symbology enabled")
	ErrUnknownSymbology = errors.New("barcode: unknown symbology")
)

// Decoder finds barcodes restricted to a fixed set of symbologies.
type Decoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewDecoder enables exactly the given symbologies.
func NewDecoder(symbologies ...Symbology) (*Decoder, error) {
	if len(symbologies) == 0 {
		return nil, ErrNoSymbology
	}
	formats := make([]gozxing.BarcodeFormat, 0, len(symbologies))
	for _, s := range symbologies {
		f, ok := formatOf(s)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSymbology, int(s))
		}
		formats = append(formats, f)
	}
	return &Decoder{hints: map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_POSSIBLE_FORMATS: formats,
		gozxing.DecodeHintType_TRY_HARDER:       true,
	}}, nil
}

// Detect scans img and returns the first symbol found. Safe for concurrent
// use: gozxing readers keep row buffers, so each call builds its own.
func (d *Decoder) Detect(img image.Image) (Result, bool) {
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return Result{}, false
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Result{}, false
	}
	res, err := oned.NewMultiFormatUPCEANReader(d.hints).Decode(bmp, d.hints)
	if err != nil {
		return Result{}, false
	}
	s, ok := symbologyOf(res.GetBarcodeFormat())
	if !ok {
		return Result{}, false
	}
	return Result{Text: res.GetText(), Symbology: s}, true
}

// Checksum reports whether a GTIN digit string carries a valid check digit:
// weights 3 and 1 alternate leftwards from the digit before the check digit.
func Checksum(code string) bool {
	n := len(code)
	if n < 2 {
		return false
	}
	sum := 0
	for i := n - 1; i >= 0; i-- {
		c := code[i]
		if c < '0' || c > '9' {
			return false
		}
		if i == n-1 {
			continue
		}
		v := int(c - '0')
		if (n-2-i)%2 == 0 {
			v *= 3
		}
		sum += v
	}
	return (10-sum%10)%10 == int(code[n-1]-'0')
}
