// Package scanner drives one camera-to-barcode scan at a time and hands the
// detected code to a product lookup.
package scanner

import (
	"context"
	"errors"
	"image"

	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/barcode"
	"github.com/aussiebroadwan/pricecheck/pkg/idx"
)

// Status is the state of a scan session.
type Status int

const (
	Idle Status = iota
	Requesting
	Active
	Detected
	Cancelled
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Active:
		return "active"
	case Detected:
		return "detected"
	case Cancelled:
		return "cancelled"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Failure reasons reported in Session.Reason.
const (
	ReasonPermissionDenied  = "permission_denied"
	ReasonDeviceUnavailable = "device_unavailable"
	ReasonCameraError       = "camera_error"
	ReasonDetectorError     = "detector_error"
)

var (
	ErrScanInProgress    = errors.New("scanner: scan already in progress")
	ErrRestartNotAllowed = errors.New("scanner: restart only allowed when idle or detected")
	ErrClosed            = errors.New("scanner: controller closed")

	// Camera implementations wrap these so failures land on the right
	// reason.
	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrDeviceUnavailable = errors.New("camera device unavailable")

	ErrStreamEnded = errors.New("camera stream ended")
)

// Symbologies is the fixed set every detector is configured with.
var Symbologies = []barcode.Symbology{barcode.UPC, barcode.EAN}

// Constraints describe the preferred camera stream.
type Constraints struct {
	Width      int
	Height     int
	FacingMode string
}

// DefaultConstraints prefers the rear camera at 640x480.
var DefaultConstraints = Constraints{Width: 640, Height: 480, FacingMode: "environment"}

// Camera acquires a live stream.
type Camera interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is a live camera handle. Stop releases the hardware.
type Stream interface {
	Frames() <-chan image.Image
	Stop()
}

// Detector decodes at most one barcode from a frame.
type Detector interface {
	Detect(img image.Image) (barcode.Result, bool)
}

// DetectorFactory builds a detector restricted to symbologies.
type DetectorFactory func(symbologies []barcode.Symbology) (Detector, error)

// BarcodeDetectors is the DetectorFactory backed by pkg/barcode.
func BarcodeDetectors(symbologies []barcode.Symbology) (Detector, error) {
	d, err := barcode.NewDecoder(symbologies...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Lookup resolves a detected code to products.
type Lookup interface {
	LookupBarcode(ctx context.Context, code string) (*authsdk.ProductResult, error)
}

// Session is a snapshot of one scan attempt.
type Session struct {
	ID     idx.ID
	Status Status

	Code   string
	Format string

	// Reason and Err are set in the Error state.
	Reason string
	Err    error

	LookupPending bool
	Result        *authsdk.ProductResult
	LookupErr     error
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrDeviceUnavailable):
		return ReasonDeviceUnavailable
	default:
		return ReasonCameraError
	}
}
