package shell

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/scanner"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	msgNoProduct    = "No product found for this barcode."
	msgLookupFailed = "Error fetching product data"
)

var reasonMessages = map[string]string{
	scanner.ReasonPermissionDenied:  "Camera access was denied.",
	scanner.ReasonDeviceUnavailable: "No camera is available.",
	scanner.ReasonCameraError:       "The camera stopped unexpectedly.",
	scanner.ReasonDetectorError:     "The barcode reader could not be started.",
}

// ScanView is the check page.
type ScanView struct {
	ScanID string `json:"scan_id,omitempty"`
	Status string `json:"status"`

	// Action labels the single button the page offers.
	Action string `json:"action"`

	Code   string `json:"code,omitempty"`
	Format string `json:"format,omitempty"`

	LookupPending bool         `json:"lookup_pending,omitempty"`
	Product       *ProductView `json:"product,omitempty"`
	Message       string       `json:"message,omitempty"`
}

// ProductView is the first matching product with its price at the
// configured store.
type ProductView struct {
	Title       string `json:"title"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Size        string `json:"size,omitempty"`
	Image       string `json:"image,omitempty"`

	Store       string `json:"store,omitempty"`
	Price       string `json:"price,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

func (s *Shell) scanView(sess scanner.Session) ScanView {
	v := ScanView{
		Status:        sess.Status.String(),
		Code:          sess.Code,
		Format:        sess.Format,
		LookupPending: sess.LookupPending,
	}
	if !sess.ID.IsZero() {
		v.ScanID = sess.ID.String()
	}

	switch sess.Status {
	case scanner.Requesting, scanner.Active:
		v.Action = "Cancel Scanning"
	case scanner.Detected:
		v.Action = "Scan Again"
	default:
		v.Action = "Start Scanning"
	}

	switch {
	case sess.Status == scanner.Error:
		v.Message = reasonMessages[sess.Reason]
	case sess.LookupErr != nil:
		v.Message = msgLookupFailed
	case sess.Result != nil:
		p, ok := sess.Result.First()
		if !ok {
			v.Message = msgNoProduct
			break
		}
		v.Product = s.productView(p)
	}
	return v
}

func (s *Shell) productView(p authsdk.Product) *ProductView {
	v := &ProductView{
		Title:       p.Title,
		Category:    p.Category,
		Description: p.Description,
		Size:        p.Size,
		Image:       p.Image(),
	}
	if price, ok := p.PriceAt(s.PriceStore); ok {
		v.Store = price.Name
		v.Price = price.Price.StringFixed(2)
		v.LastUpdated = price.LastUpdatedLabel()
	}
	return v
}

// handleCheck serves GET /check, mounting the scan view if needed.
func (s *Shell) handleCheck(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "check", s.scanView(s.controller().Snapshot()))
}

// handleCheckStart serves POST /check/start.
func (s *Shell) handleCheckStart(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller()
	s.finishCheck(w, r, ctrl, ctrl.Start(r.Context()))
}

// handleCheckRestart serves POST /check/restart ("Scan Again").
func (s *Shell) handleCheckRestart(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller()
	s.finishCheck(w, r, ctrl, ctrl.Restart(r.Context()))
}

// handleCheckCancel serves POST /check/cancel. Cancelling an unmounted view
// is a no-op.
func (s *Shell) handleCheckCancel(w http.ResponseWriter, r *http.Request) {
	ctrl := s.mounted()
	if ctrl == nil {
		s.render(w, http.StatusOK, "check", s.scanView(scanner.Session{}))
		return
	}
	ctrl.Cancel()
	s.finishCheck(w, r, ctrl, nil)
}

func (s *Shell) finishCheck(w http.ResponseWriter, r *http.Request, ctrl *scanner.Controller, err error) {
	status := http.StatusOK
	v := s.scanView(ctrl.Snapshot())

	switch {
	case err == nil:
	case errors.Is(err, scanner.ErrScanInProgress), errors.Is(err, scanner.ErrRestartNotAllowed):
		status = http.StatusConflict
		v.Message = err.Error()
	case errors.Is(err, scanner.ErrClosed):
		// Torn down between lookup and use; the next visit mounts afresh.
		status = http.StatusConflict
		v.Message = err.Error()
	default:
		slogx.FromContext(r.Context()).Error("scan control failed", "error", err)
		status = http.StatusInternalServerError
		if v.Message == "" {
			v.Message = msgServerError
		}
	}

	if redirectForm(r) && status == http.StatusOK {
		http.Redirect(w, r, "/check", http.StatusSeeOther)
		return
	}
	s.render(w, status, "check", v)
}
