package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	msgUnreachable = "The price checker service could not be reached. Please try again."
	msgServerError = "Something went wrong. Please try again."
)

// Page is the body of every shell response.
type Page struct {
	Page  string `json:"page"`
	Nav   Nav    `json:"nav"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Shell) render(w http.ResponseWriter, status int, page string, data any) {
	httpx.WriteJSON(w, status, Page{Page: page, Nav: s.Nav(), Data: data})
}

func (s *Shell) renderError(w http.ResponseWriter, status int, page, msg string) {
	httpx.WriteJSON(w, status, Page{Page: page, Nav: s.Nav(), Error: msg})
}

// renderClientError maps an SDK failure onto the page. An expired session
// becomes the login redirect the client already asked for.
func (s *Shell) renderClientError(w http.ResponseWriter, r *http.Request, page string, err error) {
	log := slogx.FromContext(r.Context())

	var (
		expired *authsdk.SessionExpiredError
		apiErr  *authsdk.APIError
		netErr  *authsdk.NetworkError
	)
	switch {
	case errors.As(err, &expired):
		s.takePending()
		http.Redirect(w, r, expired.RedirectTo, http.StatusSeeOther)
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 || status >= 500 {
			log.Error("backend error", slog.Int("status", status), slog.Any("error", err))
			status = http.StatusBadGateway
		}
		s.renderError(w, status, page, apiErr.Message)
	case errors.As(err, &netErr):
		log.Warn("backend unreachable", slog.Any("error", err))
		s.renderError(w, http.StatusBadGateway, page, msgUnreachable)
	default:
		log.Error("request failed", slog.Any("error", err))
		s.renderError(w, http.StatusInternalServerError, page, msgServerError)
	}
}

// bind reads a JSON body, or a form body as a flat JSON object, into dst.
func bind(r *http.Request, dst any) error {
	if httpx.HasJSONBody(r) {
		return httpx.DecodeJSON(r, dst)
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("invalid form body: %w", err)
	}
	fields := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		if v := r.PostForm.Get(k); v != "" {
			fields[k] = v
		}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// redirectForm finishes a form post with a redirect. JSON callers get the
// page instead.
func redirectForm(r *http.Request) bool {
	return !httpx.WantsJSON(r)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
