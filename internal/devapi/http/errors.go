package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/service"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
)

const (
	detailNotFound    = "Not found."
	detailServerError = "A server error occurred."
)

// writeValidation renders field errors as a JSON object in field order. The
// catch-all "error" field is written as a plain string, the shape the
// account endpoints use.
func writeValidation(w http.ResponseWriter, verr *service.ValidationError) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range verr.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(f.Field)
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if f.Field == "error" && len(f.Messages) == 1 {
			val, _ = json.Marshal(f.Messages[0])
		} else {
			val, _ = json.Marshal(f.Messages)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')

	httpx.WriteJSON(w, http.StatusBadRequest, json.RawMessage(buf.Bytes()))
}

// writeError maps validation failures to 400 and anything else to 500.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeValidation(w, verr)
		return
	}
	log.Error("request failed", slog.Any("error", err))
	httpx.WriteDetail(w, http.StatusInternalServerError, detailServerError)
}

// singleError is the {"error": msg} body of the account endpoints.
func singleError(w http.ResponseWriter, status int, msg string) {
	httpx.WriteJSON(w, status, map[string]string{"error": msg})
}

// userID reads the authenticated user from the verified claims.
func userID(r *http.Request) (int64, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
