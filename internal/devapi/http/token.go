package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/service"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const detailNoActiveAccount = "No active account found with the given credentials"

// TokenHandler serves POST /api/token/, the password grant.
type TokenHandler struct {
	TokenService *service.TokenService
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ServeHTTP handles POST /api/token/
//
//	@Summary		Obtain a token pair
//	@Description	Password grant. Returns an access token and a refresh token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		tokenRequest		true	"Credentials"
//	@Success		200		{object}	authsdk.TokenPair
//	@Failure		400		{object}	map[string][]string	"Missing username or password"
//	@Failure		401		{object}	map[string]string	"No active account"
//	@Failure		429		{object}	map[string]string	"Too Many Requests"
//	@Router			/api/token/ [post]
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req tokenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	verr := &service.ValidationError{}
	if req.Username == "" {
		verr.Add("username", "This field is required.")
	}
	if req.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if len(verr.Fields) > 0 {
		writeValidation(w, verr)
		return
	}

	pair, err := h.TokenService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteDetail(w, http.StatusUnauthorized, detailNoActiveAccount)
			return
		}
		writeError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPair{
		Access:  pair.Access,
		Refresh: pair.Refresh,
	})
}
