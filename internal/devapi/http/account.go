package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/service"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/httpx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	msgInvalidConfirmLink = "Invalid or expired confirmation link."
	msgInvalidResetLink   = "Invalid or expired reset link."
)

type AccountHandler struct {
	AccountService *service.AccountService
}

type signupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type linkRequest struct {
	UID         string `json:"uid"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type confirmEmailResponse struct {
	Message string `json:"message"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// HandleSignup serves POST /api/signup/.
//
//	@Summary		Create an account
//	@Description	Registers an inactive account and mails a confirmation link.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			body	body		signupRequest		true	"New account"
//	@Success		201		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	map[string][]string	"Field errors"
//	@Router			/api/signup/ [post]
func (h *AccountHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err := h.AccountService.Signup(ctx, service.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, slogx.FromContext(ctx), err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.MessageResponse{Message: service.MsgSignedUp})
}

// HandleConfirmEmail serves POST /api/confirm-email/. A confirmed account
// is logged in straight away.
//
//	@Summary	Confirm an email address
//	@Tags		Account
//	@Accept		json
//	@Produce	json
//	@Param		body	body		linkRequest	true	"uid and token from the link"
//	@Success	200		{object}	confirmEmailResponse
//	@Failure	400		{object}	map[string]string	"Invalid or expired link"
//	@Router		/api/confirm-email/ [post]
func (h *AccountHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req linkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		singleError(w, http.StatusBadRequest, msgInvalidConfirmLink)
		return
	}

	pair, err := h.AccountService.ConfirmEmail(ctx, req.UID, req.Token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLink) {
			singleError(w, http.StatusBadRequest, msgInvalidConfirmLink)
			return
		}
		writeError(w, slogx.FromContext(ctx), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, confirmEmailResponse{
		Message: service.MsgEmailConfirmed,
		Access:  pair.Access,
		Refresh: pair.Refresh,
	})
}

// HandleForgotPassword serves POST /api/forgot-password/.
func (h *AccountHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		singleError(w, http.StatusBadRequest, "Email is required.")
		return
	}

	if err := h.AccountService.ForgotPassword(ctx, req.Email); err != nil {
		writeError(w, slogx.FromContext(ctx), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: service.MsgResetLinkSent})
}

// HandleResetPassword serves POST /api/reset-password/.
func (h *AccountHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req linkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		singleError(w, http.StatusBadRequest, msgInvalidResetLink)
		return
	}

	err := h.AccountService.ResetPassword(ctx, req.UID, req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLink) {
			singleError(w, http.StatusBadRequest, msgInvalidResetLink)
			return
		}
		writeError(w, slogx.FromContext(ctx), err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: service.MsgPasswordChanged})
}
