package shell

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
)

type messageView struct {
	Message string `json:"message"`
}

type signupForm struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// handleSignup serves POST /signup. Mismatched passwords never reach the
// backend.
func (s *Shell) handleSignup(w http.ResponseWriter, r *http.Request) {
	var f signupForm
	if err := bind(r, &f); err != nil {
		s.renderError(w, http.StatusBadRequest, "signup", err.Error())
		return
	}

	msg, err := s.Client.Signup(r.Context(), authsdk.SignupRequest(f))
	if err != nil {
		var apiErr *authsdk.APIError
		if !errors.As(err, &apiErr) && !isNetworkError(err) {
			s.renderError(w, http.StatusBadRequest, "signup", err.Error())
			return
		}
		s.renderClientError(w, r, "signup", err)
		return
	}
	s.render(w, http.StatusCreated, "signup", messageView{Message: msg})
}

// handleConfirmEmail serves GET /confirm-email?uid=..&token=.., the link
// mailed at signup. A confirmed account is logged in.
func (s *Shell) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	msg, err := s.Client.ConfirmEmail(r.Context(), q.Get("uid"), q.Get("token"))
	if err != nil {
		s.renderClientError(w, r, "confirm-email", err)
		return
	}
	if msg == "" {
		msg = "Email confirmed. You can now log in."
	}
	s.render(w, http.StatusOK, "confirm-email", messageView{Message: msg})
}

type forgotForm struct {
	Email string `json:"email"`
}

// handleForgotPassword serves POST /forgot-password.
func (s *Shell) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var f forgotForm
	if err := bind(r, &f); err != nil {
		s.renderError(w, http.StatusBadRequest, "forgot-password", err.Error())
		return
	}

	msg, err := s.Client.ForgotPassword(r.Context(), f.Email)
	if err != nil {
		s.renderClientError(w, r, "forgot-password", err)
		return
	}
	if msg == "" {
		msg = "Password reset instructions have been sent to your email."
	}
	s.render(w, http.StatusOK, "forgot-password", messageView{Message: msg})
}

type resetForm struct {
	UID             string `json:"uid"`
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// handleResetPassword serves POST /reset-password with the uid and token
// from the mailed link.
func (s *Shell) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var f resetForm
	if err := bind(r, &f); err != nil {
		s.renderError(w, http.StatusBadRequest, "reset-password", err.Error())
		return
	}
	if f.Password != f.ConfirmPassword {
		s.renderError(w, http.StatusBadRequest, "reset-password", authsdk.ErrPasswordMismatch.Error())
		return
	}

	msg, err := s.Client.ResetPassword(r.Context(), f.UID, f.Token, f.Password)
	if err != nil {
		s.renderClientError(w, r, "reset-password", err)
		return
	}
	s.render(w, http.StatusOK, "reset-password", messageView{Message: msg})
}

func isNetworkError(err error) bool {
	var netErr *authsdk.NetworkError
	return errors.As(err, &netErr)
}
