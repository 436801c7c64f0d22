package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TokenPair is the body of a successful credential grant.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// MessageResponse is the {message} body of the account endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrPasswordMismatch is returned by SignupRequest.Validate when the
// confirmation does not match.
var ErrPasswordMismatch = errors.New("Passwords do not match.")

// SignupRequest registers a new account. ConfirmPassword is checked locally
// and never sent.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// Validate checks the fields the backend would reject outright.
func (r SignupRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// Login exchanges a username and password for credentials and stores them.
func (c *SDKClient) Login(ctx context.Context, username, password string) error {
	pair, err := fetchInto[TokenPair](ctx, c, "/api/token/", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"username": username, "password": password},
	}, false)
	if err != nil {
		return err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return &APIError{StatusCode: http.StatusOK, Message: "token response missing credentials"}
	}

	if err := c.Tokens.SetTokens(ctx, pair.Access, pair.Refresh); err != nil {
		return err
	}
	c.logger().Info("logged in", "username", username)
	return nil
}

// Logout forgets the stored credentials. The backend keeps no session so
// nothing is sent.
func (c *SDKClient) Logout(ctx context.Context) error {
	return c.Tokens.Clear(ctx)
}

// Signup validates and submits a registration.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	resp, err := fetchInto[MessageResponse](ctx, c, "/api/signup/", RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	}, false)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ConfirmEmail redeems an email confirmation link. When the backend also
// returns credentials they are stored, logging the user in.
func (c *SDKClient) ConfirmEmail(ctx context.Context, uid, token string) (string, error) {
	if uid == "" || token == "" {
		return "", &APIError{StatusCode: http.StatusBadRequest, Message: "Invalid confirmation link."}
	}

	resp, err := fetchInto[confirmEmailResponse](ctx, c, "/api/confirm-email/", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"uid": uid, "token": token},
	}, false)
	if err != nil {
		return "", singleErrorField(err)
	}

	if resp.Access != "" && resp.Refresh != "" {
		if err := c.Tokens.SetTokens(ctx, resp.Access, resp.Refresh); err != nil {
			return "", err
		}
	}
	return resp.Message, nil
}

type confirmEmailResponse struct {
	MessageResponse
	TokenPair
}

// ForgotPassword asks the backend to mail a reset link.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	resp, err := fetchInto[MessageResponse](ctx, c, "/api/forgot-password/", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email},
	}, false)
	if err != nil {
		return "", singleErrorField(err)
	}
	return resp.Message, nil
}

// ResetPassword sets a new password using the uid and token of a reset link.
func (c *SDKClient) ResetPassword(ctx context.Context, uid, token, newPassword string) (string, error) {
	resp, err := fetchInto[MessageResponse](ctx, c, "/api/reset-password/", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]string{"uid": uid, "token": token, "new_password": newPassword},
	}, false)
	if err != nil {
		return "", singleErrorField(err)
	}
	return resp.Message, nil
}

// singleErrorField unwraps the {error: "..."} body the account endpoints
// use so the message reads without a field prefix.
func singleErrorField(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	fields, ok := apiErr.Body.(FieldErrorsBody)
	if ok && len(fields.Fields) == 1 && fields.Fields[0].Field == "error" {
		apiErr.Message = strings.Join(fields.Fields[0].Messages, " ")
	}
	return apiErr
}
