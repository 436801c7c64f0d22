package shell

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	msgLoginFailed      = "Invalid credentials"
	msgLoginRequired    = "Username and password are required."
	msgNoAccountDetails = "No account details available. Please log in."
)

// loginMessages are the notices the login page shows for ?message=.
var loginMessages = map[string]string{
	"token_expired": "Your session has expired. Please log in again.",
}

type loginView struct {
	Message string `json:"message,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLoginPage serves GET /login.
func (s *Shell) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login", loginView{
		Message: loginMessages[r.URL.Query().Get("message")],
	})
}

// handleLogin serves POST /login.
func (s *Shell) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := bind(r, &req); err != nil || req.Username == "" || req.Password == "" {
		s.renderError(w, http.StatusBadRequest, "login", msgLoginRequired)
		return
	}

	if err := s.Client.Login(ctx, req.Username, req.Password); err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			log.Info("login rejected", "username", req.Username)
			s.renderError(w, http.StatusUnauthorized, "login", msgLoginFailed)
			return
		}
		s.renderClientError(w, r, "login", err)
		return
	}

	log.Info("logged in", "username", req.Username)
	if redirectForm(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "login", nil)
}

// handleLogout serves POST /logout. Home then sends the browser to login.
func (s *Shell) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.Client.Logout(ctx); err != nil {
		slogx.FromContext(ctx).Warn("logout failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type linksView struct {
	Links []string `json:"links"`
}

// handleHome serves GET /.
func (s *Shell) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "home", linksView{Links: []string{"/browse", "/check", "/stores"}})
}

type textView struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Shell) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "about", textView{
		Title: "About Grocery Price Checker",
		Body:  "Scan a grocery barcode to see what it costs, and keep a list of what you buy and where.",
	})
}

func (s *Shell) handleContact(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "contact", textView{
		Title: "Contact Us",
		Body:  "Questions or feedback? Reach the team through the project's issue tracker.",
	})
}

type accountView struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// handleAccount serves GET /account from the credential alone.
func (s *Shell) handleAccount(w http.ResponseWriter, r *http.Request) {
	session, ok := authsdk.Session(r.Context(), s.Client.Tokens)
	if !ok {
		s.renderError(w, http.StatusOK, "account", msgNoAccountDetails)
		return
	}

	v := accountView{
		FirstName: session.FirstName,
		LastName:  session.LastName,
		Email:     session.Email,
		Username:  session.Username,
	}
	if exp, ok := session.ExpiresAt(); ok {
		v.ExpiresAt = &exp
	}
	s.render(w, http.StatusOK, "account", v)
}

type browseView struct {
	Groceries []authsdk.Grocery `json:"groceries"`
}

// handleBrowse serves GET /browse.
func (s *Shell) handleBrowse(w http.ResponseWriter, r *http.Request) {
	list, err := s.Client.ListGroceries(r.Context())
	if err != nil {
		s.renderClientError(w, r, "browse", err)
		return
	}
	if list == nil {
		list = []authsdk.Grocery{}
	}
	s.render(w, http.StatusOK, "browse", browseView{Groceries: list})
}

// handleAddGrocery serves POST /browse.
func (s *Shell) handleAddGrocery(w http.ResponseWriter, r *http.Request) {
	var f authsdk.NewGrocery
	if err := bind(r, &f); err != nil {
		s.renderError(w, http.StatusBadRequest, "browse", err.Error())
		return
	}
	if strings.TrimSpace(f.Name) == "" {
		s.renderError(w, http.StatusBadRequest, "browse", "Name is required.")
		return
	}

	g, err := s.Client.AddGrocery(r.Context(), f)
	if err != nil {
		s.renderClientError(w, r, "browse", err)
		return
	}

	if redirectForm(r) {
		http.Redirect(w, r, "/browse", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusCreated, "browse", g)
}

// handleDeleteGrocery serves DELETE /browse/{id}.
func (s *Shell) handleDeleteGrocery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, http.StatusNotFound, "browse", "Not found.")
		return
	}
	if err := s.Client.DeleteGrocery(r.Context(), id); err != nil {
		s.renderClientError(w, r, "browse", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type storesView struct {
	Query  string         `json:"query,omitempty"`
	Stores []authsdk.Shop `json:"stores"`
}

// handleStores serves GET /stores, filtered by ?q=.
func (s *Shell) handleStores(w http.ResponseWriter, r *http.Request) {
	shops, err := s.Client.ListShops(r.Context())
	if err != nil {
		s.renderClientError(w, r, "stores", err)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	shops = authsdk.FilterShops(shops, q)
	if shops == nil {
		shops = []authsdk.Shop{}
	}
	s.render(w, http.StatusOK, "stores", storesView{Query: q, Stores: shops})
}

type storeView struct {
	authsdk.Shop
	Address string `json:"address"`
}

// handleStore serves GET /stores/{id}.
func (s *Shell) handleStore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, http.StatusNotFound, "store", "No Shop matches the given query.")
		return
	}

	shop, err := s.Client.GetShop(r.Context(), id)
	if err != nil {
		s.renderClientError(w, r, "store", err)
		return
	}
	s.render(w, http.StatusOK, "store", storeView{Shop: shop, Address: shop.Address()})
}
