// Package shell serves the price checker's routed views as JSON pages. Each
// page carries the header and footer navigation state, which bus listeners
// keep current as the session comes and goes.
package shell

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/scanner"
	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// Header is the navigation bar state.
type Header struct {
	Authenticated bool   `json:"authenticated"`
	DisplayName   string `json:"display_name,omitempty"`
}

// Footer is the footer link state. AccountLink is empty without a session.
type Footer struct {
	AccountLink string   `json:"account_link,omitempty"`
	Links       []string `json:"links"`
}

// Nav is rendered on every page.
type Nav struct {
	Header Header `json:"header"`
	Footer Footer `json:"footer"`
}

// ControllerFactory builds the scan controller for a fresh check view.
type ControllerFactory func() *scanner.Controller

// Shell owns the view state shared by every request: the navigation, a
// navigation requested by the client outside any request, and the check
// view's scan controller.
type Shell struct {
	Client        *authsdk.SDKClient
	NewController ControllerFactory

	// PriceStore is the store whose price the check view shows.
	PriceStore string

	Logger *slog.Logger

	mu      sync.Mutex
	nav     Nav
	pending string
	ctrl    *scanner.Controller

	unsubscribe []func()
}

// New wires a shell to client. The shell becomes the client's Navigator and
// subscribes its navigation listeners to the client's credentials.
func New(client *authsdk.SDKClient, factory ControllerFactory, priceStore string, logger *slog.Logger) *Shell {
	if priceStore == "" {
		priceStore = authsdk.DefaultPriceStore
	}
	s := &Shell{
		Client:        client,
		NewController: factory,
		PriceStore:    priceStore,
		Logger:        slogx.OrDefault(logger),
	}
	client.Navigator = s

	s.unsubscribe = []func(){
		client.Tokens.Subscribe(s.refreshHeader),
		client.Tokens.Subscribe(s.refreshFooter),
		client.Tokens.Subscribe(s.teardownOnLogout),
	}

	// Credentials loaded from a durable store count as a session already.
	s.refreshHeader()
	s.refreshFooter()
	return s
}

// Navigate records a navigation requested by the client, for example on
// session expiry during a background lookup. The next request is sent
// there.
func (s *Shell) Navigate(url string) {
	s.mu.Lock()
	s.pending = url
	s.mu.Unlock()
	s.Logger.Info("navigation requested", "url", url)
}

func (s *Shell) takePending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := s.pending
	s.pending = ""
	return url
}

// Nav returns the current navigation state.
func (s *Shell) Nav() Nav {
	s.mu.Lock()
	defer s.mu.Unlock()
	nav := s.nav
	nav.Footer.Links = append([]string(nil), nav.Footer.Links...)
	return nav
}

func (s *Shell) refreshHeader() {
	ctx := context.Background()

	var h Header
	if session, ok := authsdk.Session(ctx, s.Client.Tokens); ok {
		h = Header{Authenticated: true, DisplayName: session.DisplayName()}
	}

	s.mu.Lock()
	s.nav.Header = h
	s.mu.Unlock()
}

func (s *Shell) refreshFooter() {
	f := Footer{Links: []string{"/about", "/contact"}}
	if s.Client.Tokens.IsAuthenticated(context.Background()) {
		f.AccountLink = "/account"
	}

	s.mu.Lock()
	s.nav.Footer = f
	s.mu.Unlock()
}

// teardownOnLogout unmounts the check view when the session ends. The next
// visit builds a new controller.
func (s *Shell) teardownOnLogout() {
	if s.Client.Tokens.IsAuthenticated(context.Background()) {
		return
	}

	s.mu.Lock()
	ctrl := s.ctrl
	s.ctrl = nil
	s.mu.Unlock()

	if ctrl != nil {
		ctrl.Close()
		s.Logger.Info("scan view torn down")
	}
}

// controller returns the mounted scan controller, mounting one if needed.
func (s *Shell) controller() *scanner.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		ctrl := s.NewController()
		ctrl.OnChange(func(sess scanner.Session) {
			s.Logger.Debug("scan state", "scan_id", sess.ID, "status", sess.Status.String())
		})
		s.ctrl = ctrl
	}
	return s.ctrl
}

// mounted returns the scan controller without mounting one.
func (s *Shell) mounted() *scanner.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl
}

// Close releases the listeners and the scan controller.
func (s *Shell) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}

	s.mu.Lock()
	ctrl := s.ctrl
	s.ctrl = nil
	s.mu.Unlock()

	if ctrl != nil {
		ctrl.Close()
	}
}
