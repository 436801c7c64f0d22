// Package devapitest runs the development backend in-process for tests.
package devapitest

import (
	"context"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/pricecheck/internal/devapi/app"
	"github.com/aussiebroadwan/pricecheck/internal/devapi/domain"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// Seed account.
const (
	Username  = "sam"
	Password  = "correct-horse"
	Email     = "sam@example.com"
	FirstName = "Demo"
	Issuer    = "pricecheck-test"
)

type Server struct {
	*httptest.Server
	App  *app.Application
	Mail *Mailbox
}

// New starts a backend with a fresh database holding the seed account and
// the catalog. It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	cfg := app.Config{
		Issuer:              Issuer,
		AccessTTL:           5 * time.Minute,
		RefreshTTL:          time.Hour,
		DatabaseDSN:         "file:" + filepath.Join(t.TempDir(), "devapi.db"),
		SeedUser:            Username,
		SeedPassword:        Password,
		SeedEmail:           Email,
		LinkBase:            "http://localhost:3000",
		ShutdownGracePeriod: time.Second,
	}

	a, err := app.NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)

	mail := &Mailbox{}
	a.Accounts().Mailer = mail

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})

	return &Server{Server: srv, App: a, Mail: mail}
}

// Pair mints credentials for the seed account as of now. A now far enough
// in the past yields an already expired access credential.
func (s *Server) Pair(t testing.TB, now time.Time) domain.TokenPair {
	t.Helper()

	pair, err := s.App.Tokens().IssueFor(context.Background(), Username, now)
	require.NoError(t, err)
	return pair
}

// Mailbox records mailed account links.
type Mailbox struct {
	mu   sync.Mutex
	sent []Mail
}

type Mail struct {
	To, Subject, Body string
}

func (m *Mailbox) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

// Last returns the newest mail to addr.
func (m *Mailbox) Last(addr string) (Mail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == addr {
			return m.sent[i], true
		}
	}
	return Mail{}, false
}

// LinkParams extracts uid and token from the link in the newest mail to
// addr.
func (m *Mailbox) LinkParams(t testing.TB, addr string) (uid, token string) {
	t.Helper()

	mail, ok := m.Last(addr)
	require.True(t, ok, "no mail to %s", addr)

	i := len(mail.Body) - 1
	for i >= 0 && mail.Body[i] != ' ' {
		i--
	}
	link, err := url.Parse(mail.Body[i+1:])
	require.NoError(t, err)
	return link.Query().Get("uid"), link.Query().Get("token")
}
