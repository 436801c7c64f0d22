package authsdk

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// DefaultTimeout bounds every request made by a client built with
// NewSDKClient.
const DefaultTimeout = 10 * time.Second

// SDKClient is a client for the Grocery Price Checker REST API.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Tokens supplies the bearer credential and is cleared on session
	// expiry.
	Tokens Credentials

	// Navigator receives the login redirect on session expiry.
	Navigator Navigator

	Logger *slog.Logger
}

// NewSDKClient creates a client whose outbound requests are logged through
// slogx.Transport.
func NewSDKClient(baseURL string, tokens Credentials) *SDKClient {
	logger := slog.Default()
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: slogx.NewTransport(nil, logger),
		},
		Tokens:    tokens,
		Navigator: LogNavigator{Logger: logger},
		Logger:    logger,
	}
}

// url builds a complete URL by appending the path to the base URL. Absolute
// URLs are used as given.
func (c *SDKClient) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + path
}

func (c *SDKClient) logger() *slog.Logger {
	return slogx.OrDefault(c.Logger)
}
