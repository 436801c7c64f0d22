package authsdk

import (
	"fmt"
)

// SessionExpiredRedirect is where the Navigator is sent when the backend
// reports an expired access credential.
const SessionExpiredRedirect = LoginPath + "?message=token_expired"

// defaultAPIErrorMessage is used when an error body carries nothing usable.
const defaultAPIErrorMessage = "API request failed"

// NetworkError is a transport-level failure: no HTTP response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SessionExpiredError is returned after the backend rejected the access
// credential as expired. By the time a caller sees it the tokens have been
// cleared and navigation to RedirectTo has been requested.
type SessionExpiredError struct {
	RedirectTo string
}

func (e *SessionExpiredError) Error() string {
	return "session expired: redirecting to " + e.RedirectTo
}

// APIError is any non-2xx response other than session expiry.
type APIError struct {
	StatusCode int
	Message    string

	// Body is the parsed error body. It is nil for errors raised on a 2xx
	// response whose body could not be decoded.
	Body ErrorBody

	Err error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// DecodeError reports a credential that is not a decodable three segment
// token. It is never returned by Fetch.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode credential: %s: %v", e.Reason, e.Err)
	}
	return "decode credential: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }
