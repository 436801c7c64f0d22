// Package idx mints the identifiers that tie log lines together: scan
// sessions on the client and request ids on the wire.
package idx

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a ULID in canonical form. IDs minted later sort after earlier ones.
type ID string

// Zero is the unset ID.
const Zero ID = ""

var ErrInvalid = errors.New("idx: invalid ulid")

// New mints an ID for the current instant. ulid.Make is monotonic within a
// millisecond and safe for concurrent use.
func New() ID {
	return ID(ulid.Make().String())
}

// Parse accepts the canonical 26 character form only.
func Parse(s string) (ID, error) {
	u, err := ulid.ParseStrict(strings.TrimSpace(s))
	if err != nil {
		return Zero, ErrInvalid
	}
	return ID(u.String()), nil
}

func (id ID) IsZero() bool   { return id == Zero }
func (id ID) String() string { return string(id) }

// Minted returns when id was created, or the zero time for an invalid id.
func (id ID) Minted() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

// Age is how long before now id was minted.
func (id ID) Age(now time.Time) time.Duration {
	minted := id.Minted()
	if minted.IsZero() {
		return 0
	}
	return now.Sub(minted)
}

// LogValue logs the unset ID as "-" rather than an empty string.
func (id ID) LogValue() slog.Value {
	if id.IsZero() {
		return slog.StringValue("-")
	}
	return slog.StringValue(string(id))
}
