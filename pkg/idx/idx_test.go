package idx_test

import (
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/aussiebroadwan/pricecheck/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesBack(t *testing.T) {
	t.Parallel()

	id := idx.New()
	require.False(t, id.IsZero())
	require.Len(t, id.String(), 26)

	parsed, err := idx.Parse(" " + id.String() + " ")
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "   ", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", s)
	}
}

func TestNew_SortsByCreation(t *testing.T) {
	t.Parallel()

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = idx.New().String()
	}
	require.True(t, sort.StringsAreSorted(ids))
}

func TestAge(t *testing.T) {
	t.Parallel()

	id := idx.New()
	require.WithinDuration(t, time.Now(), id.Minted(), time.Second)
	require.InDelta(t, time.Minute, id.Age(time.Now().Add(time.Minute)), float64(time.Second))

	require.True(t, idx.Zero.Minted().IsZero())
	require.Zero(t, idx.Zero.Age(time.Now()))
}

func TestLogValue(t *testing.T) {
	t.Parallel()

	require.Equal(t, "-", idx.Zero.LogValue().String())

	id := idx.New()
	require.Equal(t, id.String(), slog.AnyValue(id).Resolve().String())
}
