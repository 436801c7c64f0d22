package authsdk

import (
	"sync"
	"testing"

	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToAllListeners(t *testing.T) {
	t.Parallel()

	bus := NewBus(slogx.Discard())
	var a, b int
	bus.Subscribe(func() { a++ })
	bus.Subscribe(func() { b++ })

	bus.Publish()
	bus.Publish()

	require.Equal(t, 2, a)
	require.Equal(t, 2, b)
}

func TestBus_UnsubscribeInsideListener(t *testing.T) {
	t.Parallel()

	bus := NewBus(slogx.Discard())
	var first, second int

	var unsub func()
	unsub = bus.Subscribe(func() {
		first++
		unsub()
		unsub()
	})
	bus.Subscribe(func() { second++ })

	bus.Publish()
	bus.Publish()

	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
	require.Equal(t, 1, bus.Len())
}

func TestBus_SubscribeDuringPublishWaitsForNextPublish(t *testing.T) {
	t.Parallel()

	bus := NewBus(slogx.Discard())
	var late int
	var once sync.Once
	bus.Subscribe(func() {
		once.Do(func() { bus.Subscribe(func() { late++ }) })
	})

	bus.Publish()
	require.Equal(t, 0, late)

	bus.Publish()
	require.Equal(t, 1, late)
}

func TestBus_PanickingListenerDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	bus := NewBus(slogx.Discard())
	var after int
	bus.Subscribe(func() { panic("boom") })
	bus.Subscribe(func() { after++ })

	require.NotPanics(t, bus.Publish)
	require.Equal(t, 1, after)
}
