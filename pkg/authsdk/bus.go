package authsdk

import (
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// Bus broadcasts a zero-payload tick whenever the stored credentials change.
// Publish delivers to every listener subscribed at the time of the call
// before returning.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []listener
	logger    *slog.Logger
}

type listener struct {
	id uint64
	fn func()
}

// NewBus creates an empty bus. A nil logger discards panic reports.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: slogx.OrDefault(logger)}
}

// Subscribe registers fn and returns a func that removes it. The returned
// func may be called any number of times, from inside a listener too.
func (b *Bus) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Publish calls every listener synchronously. Listeners run outside the
// lock against a snapshot, so they may subscribe or unsubscribe freely.
// Listeners added during a publish are not called by it.
func (b *Bus) Publish() {
	b.mu.Lock()
	snapshot := make([]listener, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, l := range snapshot {
		b.deliver(l)
	}
}

// Len reports the number of subscribed listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *Bus) deliver(l listener) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("auth change listener panicked", "listener", l.id, "panic", r)
		}
	}()
	l.fn()
}
