//go:build !linux

package mpris

import (
	"context"

	"github.com/rs/zerolog"
)

// Watcher is a no-op on non-Linux platforms: MPRIS is a freedesktop
// interface and has no counterpart elsewhere.
type Watcher struct {
	events chan Event
}

// NewWatcher returns a watcher that emits only the initial connected event.
func NewWatcher(_ string, _ zerolog.Logger) (*Watcher, error) {
	return &Watcher{events: make(chan Event, 1)}, nil
}

// Events returns the watcher's event stream.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)

	select {
	case w.events <- Event{Kind: EventConnected}:
	default:
	}
	<-ctx.Done()
}
