package store

// Live query support. A Watcher re-runs its query after every store
// mutation and delivers the result as a full snapshot. Subscribers get an
// initial snapshot immediately; afterwards only the latest snapshot matters,
// so a snapshot that was never consumed is replaced rather than queued.

// Watcher delivers ordered snapshots of a query's result set on C.
type Watcher[T any] struct {
	// C receives a snapshot after subscription and after every mutation
	// that may affect the result. Intermediate snapshots coalesce when the
	// consumer lags; the channel always holds the freshest one.
	C <-chan []T

	c     chan []T
	done  chan struct{}
	unsub func()
}

// watch starts a watcher for query. The initial snapshot is queried and
// buffered before watch returns, so the first receive never blocks on a
// future mutation.
func watch[T any](s *Store, query func() ([]T, error)) *Watcher[T] {
	sig, unsub := s.subscribe()

	w := &Watcher[T]{
		c:     make(chan []T, 1),
		done:  make(chan struct{}),
		unsub: unsub,
	}
	w.C = w.c

	if snap, err := query(); err == nil {
		w.push(snap)
	} else {
		s.log.Error().Err(err).Msg("live query failed on initial snapshot")
	}

	go func() {
		// The goroutine is the only sender once it starts, so it owns
		// closing the channel; receivers observe the close after Close().
		defer close(w.c)
		for {
			select {
			case <-sig:
				snap, err := query()
				if err != nil {
					// A failing read only degrades this subscription.
					s.log.Error().Err(err).Msg("live query failed")
					continue
				}
				w.push(snap)
			case <-w.done:
				return
			}
		}
	}()

	return w
}

// push delivers a snapshot with latest-wins semantics: if the previous
// snapshot is still unconsumed it is dropped in favor of the new one.
func (w *Watcher[T]) push(snap []T) {
	for {
		select {
		case w.c <- snap:
			return
		default:
		}
		select {
		case <-w.c:
			// Discard the stale pending snapshot and retry
		default:
		}
	}
}

// Close detaches the watcher from the store and closes C. A snapshot
// already pending in the channel is still delivered before the close is
// observed.
func (w *Watcher[T]) Close() {
	w.unsub()
	close(w.done)
}

// WatchHistory watches the history rows matching f, most recent first.
func (s *Store) WatchHistory(f Filter) *Watcher[PlayRecord] {
	return watch(s, func() ([]PlayRecord, error) { return s.Search(f) })
}

// WatchMostStreamed watches the most-streamed ranking, optionally
// restricted to a calendar month.
func (s *Store) WatchMostStreamed(month string) *Watcher[StreamCount] {
	return watch(s, func() ([]StreamCount, error) { return s.MostStreamed(month) })
}
