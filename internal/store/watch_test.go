package store

import (
	"testing"
	"time"
)

// receiveSnapshot reads the next snapshot with a timeout.
func receiveSnapshot[T any](t *testing.T, w *Watcher[T]) []T {
	t.Helper()
	select {
	case snap, ok := <-w.C:
		if !ok {
			t.Fatal("watcher channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

// awaitLen receives snapshots until one has n rows. Intermediate snapshots
// may be coalesced, so only convergence is asserted.
func awaitLen[T any](t *testing.T, w *Watcher[T], n int) []T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-w.C:
			if !ok {
				t.Fatal("watcher channel closed unexpectedly")
			}
			if len(snap) == n {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot of %d rows", n)
		}
	}
}

func TestWatchHistory_InitialSnapshot(t *testing.T) {
	s := newTestStore(t)
	mustInsert(t, s, PlayRecord{Title: "Song A", Artist: "Artist X", RecordedAt: millis(2024, time.March, 1)})

	w := s.WatchHistory(Filter{})
	defer w.Close()

	snap := receiveSnapshot(t, w)
	if len(snap) != 1 || snap[0].Title != "Song A" {
		t.Errorf("initial snapshot = %+v, want the existing record", snap)
	}
}

func TestWatchHistory_EmitsAfterMutations(t *testing.T) {
	s := newTestStore(t)

	w := s.WatchHistory(Filter{})
	defer w.Close()

	if snap := receiveSnapshot(t, w); len(snap) != 0 {
		t.Fatalf("initial snapshot = %+v, want empty", snap)
	}

	id := mustInsert(t, s, PlayRecord{Title: "Song A", Artist: "Artist X", RecordedAt: millis(2024, time.March, 1)})
	awaitLen(t, w, 1)

	if err := s.DeleteByID(id); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	awaitLen(t, w, 0)
}

func TestWatchHistory_CoalescesToLatest(t *testing.T) {
	s := newTestStore(t)

	w := s.WatchHistory(Filter{})
	defer w.Close()
	receiveSnapshot(t, w)

	// Burst of writes without the consumer keeping up. The watcher may
	// skip intermediate snapshots but must converge on the final state.
	for i := range 5 {
		mustInsert(t, s, PlayRecord{
			Title:      "Song",
			Artist:     "Artist",
			RecordedAt: millis(2024, time.March, 1) + int64(i),
		})
	}
	awaitLen(t, w, 5)
}

func TestWatchHistory_RespectsFilter(t *testing.T) {
	s := newTestStore(t)

	w := s.WatchHistory(Filter{Month: "2024-03"})
	defer w.Close()
	receiveSnapshot(t, w)

	mustInsert(t, s, PlayRecord{Title: "April Song", Artist: "A", RecordedAt: millis(2024, time.April, 1)})
	mustInsert(t, s, PlayRecord{Title: "March Song", Artist: "A", RecordedAt: millis(2024, time.March, 1)})

	snap := awaitLen(t, w, 1)
	if snap[0].Title != "March Song" {
		t.Errorf("filtered snapshot = %+v, want only March Song", snap)
	}
}

func TestWatchMostStreamed_TracksCounts(t *testing.T) {
	s := newTestStore(t)

	w := s.WatchMostStreamed("")
	defer w.Close()
	receiveSnapshot(t, w)

	ts := millis(2024, time.March, 1)
	mustInsert(t, s, PlayRecord{Title: "Song A", Artist: "Artist X", RecordedAt: ts})
	mustInsert(t, s, PlayRecord{Title: "Song A", Artist: "Artist X", RecordedAt: ts + 1})

	snap := awaitLen(t, w, 1)
	if snap[0].Count != 2 {
		t.Errorf("count = %d, want 2", snap[0].Count)
	}
}

func TestWatcher_CloseClosesChannel(t *testing.T) {
	s := newTestStore(t)

	w := s.WatchHistory(Filter{})
	receiveSnapshot(t, w)
	w.Close()

	select {
	case _, ok := <-w.C:
		if ok {
			// A snapshot raced the close; the next receive must
			// observe the closed channel.
			if _, ok := <-w.C; ok {
				t.Error("channel still open after Close")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// Mutations after Close must not reach the closed watcher.
	mustInsert(t, s, PlayRecord{Title: "Song A", Artist: "Artist X", RecordedAt: millis(2024, time.March, 1)})
}
