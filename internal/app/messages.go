package app

import "github.com/loicnogier/streamlog/internal/store"

// historySnapshotMsg carries a fresh history snapshot from the live binding.
type historySnapshotMsg struct {
	watcher *store.Watcher[store.PlayRecord]
	records []store.PlayRecord
}

// countsSnapshotMsg carries a fresh most-streamed snapshot.
type countsSnapshotMsg struct {
	watcher *store.Watcher[store.StreamCount]
	counts  []store.StreamCount
}

// filterChoicesMsg carries the year/month choices derived from the data.
type filterChoicesMsg struct {
	years  []string
	months []string
}
