// Package store persists play records to a local SQLite database and exposes
// the query surface the UI binds to: full history, substring search, month
// filtering and the most-streamed ranking. Mutations wake live watchers so
// subscribers always converge on the latest snapshot.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "streamlog"
	dbFileName = "streamlog.db"
)

// Store wraps the history database. It is safe for concurrent use: the
// recording pipeline is the only writer, watchers and the UI read.
type Store struct {
	db  *sql.DB
	log zerolog.Logger

	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// Open opens (creating if needed) the history database at path. An empty
// path selects the default location under the XDG data directory.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = xdg.DataFile(filepath.Join(appName, dbFileName))
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return newStore(db), nil
}

var memDBSeq atomic.Int64

// OpenMemory opens an in-memory database, used by tests. The shared-cache
// DSN makes every pooled connection see the same database; a plain :memory:
// DSN would give each connection its own. The sequence number keeps separate
// OpenMemory calls isolated from each other.
func OpenMemory() (*Store, error) {
	dsn := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", memDBSeq.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return newStore(db), nil
}

func newStore(db *sql.DB) *Store {
	return &Store{
		db:   db,
		log:  zerolog.Nop(),
		subs: make(map[int]chan struct{}),
	}
}

// SetLogger replaces the store's logger (a no-op logger by default).
func (s *Store) SetLogger(log zerolog.Logger) {
	s.log = log
}

// Close closes the database. It does not stop open watchers; their owners
// close them via Watcher.Close.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// subscribe registers a change-signal channel. The channel has capacity one:
// signals raised while a watcher is mid-query coalesce into a single wakeup.
func (s *Store) subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// notifyChanged wakes every subscriber after a mutation.
func (s *Store) notifyChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
			// Wakeup already pending
		}
	}
}
