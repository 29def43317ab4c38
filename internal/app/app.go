// Package app is the terminal UI: a history browser with substring search
// and month filtering, and a most-streamed ranking view. Both views bind to
// the store through live watchers and re-render on every snapshot.
package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/loicnogier/streamlog/internal/store"
)

// view identifies the active screen.
type view int

const (
	viewHistory view = iota
	viewMostStreamed
)

// Model is the bubbletea model for the whole UI.
type Model struct {
	store *store.Store
	log   zerolog.Logger

	view view

	// History view state
	history       []store.PlayRecord
	historyCursor int
	search        textinput.Model
	searching     bool

	// Most-streamed view state
	counts       []store.StreamCount
	countsCursor int

	// Filter selections. Year and month are chosen independently and
	// combined into a single YYYY-MM key; see monthKey.
	years  []string
	months []string
	year   string
	month  string

	// Live bindings; rebound whenever the filter inputs change.
	historyWatch *store.Watcher[store.PlayRecord]
	countsWatch  *store.Watcher[store.StreamCount]

	confirmClear bool

	width  int
	height int
}

// New builds the UI model bound to st.
func New(st *store.Store, log zerolog.Logger) Model {
	search := textinput.New()
	search.Placeholder = "search title, artist or album"
	search.Prompt = "/ "
	search.CharLimit = 128

	m := Model{
		store:  st,
		log:    log,
		search: search,
	}
	// Bind the live queries here rather than in Init: Init runs on a copy
	// of the model, so state set there would be lost.
	m.historyWatch = st.WatchHistory(m.historyFilter())
	m.countsWatch = st.WatchMostStreamed("")
	return m
}

// Init starts waiting on the live bindings.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitHistory(m.historyWatch),
		waitCounts(m.countsWatch),
		loadFilterChoices(m.store),
	)
}

// historyFilter derives the store filter from the current UI inputs.
func (m *Model) historyFilter() store.Filter {
	return store.Filter{
		Query: m.search.Value(),
		Month: monthKey(m.year, m.month),
	}
}
