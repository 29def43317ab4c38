package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loicnogier/streamlog/internal/store"
)

// rebindHistory replaces the history live binding with one matching the
// current filter and waits for its initial snapshot.
func (m *Model) rebindHistory() tea.Cmd {
	if m.historyWatch != nil {
		m.historyWatch.Close()
	}
	m.historyWatch = m.store.WatchHistory(m.historyFilter())
	return waitHistory(m.historyWatch)
}

// rebindCounts replaces the most-streamed live binding.
func (m *Model) rebindCounts() tea.Cmd {
	if m.countsWatch != nil {
		m.countsWatch.Close()
	}
	m.countsWatch = m.store.WatchMostStreamed(monthKey(m.year, m.month))
	return waitCounts(m.countsWatch)
}

// waitHistory blocks on the watcher until the next snapshot arrives. The
// update loop re-issues it after each message, one outstanding receive at a
// time.
func waitHistory(w *store.Watcher[store.PlayRecord]) tea.Cmd {
	return func() tea.Msg {
		records, ok := <-w.C
		if !ok {
			return nil
		}
		return historySnapshotMsg{watcher: w, records: records}
	}
}

// waitCounts blocks on the most-streamed watcher.
func waitCounts(w *store.Watcher[store.StreamCount]) tea.Cmd {
	return func() tea.Msg {
		counts, ok := <-w.C
		if !ok {
			return nil
		}
		return countsSnapshotMsg{watcher: w, counts: counts}
	}
}

// loadFilterChoices derives the year/month filter choices from the recorded
// months.
func loadFilterChoices(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		keys, err := st.Months()
		if err != nil {
			return filterChoicesMsg{}
		}
		years, months := splitMonths(keys)
		return filterChoicesMsg{years: years, months: months}
	}
}
