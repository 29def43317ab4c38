package app

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages for the whole UI.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case historySnapshotMsg:
		// Snapshots from a superseded binding arrive late; drop them.
		if msg.watcher != m.historyWatch {
			return m, nil
		}
		m.history = msg.records
		m.historyCursor = clamp(m.historyCursor, len(m.history))
		return m, tea.Batch(waitHistory(m.historyWatch), loadFilterChoices(m.store))

	case countsSnapshotMsg:
		if msg.watcher != m.countsWatch {
			return m, nil
		}
		m.counts = msg.counts
		m.countsCursor = clamp(m.countsCursor, len(m.counts))
		return m, waitCounts(m.countsWatch)

	case filterChoicesMsg:
		m.years = msg.years
		m.months = msg.months
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the search box has focus it swallows everything except
	// enter/escape.
	if m.searching {
		switch msg.String() {
		case "enter", "esc":
			m.searching = false
			m.search.Blur()
			if msg.String() == "esc" {
				m.search.SetValue("")
			}
			return m, m.rebindHistory()
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, tea.Batch(cmd, m.rebindHistory())
		}
	}

	if key := msg.String(); key != "X" {
		m.confirmClear = false
		if key == "q" || key == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch msg.String() {
	case "tab":
		if m.view == viewHistory {
			m.view = viewMostStreamed
		} else {
			m.view = viewHistory
		}
		return m, nil

	case "/":
		if m.view == viewHistory {
			m.searching = true
			return m, m.search.Focus()
		}

	case "up", "k":
		m.moveCursor(-1)
		return m, nil

	case "down", "j":
		m.moveCursor(1)
		return m, nil

	case "y":
		m.year = cycle(m.years, m.year)
		return m, tea.Batch(m.rebindHistory(), m.rebindCounts())

	case "m":
		m.month = cycle(m.months, m.month)
		return m, tea.Batch(m.rebindHistory(), m.rebindCounts())

	case "x":
		return m.deleteSelected()

	case "X":
		// Clearing everything wants a second keypress as confirmation.
		if !m.confirmClear {
			m.confirmClear = true
			return m, nil
		}
		m.confirmClear = false
		if err := m.store.DeleteAll(); err != nil {
			m.log.Error().Err(err).Msg("clearing history failed")
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	switch m.view {
	case viewHistory:
		m.historyCursor = clamp(m.historyCursor+delta, len(m.history))
	case viewMostStreamed:
		m.countsCursor = clamp(m.countsCursor+delta, len(m.counts))
	}
}

// deleteSelected removes the record under the cursor (history view) or the
// whole play history of the selected track (most-streamed view). Watchers
// pick up the change, no manual refresh needed.
func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	switch m.view {
	case viewHistory:
		if m.historyCursor < len(m.history) {
			id := m.history[m.historyCursor].ID
			if err := m.store.DeleteByID(id); err != nil {
				m.log.Error().Err(err).Int64("id", id).Msg("deleting record failed")
			}
		}
	case viewMostStreamed:
		if m.countsCursor < len(m.counts) {
			c := m.counts[m.countsCursor]
			if err := m.store.DeleteByTrackAndArtist(c.Title, c.Artist); err != nil {
				m.log.Error().Err(err).
					Str("title", c.Title).
					Str("artist", c.Artist).
					Msg("deleting track history failed")
			}
		}
	}
	return m, nil
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
