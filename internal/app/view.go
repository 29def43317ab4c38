package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("205"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("255"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	filterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle   = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("196"))
)

const chromeHeight = 4 // header + filter line + help line + spacing

// View renders the active screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFilterLine())
	b.WriteString("\n")

	switch m.view {
	case viewHistory:
		b.WriteString(m.renderHistory())
	case viewMostStreamed:
		b.WriteString(m.renderMostStreamed())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	history := tabStyle.Render("History")
	most := tabStyle.Render("Most streamed")
	if m.view == viewHistory {
		history = activeTabStyle.Render("History")
	} else {
		most = activeTabStyle.Render("Most streamed")
	}
	return titleStyle.Render("streamlog") + "  " + history + " | " + most
}

func (m Model) renderFilterLine() string {
	var parts []string

	if m.view == viewHistory {
		if m.searching {
			parts = append(parts, m.search.View())
		} else if q := m.search.Value(); q != "" {
			parts = append(parts, filterStyle.Render("search: "+q))
		}
	}

	year := m.year
	if year == "" {
		year = "all"
	}
	month := m.month
	if month == "" {
		month = "all"
	}
	parts = append(parts, filterStyle.Render(fmt.Sprintf("year: %s  month: %s", year, month)))

	if key := monthKey(m.year, m.month); key != "" {
		parts = append(parts, dimStyle.Render("("+key+")"))
	}
	if m.confirmClear {
		parts = append(parts, warnStyle.Render("press X again to clear all history"))
	}

	return strings.Join(parts, "  ")
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return dimStyle.Render("No tracks recorded yet.")
	}

	var b strings.Builder
	for i, r := range m.visibleRange(len(m.history), m.historyCursor) {
		rec := m.history[r]
		line := fmt.Sprintf("%s — %s", rec.Title, rec.Artist)
		if rec.Album != "" {
			line += dimStyle.Render("  (" + rec.Album + ")")
		}
		when := humanize.Time(time.UnixMilli(rec.RecordedAt))
		line += dimStyle.Render("  " + when)

		if r == m.historyCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

func (m Model) renderMostStreamed() string {
	if len(m.counts) == 0 {
		return dimStyle.Render("Nothing streamed in this period.")
	}

	var b strings.Builder
	for i, r := range m.visibleRange(len(m.counts), m.countsCursor) {
		c := m.counts[r]
		line := fmt.Sprintf("%3d×  %s — %s", c.Count, c.Title, c.Artist)
		if r == m.countsCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

// visibleRange returns the row indexes that fit in the current window,
// keeping the cursor in view.
func (m Model) visibleRange(n, cursor int) []int {
	rows := m.height - chromeHeight
	if rows < 1 {
		rows = 10
	}
	if rows > n {
		rows = n
	}

	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}
	if start+rows > n {
		start = n - rows
	}

	idx := make([]int, 0, rows)
	for i := start; i < start+rows; i++ {
		idx = append(idx, i)
	}
	return idx
}

func (m Model) renderHelp() string {
	switch m.view {
	case viewMostStreamed:
		return helpStyle.Render("tab views  j/k move  y year  m month  x delete track history  X clear all  q quit")
	default:
		return helpStyle.Render("tab views  j/k move  / search  y year  m month  x delete  X clear all  q quit")
	}
}
