package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pathforge/internal/storage"
)

const runsLimit = 20

// runsLoadedMsg delivers freshly queried run history.
type runsLoadedMsg struct {
	rows []table.Row
	err  error
}

// RunsModel shows the recent generation runs for a level in a table.
type RunsModel struct {
	store   *storage.Store
	table   table.Model
	levelID int
	err     error
	width   int
	height  int
}

// NewRunsModel creates the run-history table. A nil store renders an
// explanatory placeholder instead of data.
func NewRunsModel(store *storage.Store) RunsModel {
	columns := []table.Column{
		{Title: "When", Width: 16},
		{Title: "Lvl", Width: 4},
		{Title: "Seed", Width: 12},
		{Title: "Theme", Width: 8},
		{Title: "Mode", Width: 8},
		{Title: "Pts", Width: 4},
		{Title: "Length", Width: 8},
		{Title: "Balance", Width: 8},
		{Title: "FB", Width: 3},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	t.SetStyles(styles)

	return RunsModel{store: store, table: t}
}

// SetSize adjusts the table to the window.
func (m *RunsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if height > 8 {
		m.table.SetHeight(height - 6)
	}
}

// Refresh reloads the history for a level (-1 means every level).
func (m RunsModel) Refresh(levelID int) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return runsLoadedMsg{}
		}
		runs, err := store.RecentRuns(levelID, runsLimit)
		if err != nil {
			return runsLoadedMsg{err: err}
		}
		rows := make([]table.Row, 0, len(runs))
		for _, r := range runs {
			fb := ""
			if r.IsFallback {
				fb = "✗"
			}
			rows = append(rows, table.Row{
				r.CreatedAt.Format("2006-01-02 15:04"),
				fmt.Sprintf("%d", r.LevelID),
				fmt.Sprintf("%d", r.Seed),
				r.Theme,
				r.Mode,
				fmt.Sprintf("%d", r.Waypoints),
				fmt.Sprintf("%.0f", r.TotalLength),
				fmt.Sprintf("%.2f", r.BalanceScore),
				fb,
			})
		}
		return runsLoadedMsg{rows: rows}
	}
}

// Update handles table navigation and loaded data.
func (m RunsModel) Update(msg tea.Msg) (RunsModel, tea.Cmd) {
	if loaded, ok := msg.(runsLoadedMsg); ok {
		m.err = loaded.err
		m.table.SetRows(loaded.rows)
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m RunsModel) View() string {
	header := titleStyle.Render("run history") +
		infoStyle.Render("  tab to close, arrows to scroll")
	if m.store == nil {
		return header + "\n\n" + infoStyle.Render("history disabled: no database configured")
	}
	if m.err != nil {
		return header + "\n\n" + errStyle.Render("error: "+m.err.Error())
	}
	if len(m.table.Rows()) == 0 {
		return header + "\n\n" + infoStyle.Render("no runs recorded yet")
	}
	return header + "\n\n" + m.table.View()
}
