// Package tui provides the terminal preview for generated routes: an
// interactive Bubble Tea viewer, a run-history table, and SSH serving
// via Wish.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pathforge/internal/levels"
	"github.com/vovakirdan/pathforge/internal/pathgen"
	"github.com/vovakirdan/pathforge/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// ViewerConfig wires the viewer to a generator and optional run store.
type ViewerConfig struct {
	Generator *pathgen.Generator
	Store     *storage.Store // nil disables history
	CanvasW   float64
	CanvasH   float64
	LevelID   int
	Theme     string
	Mode      levels.Mode
	Seed      *int64 // nil regenerates with a fresh seed each time
}

// genProgressMsg carries one progress event from an async generation.
type genProgressMsg pathgen.Progress

// genDoneMsg carries the outcome of an async generation.
type genDoneMsg struct {
	result *pathgen.GeneratedPath
	err    error
}

// Viewer is the interactive route preview model.
type Viewer struct {
	cfg    ViewerConfig
	keys   KeyMap
	help   help.Model
	prog   progress.Model
	canvas *Canvas

	width  int
	height int

	levelID int
	themes  []string
	themeIx int
	modes   []levels.Mode
	modeIx  int

	current    *pathgen.GeneratedPath
	generating bool
	task       *pathgen.Task
	cancelGen  context.CancelFunc
	lastErr    error
	percent    float64

	showRuns bool
	runs     RunsModel

	quitting bool
}

// NewViewer creates the preview model. The first generation starts on
// Init.
func NewViewer(cfg ViewerConfig) *Viewer {
	themes := cfg.Generator.Table().ThemeNames()
	themeIx := 0
	for i, name := range themes {
		if name == cfg.Theme {
			themeIx = i
			break
		}
	}

	modes := levels.AllModes()
	modeIx := 0
	for i, m := range modes {
		if m == cfg.Mode {
			modeIx = i
			break
		}
	}

	return &Viewer{
		cfg:     cfg,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		prog:    progress.New(progress.WithDefaultGradient()),
		levelID: cfg.LevelID,
		themes:  themes,
		themeIx: themeIx,
		modes:   modes,
		modeIx:  modeIx,
		runs:    NewRunsModel(cfg.Store),
	}
}

// Init starts the first generation.
func (v *Viewer) Init() tea.Cmd {
	return v.startGeneration()
}

// startGeneration kicks off an async generation and returns the command
// that pumps its progress events into the update loop.
func (v *Viewer) startGeneration() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	task, err := v.cfg.Generator.GenerateAsync(ctx, pathgen.Request{
		LevelID: v.levelID,
		Seed:    v.cfg.Seed,
		Theme:   v.themes[v.themeIx],
		Mode:    v.modes[v.modeIx],
	})
	if err != nil {
		cancel()
		v.lastErr = err
		return nil
	}

	v.task = task
	v.cancelGen = cancel
	v.generating = true
	v.percent = 0
	v.lastErr = nil
	return v.pumpTask()
}

// pumpTask reads the next progress event, or the final outcome once the
// progress channel closes.
func (v *Viewer) pumpTask() tea.Cmd {
	task := v.task
	return func() tea.Msg {
		if ev, ok := <-task.Progress(); ok {
			return genProgressMsg(ev)
		}
		result, err := task.Wait()
		return genDoneMsg{result: result, err: err}
	}
}

// Update handles messages.
func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.help.Width = msg.Width
		v.prog.Width = min(msg.Width-10, 60)
		v.rebuildCanvas()
		v.runs.SetSize(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case runsLoadedMsg:
		var cmd tea.Cmd
		v.runs, cmd = v.runs.Update(msg)
		return v, cmd

	case genProgressMsg:
		v.percent = msg.Percent
		return v, v.pumpTask()

	case genDoneMsg:
		v.generating = false
		v.task = nil
		v.cancelGen = nil
		if msg.err != nil {
			v.lastErr = msg.err
			return v, nil
		}
		v.current = msg.result
		v.rebuildCanvas()
		return v, v.saveRun(msg.result)
	}
	return v, nil
}

func (v *Viewer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.showRuns {
		if key.Matches(msg, v.keys.Runs) || key.Matches(msg, v.keys.Quit) {
			v.showRuns = false
			return v, nil
		}
		var cmd tea.Cmd
		v.runs, cmd = v.runs.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		v.quitting = true
		if v.cancelGen != nil {
			v.cancelGen()
		}
		return v, tea.Quit

	case key.Matches(msg, v.keys.Regenerate):
		if v.generating {
			return v, nil
		}
		return v, v.startGeneration()

	case key.Matches(msg, v.keys.Cancel):
		if v.cancelGen != nil {
			v.cancelGen()
		}
		return v, nil

	case key.Matches(msg, v.keys.NextTheme):
		if !v.generating {
			v.themeIx = (v.themeIx + 1) % len(v.themes)
			return v, v.startGeneration()
		}

	case key.Matches(msg, v.keys.NextMode):
		if !v.generating {
			v.modeIx = (v.modeIx + 1) % len(v.modes)
			return v, v.startGeneration()
		}

	case key.Matches(msg, v.keys.LevelUp):
		if !v.generating {
			v.levelID++
			return v, v.startGeneration()
		}

	case key.Matches(msg, v.keys.LevelDown):
		if !v.generating && v.levelID > 0 {
			v.levelID--
			return v, v.startGeneration()
		}

	case key.Matches(msg, v.keys.Runs):
		v.showRuns = true
		return v, v.runs.Refresh(v.levelID)

	case key.Matches(msg, v.keys.Help):
		v.help.ShowAll = !v.help.ShowAll
	}
	return v, nil
}

// rebuildCanvas re-rasters the current path for the present window size.
func (v *Viewer) rebuildCanvas() {
	cols := v.width - 4
	rows := v.height - 9
	v.canvas = NewCanvas(cols, rows, v.cfg.CanvasW, v.cfg.CanvasH)
	if v.current != nil {
		v.canvas.DrawPath(v.current.Waypoints)
	}
}

// saveRun persists the generation outcome, best effort.
func (v *Viewer) saveRun(gp *pathgen.GeneratedPath) tea.Cmd {
	if v.cfg.Store == nil {
		return nil
	}
	store := v.cfg.Store
	rec := storage.RunRecord{
		LevelID:      gp.Meta.LevelID,
		Seed:         gp.Meta.Seed,
		Theme:        gp.Meta.Theme,
		Mode:         string(gp.Meta.Mode),
		Waypoints:    len(gp.Waypoints),
		TotalLength:  gp.Meta.TotalLength,
		Complexity:   gp.Meta.Complexity,
		BalanceScore: gp.Meta.Balance.Total,
		IsFallback:   gp.Meta.IsFallback,
		Retries:      gp.Meta.RetryCount,
		DurationMs:   gp.Meta.GenerationTime.Milliseconds(),
	}
	return func() tea.Msg {
		//nolint:errcheck // Best-effort save
		store.SaveRun(rec)
		return nil
	}
}

// View renders the viewer.
func (v *Viewer) View() string {
	if v.quitting {
		return ""
	}
	if v.showRuns {
		return v.runs.View()
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("pathforge"))
	sb.WriteString(infoStyle.Render(fmt.Sprintf("  level %d  theme %s  mode %s",
		v.levelID, v.themes[v.themeIx], v.modes[v.modeIx])))
	sb.WriteByte('\n')

	sb.WriteString(v.statusLine())
	sb.WriteByte('\n')

	if v.canvas != nil {
		sb.WriteString(v.canvas.Render(v.themes[v.themeIx]))
		sb.WriteByte('\n')
	}

	if v.generating {
		sb.WriteString(v.prog.ViewAs(v.percent))
		sb.WriteByte('\n')
	}

	sb.WriteString(v.help.View(v.keys))
	return sb.String()
}

func (v *Viewer) statusLine() string {
	if v.lastErr != nil {
		return errStyle.Render("error: " + v.lastErr.Error())
	}
	if v.generating {
		return infoStyle.Render("generating...")
	}
	if v.current == nil {
		return infoStyle.Render("no route yet")
	}

	m := v.current.Meta
	status := fmt.Sprintf("seed %d  length %.0f  complexity %.2f  balance %.2f  %dms",
		m.Seed, m.TotalLength, m.Complexity, m.Balance.Total,
		m.GenerationTime.Milliseconds())
	switch {
	case m.IsFallback:
		return warnStyle.Render(status + "  [fallback]")
	case m.BalanceDegraded:
		return warnStyle.Render(status + "  [balance degraded]")
	case len(m.Recommendations) > 0:
		return warnStyle.Render(status + fmt.Sprintf("  [%d hint(s)]", len(m.Recommendations)))
	default:
		return okStyle.Render(status)
	}
}
