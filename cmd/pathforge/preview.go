package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pathforge/internal/levels"
	"github.com/vovakirdan/pathforge/internal/platform/tui"
)

var (
	flagPrevLevel int
	flagPrevTheme string
	flagPrevMode  string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Interactive route preview",
	Long: `Open the interactive terminal preview.

Controls:
  r/Enter  - Regenerate with a fresh seed
  t        - Cycle theme
  m        - Cycle generation mode
  +/-      - Change level
  Tab      - Run history
  x        - Cancel an in-flight generation
  q        - Quit

Examples:
  pathforge preview
  pathforge preview --level 5 --theme volcano
  pathforge preview --seed 42`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&flagPrevLevel, "level", 1, "Level to preview")
	previewCmd.Flags().StringVar(&flagPrevTheme, "theme", "classic", "Initial theme")
	previewCmd.Flags().StringVar(&flagPrevMode, "mode", "dynamic", "Initial generation mode")
}

func runPreview(cmd *cobra.Command, args []string) error {
	mode, err := levels.ParseMode(flagPrevMode)
	if err != nil {
		return err
	}

	gen, w, h, err := buildGenerator(newLogger())
	if err != nil {
		return err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	model := tui.NewViewer(tui.ViewerConfig{
		Generator: gen,
		Store:     store,
		CanvasW:   w,
		CanvasH:   h,
		LevelID:   flagPrevLevel,
		Theme:     flagPrevTheme,
		Mode:      mode,
		Seed:      seedFlag(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}
