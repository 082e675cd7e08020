package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pathforge/internal/levels"
	"github.com/vovakirdan/pathforge/internal/pathgen"
	"github.com/vovakirdan/pathforge/internal/storage"
)

var (
	flagGenTheme string
	flagGenMode  string
	flagGenJSON  bool
	flagGenSave  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <level>",
	Short: "Generate a route for a level",
	Long: `Generate an enemy route for the given level and print it.

The route is deterministic for a fixed --seed; omit the flag to get a
fresh route each run.

Examples:
  pathforge generate 1
  pathforge generate 3 --theme forest --mode dynamic
  pathforge generate 1 --seed 42 --json
  pathforge generate 5 --save`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&flagGenTheme, "theme", "", "Theme preset (default: level's configured theme)")
	generateCmd.Flags().StringVar(&flagGenMode, "mode", "", "Generation mode: static, dynamic, hybrid")
	generateCmd.Flags().BoolVar(&flagGenJSON, "json", false, "Print the route as JSON")
	generateCmd.Flags().BoolVar(&flagGenSave, "save", false, "Record the run in the history database")
}

// routeJSON is the machine-readable CLI output shape.
type routeJSON struct {
	LevelID         int          `json:"level_id"`
	Seed            int64        `json:"seed"`
	Theme           string       `json:"theme"`
	Mode            string       `json:"mode"`
	Waypoints       [][2]float64 `json:"waypoints"`
	TotalLength     float64      `json:"total_length"`
	Complexity      float64      `json:"complexity"`
	BalanceScore    float64      `json:"balance_score"`
	IsFallback      bool         `json:"is_fallback"`
	BalanceDegraded bool         `json:"balance_degraded"`
	Retries         int          `json:"retries"`
	Warnings        []string     `json:"warnings,omitempty"`
	Hints           []string     `json:"hints,omitempty"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	levelID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid level %q", args[0])
	}

	var mode levels.Mode
	if flagGenMode != "" {
		mode, err = levels.ParseMode(flagGenMode)
		if err != nil {
			return err
		}
	}

	gen, _, _, err := buildGenerator(newLogger())
	if err != nil {
		return err
	}

	gp, err := gen.Generate(pathgen.Request{
		LevelID: levelID,
		Seed:    seedFlag(),
		Theme:   flagGenTheme,
		Mode:    mode,
	})
	if err != nil {
		return err
	}

	if flagGenSave {
		if store := openStore(); store != nil {
			defer store.Close()
			if _, err := store.SaveRun(runRecord(gp)); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not record run: %v\n", err)
			}
		}
	}

	if flagGenJSON {
		return printJSON(gp)
	}
	printRoute(gp)
	return nil
}

func runRecord(gp *pathgen.GeneratedPath) storage.RunRecord {
	return storage.RunRecord{
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
}

func printJSON(gp *pathgen.GeneratedPath) error {
	out := routeJSON{
		LevelID:      gp.Meta.LevelID,
		Seed:         gp.Meta.Seed,
		Theme:        gp.Meta.Theme,
		Mode:         string(gp.Meta.Mode),
		Waypoints:    make([][2]float64, 0, len(gp.Waypoints)),
		TotalLength:  gp.Meta.TotalLength,
		Complexity:   gp.Meta.Complexity,
		BalanceScore:    gp.Meta.Balance.Total,
		IsFallback:      gp.Meta.IsFallback,
		BalanceDegraded: gp.Meta.BalanceDegraded,
		Retries:         gp.Meta.RetryCount,
		Warnings:        gp.Meta.Validation.Warnings,
		Hints:           gp.Meta.Recommendations,
	}
	for _, w := range gp.Waypoints {
		out.Waypoints = append(out.Waypoints, [2]float64{w.X, w.Y})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printRoute(gp *pathgen.GeneratedPath) {
	m := gp.Meta
	fmt.Printf("Level %d  theme=%s mode=%s seed=%d\n", m.LevelID, m.Theme, m.Mode, m.Seed)
	fmt.Printf("  waypoints=%d length=%.1f complexity=%.2f balance=%.2f retries=%d in %s\n",
		len(gp.Waypoints), m.TotalLength, m.Complexity, m.Balance.Total, m.RetryCount, m.GenerationTime)
	if m.IsFallback {
		fmt.Println("  NOTE: fallback route (primary generation failed repeatedly)")
	}
	if m.BalanceDegraded {
		fmt.Println("  NOTE: balance below the level threshold (best candidate kept)")
	}
	for _, w := range m.Validation.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	for _, r := range m.Recommendations {
		fmt.Printf("  hint: %s\n", r)
	}

	fmt.Println()
	for i, w := range gp.Waypoints {
		fmt.Printf("  %3d  (%7.1f, %7.1f)\n", i, w.X, w.Y)
	}
}
