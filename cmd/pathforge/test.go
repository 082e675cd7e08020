package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/levels"
	"github.com/vovakirdan/pathforge/internal/storage"
)

var (
	flagTestModes   []string
	flagTestThemes  []string
	flagTestComplex []float64
	flagTestMax     int
	flagTestSave    bool
)

var testCmd = &cobra.Command{
	Use:   "test <level>",
	Short: "Run the generation test matrix for a level",
	Long: `Run a bounded mode x theme x complexity generation matrix against
the level and report pass/warning/failure counts.

The run is critical when fewer than 80% of the tuples pass.

Examples:
  pathforge test 1
  pathforge test 3 --modes dynamic --themes cyber,forest
  pathforge test 1 --complexities 0.2,0.8 --max 10 --save`,
	Args: cobra.ExactArgs(1),
	RunE: runTest,
}

func init() {
	testCmd.Flags().StringSliceVar(&flagTestModes, "modes", nil, "Modes to test (default: all)")
	testCmd.Flags().StringSliceVar(&flagTestThemes, "themes", nil, "Themes to test (default: all)")
	testCmd.Flags().Float64SliceVar(&flagTestComplex, "complexities", nil, "Curve complexities to test (default: 0.3,0.5,0.7)")
	testCmd.Flags().IntVar(&flagTestMax, "max", 0, "Maximum tuples to run (default: 30)")
	testCmd.Flags().BoolVar(&flagTestSave, "save", false, "Record the summary in the history database")
}

func runTest(cmd *cobra.Command, args []string) error {
	levelID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid level %q", args[0])
	}

	modes := make([]levels.Mode, 0, len(flagTestModes))
	for _, s := range flagTestModes {
		mode, err := levels.ParseMode(s)
		if err != nil {
			return err
		}
		modes = append(modes, mode)
	}

	gen, w, h, err := buildGenerator(newLogger())
	if err != nil {
		return err
	}
	pres := levels.NewPreservation(gen.Table(), geom.Bounds{MaxX: w, MaxY: h})

	summary, err := pres.TestPathGeneration(gen, levelID, levels.MatrixOptions{
		PathModes:    modes,
		Themes:       flagTestThemes,
		Complexities: flagTestComplex,
		MaxTests:     flagTestMax,
	})
	if err != nil {
		return err
	}

	printSummary(summary)

	if flagTestSave {
		if store := openStore(); store != nil {
			defer store.Close()
			_, err := store.SaveMatrix(storage.MatrixRecord{
				LevelID:  summary.LevelID,
				Total:    summary.Total,
				Passed:   summary.Passed,
				Warned:   summary.Warned,
				Failed:   summary.Failed,
				PassRate: summary.PassRate,
				Critical: summary.Critical,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not record summary: %v\n", err)
			}
		}
	}

	if summary.Critical {
		return fmt.Errorf("pass rate %.0f%% is below the 80%% bar", summary.PassRate*100)
	}
	return nil
}

func printSummary(s levels.MatrixSummary) {
	fmt.Printf("Level %d test matrix: %d tuples\n", s.LevelID, s.Total)
	fmt.Printf("  passed=%d (warned=%d) failed=%d  pass rate %.0f%%\n",
		s.Passed, s.Warned, s.Failed, s.PassRate*100)

	// Per-tuple detail only when the terminal is wide enough.
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	if width < 72 {
		return
	}

	fmt.Println()
	fmt.Printf("  %-8s %-8s %-5s %-12s %-7s %s\n", "Mode", "Theme", "Cmplx", "Seed", "Balance", "Status")
	for _, r := range s.Results {
		status := "ok"
		switch {
		case r.Err != "":
			status = "error: " + r.Err
		case !r.Validation.IsValid:
			status = "invalid"
		case len(r.Validation.Warnings) > 0:
			status = fmt.Sprintf("warn (%d)", len(r.Validation.Warnings))
		}
		fmt.Printf("  %-8s %-8s %-5.1f %-12d %-7.2f %s\n",
			r.Mode, r.Theme, r.Complexity, r.Seed, r.Validation.BalanceScore, status)
	}
}
