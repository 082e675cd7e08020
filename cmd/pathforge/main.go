// pathforge generates enemy routes for tower-defense levels and ships
// the designer tooling around them.
//
// Usage:
//
//	pathforge generate <level>   - Generate a route and print it
//	pathforge preview            - Interactive route preview (TUI)
//	pathforge test <level>       - Run the generation test matrix
//	pathforge runs               - Show recorded generation runs
//	pathforge export <level>     - Print a level's resolved configuration
//	pathforge serve              - Serve the preview over SSH
//
// Global flags:
//
//	--canvas <WxH>  - Canvas size in logical units (default: 1200x600)
//	--grid <size>   - Grid cell size (default: 40)
//	--seed <value>  - RNG seed (0 = derive from time)
//	--db <path>     - Run history database (default: ~/.pathforge/runs.db)
//	--config <path> - Levels configuration YAML
//	--dev           - Development mode: more retries, verbose errors
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pathforge/internal/levels"
	"github.com/vovakirdan/pathforge/internal/pathgen"
	"github.com/vovakirdan/pathforge/internal/storage"
)

var (
	// Global flags
	flagCanvas string
	flagGrid   float64
	flagSeed   int64
	flagDBPath string
	flagConfig string
	flagDev    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pathforge",
	Short: "Procedural enemy-route generation for tower-defense levels",
	Long: `pathforge generates enemy routes for tower-defense levels: seeded,
validated, balance-scored, and reproducible.

Available commands:
  generate - Generate a route for a level and print it
  preview  - Interactive terminal preview
  test     - Run the mode/theme/complexity test matrix for a level
  runs     - Show recorded generation runs
  export   - Print a level's resolved configuration as YAML
  serve    - Serve the preview over SSH

Examples:
  pathforge generate 3 --theme forest --json
  pathforge preview --level 5
  pathforge test 1
  pathforge serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCanvas, "canvas", "1200x600", "Canvas size as WxH in logical units")
	rootCmd.PersistentFlags().Float64Var(&flagGrid, "grid", 40, "Grid cell size in logical units")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = derive from time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.pathforge/runs.db", "Path to run history database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to levels configuration YAML")
	rootCmd.PersistentFlags().BoolVar(&flagDev, "dev", false, "Development mode (more retries, verbose errors)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
}

// parseCanvas parses the WxH canvas flag.
func parseCanvas() (float64, float64, error) {
	parts := strings.SplitN(flagCanvas, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid canvas %q, expected WxH", flagCanvas)
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid canvas width %q", parts[0])
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid canvas height %q", parts[1])
	}
	return w, h, nil
}

// buildGenerator assembles a generator from the global flags.
func buildGenerator(logger *log.Logger) (*pathgen.Generator, float64, float64, error) {
	w, h, err := parseCanvas()
	if err != nil {
		return nil, 0, 0, err
	}

	table, err := levels.Load(flagConfig)
	if err != nil {
		return nil, 0, 0, err
	}

	gen, err := pathgen.NewGenerator(pathgen.Config{
		CanvasWidth:  w,
		CanvasHeight: h,
		GridSize:     flagGrid,
		Development:  flagDev,
		Logger:       logger,
	}, table)
	if err != nil {
		return nil, 0, 0, err
	}
	return gen, w, h, nil
}

// newLogger builds the CLI logger; --dev lowers the level to debug.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "pathforge",
	})
	if flagDev {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// seedFlag returns the --seed value as the generator expects it.
func seedFlag() *int64 {
	if flagSeed == 0 {
		return nil
	}
	s := flagSeed
	return &s
}

// openStore opens the run database, or returns nil if the flag is empty.
func openStore() *storage.Store {
	if flagDBPath == "" {
		return nil
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run history disabled: %v\n", err)
		return nil
	}
	return store
}
