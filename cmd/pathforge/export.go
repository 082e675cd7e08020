package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/pathforge/internal/geom"
	"github.com/vovakirdan/pathforge/internal/levels"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export <level>",
	Short: "Print a level's resolved configuration as YAML",
	Long: `Resolve the level's effective routing configuration (defaults plus
overrides) and print it as YAML suitable for a levels config file.

Examples:
  pathforge export 3
  pathforge export 3 --out level3.yaml
  pathforge export 7 --config ./levels.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", "", "Write to a file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	levelID, err := strconv.Atoi(args[0])
	if err != nil || levelID < 0 {
		return fmt.Errorf("invalid level %q", args[0])
	}

	table, err := levels.Load(flagConfig)
	if err != nil {
		return err
	}

	w, h, err := parseCanvas()
	if err != nil {
		return err
	}
	pres := levels.NewPreservation(table, geom.Bounds{MaxX: w, MaxY: h})
	snap := pres.ExportLevelConfiguration(levelID)

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal level configuration: %w", err)
	}

	if flagExportOut == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(flagExportOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flagExportOut, err)
	}
	fmt.Printf("Level %d configuration written to %s\n", levelID, flagExportOut)
	return nil
}
