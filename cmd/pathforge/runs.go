package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagRunsLevel int
	flagRunsLimit int
	flagRunsClear bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recorded generation runs",
	Long: `Display the most recent generation runs from the history database.

Examples:
  pathforge runs
  pathforge runs --level 3
  pathforge runs --level 3 --clear`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLevel, "level", -1, "Filter by level (-1 = all levels)")
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Maximum runs to show")
	runsCmd.Flags().BoolVar(&flagRunsClear, "clear", false, "Delete the matching runs instead of listing them")
}

func runRuns(cmd *cobra.Command, args []string) error {
	store := openStore()
	if store == nil {
		return fmt.Errorf("run history requires a database (--db)")
	}
	defer store.Close()

	if flagRunsClear {
		if err := store.ClearRuns(flagRunsLevel); err != nil {
			return err
		}
		fmt.Println("Runs cleared.")
		return nil
	}

	runs, err := store.RecentRuns(flagRunsLevel, flagRunsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'pathforge generate <level> --save' to record one.")
		return nil
	}

	fmt.Printf("  %-16s %-5s %-12s %-8s %-8s %-4s %-8s %-7s %-3s\n",
		"When", "Lvl", "Seed", "Theme", "Mode", "Pts", "Length", "Balance", "FB")
	for _, r := range runs {
		fb := ""
		if r.IsFallback {
			fb = "yes"
		}
		fmt.Printf("  %-16s %-5d %-12d %-8s %-8s %-4d %-8.0f %-7.2f %-3s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.LevelID, r.Seed,
			r.Theme, r.Mode, r.Waypoints, r.TotalLength, r.BalanceScore, fb)
	}

	if flagRunsLevel >= 0 {
		if rate, err := store.FallbackRate(flagRunsLevel); err == nil {
			fmt.Println()
			fmt.Printf("Fallback rate for level %d: %.0f%%\n", flagRunsLevel, rate*100)
		}
	}
	return nil
}
