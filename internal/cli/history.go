package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eyad-hamdy98/CheckBeer/internal/store"
)

var historyCount int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 20, "Number of recent runs to show")
}

var historyCmd = &cobra.Command{
	Use:   "history <db>",
	Short: "Show recent probe runs from a report database",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := store.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Recent(cmd.Context(), historyCount)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		verdict := "clean"
		if r.Suspicious {
			verdict = "SUSPICIOUS"
		}
		snap := r.Snapshot
		if snap == "" {
			snap = "(default)"
		}
		fmt.Printf("%-6d %s  %-10s %s\n", r.ID, r.Timestamp, verdict, snap)
	}
	return nil
}
