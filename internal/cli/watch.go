package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eyad-hamdy98/CheckBeer/internal/watch"
	"github.com/eyad-hamdy98/CheckBeer/probe"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&runSnapshot, "snapshot", "s", "", "Path to the package snapshot YAML to watch (required)")
	watchCmd.Flags().BoolVar(&runJSON, "json", false, "Emit reports as JSON")
	watchCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Suppress per-crossing detector logs")
	watchCmd.Flags().StringVar(&runAuditLog, "audit-log", "", "Append each verdict to a hash-chained JSONL run log")
	watchCmd.Flags().StringVar(&runDB, "db", "", "Persist each report to a SQLite database")
	watchCmd.MarkFlagRequired("snapshot")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the detectors whenever the snapshot changes",
	Long: "Runs the full detector pipeline once, then watches the snapshot file\n" +
		"and re-runs on every change until interrupted.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pass := func() {
		report, err := runOnce(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "checkbeer: %v\n", err)
			return
		}
		if runJSON {
			out, err := probe.FormatJSON(*report)
			if err != nil {
				fmt.Fprintf(os.Stderr, "checkbeer: %v\n", err)
				return
			}
			fmt.Println(out)
		} else {
			fmt.Print(probe.FormatText(*report))
		}
	}

	pass()
	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", runSnapshot)

	w := watch.NewFileWatcher(runSnapshot, pass)
	return w.Run(ctx)
}
