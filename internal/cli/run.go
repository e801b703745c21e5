package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eyad-hamdy98/CheckBeer/internal/audit"
	"github.com/eyad-hamdy98/CheckBeer/internal/diag"
	"github.com/eyad-hamdy98/CheckBeer/internal/simenv"
	"github.com/eyad-hamdy98/CheckBeer/internal/snapshot"
	"github.com/eyad-hamdy98/CheckBeer/internal/store"
	"github.com/eyad-hamdy98/CheckBeer/probe"
)

var (
	runSnapshot string
	runJSON     bool
	runQuiet    bool
	runAuditLog string
	runDB       string
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runSnapshot, "snapshot", "s", "", "Path to a package snapshot YAML (default: pristine install)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Emit the report as JSON")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Suppress per-crossing detector logs")
	runCmd.Flags().StringVar(&runAuditLog, "audit-log", "", "Append the verdict to a hash-chained JSONL run log")
	runCmd.Flags().StringVar(&runDB, "db", "", "Persist the report to a SQLite database")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all detectors against a package snapshot",
	Long: "Builds a simulated runtime from a snapshot profile, runs the full\n" +
		"detector pipeline against it, and prints the verdict.\n\n" +
		"Exit code 0 if the package looks clean, 1 if any detector flags it.",
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	report, err := runOnce(cmd.Context())
	if err != nil {
		return err
	}

	if runJSON {
		out, err := probe.FormatJSON(*report)
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		fmt.Print(probe.FormatText(*report))
	}

	if report.Suspicious {
		os.Exit(1)
	}
	return nil
}

// runOnce executes one full probe pass: load the snapshot, build the
// simulated runtime, run every detector, then record the report wherever
// the flags point.
func runOnce(ctx context.Context) (*probe.AggregateReport, error) {
	prof := snapshot.Default()
	if runSnapshot != "" {
		var err error
		prof, err = snapshot.Load(runSnapshot)
		if err != nil {
			return nil, err
		}
	}

	env := simenv.New(prof)

	logger := diag.Default()
	if runQuiet {
		logger = diag.Discard()
	}

	p := probe.New(env,
		probe.WithLogger(logger),
		probe.WithInspector(snapshot.NewInspector(prof)),
	)
	report := p.CheckAll(ctx, env.Context())

	if runAuditLog != "" {
		log, err := audit.Open(runAuditLog)
		if err != nil {
			return nil, err
		}
		recErr := log.Record(audit.EntryFromReport(report, runSnapshot))
		if closeErr := log.Close(); recErr == nil {
			recErr = closeErr
		}
		if recErr != nil {
			return nil, recErr
		}
	}

	if runDB != "" {
		db, err := store.Open(runDB)
		if err != nil {
			return nil, err
		}
		_, saveErr := db.Save(ctx, runSnapshot, report)
		if closeErr := db.Close(); saveErr == nil {
			saveErr = closeErr
		}
		if saveErr != nil {
			return nil, saveErr
		}
	}

	return &report, nil
}
