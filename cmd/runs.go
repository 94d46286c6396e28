package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/jammed-packing/sim/store"
)

var (
	// CLI flags for `runs`
	runsStorePath string // SQLite run store
	runsShowID    string // Run whose placements to print
)

// runsCmd lists runs stored by `run --store`, or prints one run's placements
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs or show one run's placements",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		if runsStorePath == "" {
			logrus.Fatalf("--store is required")
		}
		s, err := store.NewStore("sqlite", runsStorePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := s.Init(ctx); err != nil {
			logrus.Fatalf("Failed to open run store: %v", err)
		}
		defer store.CloseIfSupported(s)

		if runsShowID != "" {
			err = showRun(ctx, s, runsShowID, os.Stdout)
		} else {
			err = listRuns(ctx, s, os.Stdout)
		}
		if err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func listRuns(ctx context.Context, s store.Store, w io.Writer) error {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no stored runs")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  seed=%d  %s  ticks=%s  placements=%s\n",
			r.ID, humanize.Time(r.CreatedAt), r.Seed, r.Selection,
			humanize.Comma(r.Ticks), humanize.Comma(int64(r.Placements)))
	}
	return nil
}

func showRun(ctx context.Context, s store.Store, id string, w io.Writer) error {
	run, ok, err := s.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("loading run: %w", err)
	}
	if !ok {
		return fmt.Errorf("run %s not found", id)
	}
	placements, _, err := s.GetPlacements(ctx, id)
	if err != nil {
		return fmt.Errorf("loading placements: %w", err)
	}

	fmt.Fprintf(w, "Run %s (seed %d, %s ticks)\n", run.ID, run.Seed, humanize.Comma(run.Ticks))
	fmt.Fprintf(w, "--- config ---\n%s", run.Config)
	fmt.Fprintln(w, "--- placements ---")
	for _, p := range placements {
		mark := ""
		if p.Forced {
			mark = "!"
		}
		fmt.Fprintf(w, "%d %d%s\n", p.Tick, p.SpeciesID, mark)
	}
	return nil
}

func init() {
	runsCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runsCmd.Flags().StringVar(&runsStorePath, "store", "", "SQLite run store")
	runsCmd.Flags().StringVar(&runsShowID, "show", "", "Print the placements of this run")
	rootCmd.AddCommand(runsCmd)
}
