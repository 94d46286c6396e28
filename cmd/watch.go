package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/jammed-packing/sim/host"
)

var (
	// CLI flags for `watch`
	watchInterval      time.Duration // Redraw interval
	watchTicksPerFrame int           // Engine ticks per redraw
)

// watchCmd shows live placements as a scrolling lane view in the terminal
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch placements live in the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveGeneratorConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		engine, err := newEngine(cfg, seed)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			logrus.Fatalf("Failed to create screen: %v", err)
		}
		if err := screen.Init(); err != nil {
			logrus.Fatalf("Failed to initialize screen: %v", err)
		}
		defer screen.Fini()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		width, _ := screen.Size()
		view := host.NewLaneView(engine.NumSpecies(), max(width-4, 1))
		if err := view.Watch(ctx, screen, engine.Tick, watchTicksPerFrame, watchInterval); err != nil {
			screen.Fini()
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	registerGeneratorFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 50*time.Millisecond, "Redraw interval")
	watchCmd.Flags().IntVar(&watchTicksPerFrame, "ticks-per-frame", 1, "Engine ticks per redraw")
	rootCmd.AddCommand(watchCmd)
}
