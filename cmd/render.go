package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/jammed-packing/sim"
	"github.com/inference-sim/jammed-packing/sim/host"
)

var (
	// CLI flags for `render`
	renderOut        string        // WAV output path
	renderDuration   time.Duration // Audio length
	renderSampleRate int           // Frames per second
	renderVoices     int           // Voices per group
	renderGroups     int           // Independent generator groups mixed together
	renderDiameterMs float64       // Voice diameter in milliseconds
	renderTrigger    int           // Pulse width in frames
	renderDriveMode  string        // nudge or forced
	renderModRate    float64       // Modulation speed
	renderGain       float64       // Output gain
)

// renderCmd runs the signal-rate adapter at audio rate and encodes the result as WAV
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render per-sample generator pulses to a WAV file",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		if renderOut == "" {
			logrus.Fatalf("--out is required")
		}
		f, err := os.Create(renderOut)
		if err != nil {
			logrus.Fatalf("Failed to create %s: %v", renderOut, err)
		}
		defer f.Close()

		placements := 0
		streamer, err := buildRenderMix(seed, func(sim.Outcome) { placements++ })
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		rate := beep.SampleRate(renderSampleRate)
		if err := host.RenderWAV(f, streamer, rate, renderDuration, renderGain); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Rendered %v (%d placements) to %s", renderDuration, placements, renderOut)
		fmt.Printf("%s: %v, %d groups x %d voices, %d placements\n", renderOut, renderDuration, renderGroups, renderVoices, placements)
	},
}

// buildRenderMix creates one signal host per group, each with its own random
// stream and its own modulation field, and mixes their renderers.
func buildRenderMix(seed int64, onPlace func(sim.Outcome)) (beep.Streamer, error) {
	if renderSampleRate <= 0 {
		return nil, fmt.Errorf("--sample-rate must be positive, got %d", renderSampleRate)
	}
	if renderGroups < 1 {
		return nil, fmt.Errorf("--groups must be at least 1, got %d", renderGroups)
	}
	mode, err := parseDriveMode(renderDriveMode)
	if err != nil {
		return nil, err
	}
	rate := beep.SampleRate(renderSampleRate)

	prng := sim.NewPartitionedRNG(sim.NewGeneratorKey(seed))
	modSeeds := prng.ForSubsystem(sim.SubsystemModulation)
	streamers := make([]beep.Streamer, renderGroups)
	for g := 0; g < renderGroups; g++ {
		cfg := host.DefaultSignalConfig()
		cfg.Voices = renderVoices
		cfg.SampleRate = float64(renderSampleRate)
		cfg.TriggerWidth = renderTrigger
		h, err := host.NewSignalHost(cfg, prng.ForSubsystem(sim.SubsystemGroup(g)))
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", g, err)
		}
		h.SetDriveMode(mode)
		for v := 0; v < h.Voices(); v++ {
			h.Engine().SetDiameter(v, h.MillisToFrames(renderDiameterMs))
		}

		modCfg := host.DefaultModulationConfig(modSeeds.Int63())
		modCfg.Rate = renderModRate
		r := host.NewRenderer(h, host.NewModulator(modCfg), rate)
		r.OnPlace(onPlace)
		streamers[g] = r
	}
	return beep.Mix(streamers...), nil
}

func parseDriveMode(name string) (host.DriveMode, error) {
	switch name {
	case "", "nudge":
		return host.DriveNudge, nil
	case "forced":
		return host.DriveForced, nil
	default:
		return 0, fmt.Errorf("unknown drive mode %q (nudge, forced)", name)
	}
}

func init() {
	renderCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the generator groups and modulation")
	renderCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "WAV output path")
	renderCmd.Flags().DurationVar(&renderDuration, "duration", 10*time.Second, "Length of audio to render")
	renderCmd.Flags().IntVar(&renderSampleRate, "sample-rate", int(host.DefaultSampleRate), "Sample rate in Hz")
	renderCmd.Flags().IntVar(&renderVoices, "voices", host.DefaultVoices, "Voices per group (1-16)")
	renderCmd.Flags().IntVar(&renderGroups, "groups", 1, "Independent generator groups mixed together")
	renderCmd.Flags().Float64Var(&renderDiameterMs, "diameter-ms", 62.5, "Voice diameter in milliseconds")
	renderCmd.Flags().IntVar(&renderTrigger, "trigger", host.DefaultTriggerWidth, "Pulse width in frames")
	renderCmd.Flags().StringVar(&renderDriveMode, "drive-mode", "nudge", "How drive inputs act (nudge, forced)")
	renderCmd.Flags().Float64Var(&renderModRate, "mod-rate", 0.5, "Modulation speed in noise units per second")
	renderCmd.Flags().Float64Var(&renderGain, "gain", 0.8, "Output gain")
	rootCmd.AddCommand(renderCmd)
}
