package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/jammed-packing/sim"
	"github.com/inference-sim/jammed-packing/sim/host"
)

// messagesCmd feeds control messages, one per line, through the message adapter
var messagesCmd = &cobra.Command{
	Use:   "messages [file]",
	Short: "Drive the generator with control messages from a file or stdin",
	Long: `Reads one message per line: bang, force <species>, setDiameter <species> <value>,
setSoftness <species> <value>, setAbundance <species> <value>, exp <value>,
add <diameter> <softness>, remove <species>, drive <species> <value>, report.
Every placement prints "<tick> <species>" (forced placements are marked with '!').`,
	Args: cobra.MaximumNArgs(1),
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

		in := io.Reader(os.Stdin)
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				logrus.Fatalf("Failed to open messages file: %v", err)
			}
			defer f.Close()
			in = f
		}
		if err := feedMessages(engine, in, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// feedMessages dispatches every line of in. Malformed messages are logged and
// skipped; only read errors stop the feed.
func feedMessages(engine *sim.Engine, in io.Reader, out io.Writer) error {
	h := host.NewMessageHost(engine, out, func(o sim.Outcome) {
		mark := ""
		if o.Forced {
			mark = "!"
		}
		fmt.Fprintf(out, "%d %d%s\n", o.Tick, o.SpeciesID, mark)
	})

	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		if err := h.Send(scanner.Text()); err != nil {
			logrus.Warnf("line %d: %v", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading messages: %w", err)
	}
	return nil
}

func init() {
	registerGeneratorFlags(messagesCmd)
	rootCmd.AddCommand(messagesCmd)
}
