package host

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one parsed host message: a selector followed by numeric arguments,
// e.g. "setDiameter 1 12.5".
type Command struct {
	Name string
	Args []float64
}

// ParseCommand splits a message line into its selector and numeric arguments.
// Blank lines and lines starting with '#' yield a zero Command and no error.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return Command{}, nil
	}
	cmd := Command{Name: fields[0], Args: make([]float64, 0, len(fields)-1)}
	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Command{}, fmt.Errorf("%s: argument %q is not a number", cmd.Name, f)
		}
		cmd.Args = append(cmd.Args, v)
	}
	return cmd, nil
}

// handler binds a message selector to its minimum argument count.
type handler struct {
	arity int
	fn    func(args []float64)
}

type handlerTable map[string]handler

// dispatch runs the handler for cmd. Unknown selectors and missing arguments are
// reported; out-of-domain values are the engine's to ignore.
func (t handlerTable) dispatch(cmd Command) error {
	if cmd.Name == "" {
		return nil
	}
	h, ok := t[cmd.Name]
	if !ok {
		return fmt.Errorf("unknown message %q", cmd.Name)
	}
	if len(cmd.Args) < h.arity {
		return fmt.Errorf("%s needs %d argument(s), got %d", cmd.Name, h.arity, len(cmd.Args))
	}
	h.fn(cmd.Args)
	return nil
}

// index converts a numeric message argument to a species index the way a
// control surface sends it: truncated toward zero.
func index(v float64) int {
	return int(v)
}
