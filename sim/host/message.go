package host

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/jammed-packing/sim"
)

// MessageHost drives an engine from discrete messages, one tick per "bang".
// Placements are delivered to the voice callback as the winning species id.
type MessageHost struct {
	engine   *sim.Engine
	report   io.Writer
	onVoice  func(sim.Outcome)
	handlers handlerTable
}

// NewMessageHost wraps engine. report receives "report" output; onVoice (optional)
// is called for every placement.
func NewMessageHost(engine *sim.Engine, report io.Writer, onVoice func(sim.Outcome)) *MessageHost {
	h := &MessageHost{engine: engine, report: report, onVoice: onVoice}
	h.handlers = handlerTable{
		"bang": {0, func([]float64) { h.emit(h.engine.Tick()) }},
		"force": {1, func(a []float64) {
			h.engine.Advance()
			h.emit(h.engine.ForcePlacement(index(a[0])))
		}},
		"setDiameter":  {2, func(a []float64) { h.engine.SetDiameter(index(a[0]), a[1]) }},
		"setSoftness":  {2, func(a []float64) { h.engine.SetSoftness(index(a[0]), a[1]) }},
		"setAbundance": {2, func(a []float64) { h.engine.SetAbundance(index(a[0]), a[1]) }},
		"exp":          {1, func(a []float64) { h.engine.SetSoftnessExponent(a[0]) }},
		"add": {2, func(a []float64) {
			if id := h.engine.AddSpecies(a[0], a[1]); id != sim.NoSpecies {
				logrus.Infof("[tick %07d] added species %d", h.engine.Clock(), id)
			}
		}},
		"remove": {1, func(a []float64) { h.engine.RemoveSpecies(index(a[0])) }},
		"drive":  {2, func(a []float64) { h.engine.SetCandidateDrive(index(a[0]), a[1]) }},
		"report": {0, func([]float64) { h.engine.Snapshot().Report(h.report) }},
	}
	return h
}

// Send parses and dispatches one message line.
func (h *MessageHost) Send(line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}
	return h.Dispatch(cmd)
}

// Dispatch applies a parsed message.
func (h *MessageHost) Dispatch(cmd Command) error {
	return h.handlers.dispatch(cmd)
}

// Engine returns the wrapped engine.
func (h *MessageHost) Engine() *sim.Engine { return h.engine }

func (h *MessageHost) emit(out sim.Outcome) {
	if out.Placed && h.onVoice != nil {
		h.onVoice(out)
	}
}
