package host

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/jammed-packing/sim"
)

// DriveMode selects how the per-voice drive input acts on the engine.
type DriveMode int

const (
	// DriveNudge scales each candidate's resistance by (1 - drive).
	DriveNudge DriveMode = iota
	// DriveForced places a voice outright on a rising edge of its drive input.
	DriveForced
)

// Signal adapter defaults.
const (
	MaxVoices              = 16
	DefaultVoices          = 3
	DefaultTriggerWidth    = 100    // frames a pulse output is held high
	DefaultDiameterSamples = 2756.0 // ~62.5 ms at 44.1 kHz
	DefaultSampleRate      = 44100.0
	signalHistorySize      = 1
	risingEdgeLevel        = 0.5
)

// SignalConfig configures a SignalHost.
type SignalConfig struct {
	Voices       int     // clamped to [1, MaxVoices]
	SampleRate   float64 // frames per second, used to convert millisecond diameters
	TriggerWidth int     // frames
	Selection    string  // defaults to the threshold policy
	// AsymmetricNormalization is passed through to the engine.
	AsymmetricNormalization bool
}

// DefaultSignalConfig returns the reference per-sample generator settings.
func DefaultSignalConfig() SignalConfig {
	return SignalConfig{
		Voices:                  DefaultVoices,
		SampleRate:              DefaultSampleRate,
		TriggerWidth:            DefaultTriggerWidth,
		Selection:               sim.SelectionThreshold,
		AsymmetricNormalization: true,
	}
}

// SignalHost runs one engine tick per audio frame. Each voice is one species with
// two input channels (2v: drive, 2v+1: softness) and one pulse output that is held
// high for TriggerWidth frames after the voice is placed.
//
// ProcessFrame does not allocate; Process allocates nothing beyond its scratch
// buffers, which are sized once at construction.
type SignalHost struct {
	engine     *sim.Engine
	voices     int
	sampleRate float64
	width      int
	mode       DriveMode

	triggers  []int     // frames left high, per voice
	prevDrive []float64 // last frame's drive input, per voice
	inFrame   []float64
	outFrame  []float64

	handlers handlerTable
	report   io.Writer
}

// NewSignalHost builds a signal-rate engine with cfg.Voices species of the default
// diameter, a pool of one candidate per voice, and a single-entry history.
func NewSignalHost(cfg SignalConfig, rng *rand.Rand) (*SignalHost, error) {
	voices := cfg.Voices
	if voices < 1 {
		voices = 1
	}
	if voices > MaxVoices {
		voices = MaxVoices
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", cfg.SampleRate)
	}
	if cfg.TriggerWidth <= 0 {
		cfg.TriggerWidth = DefaultTriggerWidth
	}
	if cfg.Selection == "" {
		cfg.Selection = sim.SelectionThreshold
	}

	species := make([]sim.Species, voices)
	for i := range species {
		species[i] = sim.Species{Diameter: DefaultDiameterSamples, Softness: 0, Abundance: 1}
	}
	ecfg := sim.NewEngineConfig(voices, signalHistorySize, species)
	ecfg.Selection = cfg.Selection
	ecfg.AsymmetricNormalization = cfg.AsymmetricNormalization
	engine, err := sim.NewEngine(ecfg, rng)
	if err != nil {
		return nil, err
	}

	h := &SignalHost{
		engine:     engine,
		voices:     voices,
		sampleRate: cfg.SampleRate,
		width:      cfg.TriggerWidth,
		triggers:   make([]int, voices),
		prevDrive:  make([]float64, voices),
		inFrame:    make([]float64, 2*voices),
		outFrame:   make([]float64, voices),
		report:     io.Discard,
	}
	h.handlers = handlerTable{
		"bang": {0, func([]float64) { h.engine.Snapshot().Report(h.report) }},
		"setDiameter": {2, func(a []float64) {
			if a[1] > 0 {
				h.engine.SetDiameter(index(a[0]), h.MillisToFrames(a[1]))
			}
		}},
		"trigger": {1, func(a []float64) {
			if n := int(a[0]); n > 0 {
				h.width = n
			}
		}},
		"setAbundance": {2, func(a []float64) { h.engine.SetAbundance(index(a[0]), a[1]) }},
		"exp":          {1, func(a []float64) { h.engine.SetSoftnessExponent(a[0]) }},
		"drive":        {1, func(a []float64) { h.SetDriveMode(DriveMode(index(a[0]))) }},
	}
	return h, nil
}

// Engine returns the wrapped engine.
func (h *SignalHost) Engine() *sim.Engine { return h.engine }

// Voices returns the number of voices (species).
func (h *SignalHost) Voices() int { return h.voices }

// Inputs returns the number of input channels a frame carries.
func (h *SignalHost) Inputs() int { return 2 * h.voices }

// TriggerWidth returns the pulse length in frames.
func (h *SignalHost) TriggerWidth() int { return h.width }

// DriveMode returns the current drive mode.
func (h *SignalHost) DriveMode() DriveMode { return h.mode }

// SetDriveMode switches drive handling. Any mode other than DriveNudge is
// treated as DriveForced; entering it clears every candidate's drive.
func (h *SignalHost) SetDriveMode(m DriveMode) {
	if m != DriveNudge {
		m = DriveForced
		h.engine.ResetDrive()
	}
	h.mode = m
}

// SetReportWriter directs "bang" reports to w.
func (h *SignalHost) SetReportWriter(w io.Writer) {
	h.report = w
}

// MillisToFrames converts a duration in milliseconds to frames at the host rate.
func (h *SignalHost) MillisToFrames(ms float64) float64 {
	return ms * h.sampleRate / 1000
}

// Send parses and dispatches one control message.
func (h *SignalHost) Send(line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}
	return h.handlers.dispatch(cmd)
}

// ProcessFrame advances the engine one frame. in holds Inputs() values (missing
// channels read as 0) and out receives Voices() pulse values of 0 or 1.
// The returned outcome describes the frame's placement, if any.
func (h *SignalHost) ProcessFrame(in, out []float64) sim.Outcome {
	h.engine.Advance()

	result := sim.Outcome{Tick: h.engine.Clock(), SpeciesID: -1}
	forced := false
	for v := 0; v < h.voices; v++ {
		drive, softness := channel(in, 2*v), channel(in, 2*v+1)
		h.engine.SetCandidateSoftness(v, softness)
		switch h.mode {
		case DriveForced:
			if drive > risingEdgeLevel && h.prevDrive[v] < risingEdgeLevel {
				result = h.engine.ForcePlacement(v)
				h.fire(v)
				forced = true
			}
		default:
			h.engine.SetCandidateDrive(v, drive)
		}
		h.prevDrive[v] = drive
	}

	if !forced {
		if o := h.engine.TryPlace(); o.Placed {
			result = o
			h.fire(o.SpeciesID)
		}
	}

	for v := 0; v < h.voices && v < len(out); v++ {
		if h.triggers[v] > 0 {
			out[v] = 1
			h.triggers[v]--
		} else {
			out[v] = 0
		}
	}
	return result
}

// Process runs a block of frames. in is indexed [channel][frame] and out
// [voice][frame]; the block length is taken from out, or from in when out is empty.
// onPlace (optional) is called for every placement.
func (h *SignalHost) Process(in, out [][]float64, onPlace func(sim.Outcome)) {
	frames := blockLength(in, out)
	for f := 0; f < frames; f++ {
		for c := range h.inFrame {
			h.inFrame[c] = 0
			if c < len(in) && f < len(in[c]) {
				h.inFrame[c] = in[c][f]
			}
		}
		o := h.ProcessFrame(h.inFrame, h.outFrame)
		for v := range out {
			if v < len(h.outFrame) && f < len(out[v]) {
				out[v][f] = h.outFrame[v]
			}
		}
		if o.Placed {
			logrus.Debugf("[tick %07d] voice %d fired (forced=%v)", o.Tick, o.SpeciesID, o.Forced)
			if onPlace != nil {
				onPlace(o)
			}
		}
	}
}

func (h *SignalHost) fire(voice int) {
	if voice >= 0 && voice < h.voices {
		h.triggers[voice] = h.width
	}
}

func channel(in []float64, c int) float64 {
	if c < len(in) {
		return in[c]
	}
	return 0
}

func blockLength(in, out [][]float64) int {
	switch {
	case len(out) > 0:
		return len(out[0])
	case len(in) > 0:
		return len(in[0])
	}
	return 0
}
