package host

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"

	"github.com/inference-sim/jammed-packing/sim"
)

// Pentatonic voice pitches; voices past the table climb by octaves.
var voiceFreqs = []float64{220, 247.5, 275, 330, 366.7}

const strikeDecay = 80 * time.Millisecond

// Renderer is a beep.Streamer that runs a SignalHost at the audio rate, feeds its
// inputs from a Modulator, and turns each rising pulse into a decaying sine strike.
// It never drains; bound it with beep.Take.
type Renderer struct {
	host  *SignalHost
	mod   *Modulator
	rate  beep.SampleRate
	frame int64

	in, out   []float64
	prevPulse []float64
	phase     []float64
	env       []float64
	decay     float64

	onPlace func(sim.Outcome)
}

// NewRenderer wraps host. mod may be nil, leaving every input at zero.
func NewRenderer(host *SignalHost, mod *Modulator, rate beep.SampleRate) *Renderer {
	voices := host.Voices()
	return &Renderer{
		host:      host,
		mod:       mod,
		rate:      rate,
		in:        make([]float64, host.Inputs()),
		out:       make([]float64, voices),
		prevPulse: make([]float64, voices),
		phase:     make([]float64, voices),
		env:       make([]float64, voices),
		decay:     math.Exp(-1 / float64(rate.N(strikeDecay))),
	}
}

// OnPlace registers a callback for every placement the host makes.
func (r *Renderer) OnPlace(fn func(sim.Outcome)) {
	r.onPlace = fn
}

// Stream implements beep.Streamer.
func (r *Renderer) Stream(samples [][2]float64) (n int, ok bool) {
	voices := len(r.out)
	for i := range samples {
		if r.mod != nil {
			r.mod.Fill(r.in, r.frame, float64(r.rate))
		}
		if o := r.host.ProcessFrame(r.in, r.out); o.Placed && r.onPlace != nil {
			r.onPlace(o)
		}
		r.frame++

		var left, right float64
		for v := 0; v < voices; v++ {
			if r.out[v] > 0 && r.prevPulse[v] == 0 {
				r.env[v], r.phase[v] = 1, 0
			}
			r.prevPulse[v] = r.out[v]
			if r.env[v] < 1e-4 {
				continue
			}
			s := r.env[v] * math.Sin(2*math.Pi*r.phase[v])
			pan := float64(v+1) / float64(voices+1)
			left += s * (1 - pan)
			right += s * pan

			r.phase[v] += voiceFreq(v) / float64(r.rate)
			r.phase[v] -= math.Floor(r.phase[v])
			r.env[v] *= r.decay
		}
		samples[i][0] = left / float64(voices)
		samples[i][1] = right / float64(voices)
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (r *Renderer) Err() error { return nil }

// Frames returns how many frames have been rendered.
func (r *Renderer) Frames() int64 { return r.frame }

func voiceFreq(v int) float64 {
	f := voiceFreqs[v%len(voiceFreqs)]
	return f * math.Pow(2, float64(v/len(voiceFreqs)))
}

// gain wraps s in a volume stage; gain <= 0 silences it.
func gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g), Silent: false}
}

// RenderWAV encodes d of s as 16-bit stereo WAV at rate, scaled by g.
func RenderWAV(w io.WriteSeeker, s beep.Streamer, rate beep.SampleRate, d time.Duration, g float64) error {
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(w, gain(beep.Take(rate.N(d), s), g), format); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	return nil
}
