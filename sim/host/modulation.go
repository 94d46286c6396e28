package host

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Modulator produces slowly varying control signals for the signal adapter's
// drive and softness inputs from layered simplex noise. Each input channel reads
// its own row of the noise field, so channels drift independently.
type Modulator struct {
	noise       opensimplex.Noise
	rate        float64 // noise-field units per second
	octaves     int
	persistence float64
	ranges      []Range // per channel; the last entry repeats
}

// Range bounds a modulated channel.
type Range struct {
	Lo, Hi float64
}

// ModulationConfig configures a Modulator.
type ModulationConfig struct {
	Seed        int64
	Rate        float64 // how fast the field is traversed, in units per second
	Octaves     int
	Persistence float64
	// Ranges bounds each channel in order; channels past the end reuse the last range.
	Ranges []Range
}

// DefaultModulationConfig drives every channel through [0,1] at a slow rate.
func DefaultModulationConfig(seed int64) ModulationConfig {
	return ModulationConfig{
		Seed:        seed,
		Rate:        0.5,
		Octaves:     3,
		Persistence: 0.5,
		Ranges:      []Range{{Lo: 0, Hi: 1}},
	}
}

// NewModulator builds a Modulator from cfg.
func NewModulator(cfg ModulationConfig) *Modulator {
	octaves := cfg.Octaves
	if octaves < 1 {
		octaves = 1
	}
	ranges := cfg.Ranges
	if len(ranges) == 0 {
		ranges = []Range{{Lo: 0, Hi: 1}}
	}
	return &Modulator{
		noise:       opensimplex.NewNormalized(cfg.Seed),
		rate:        math.Abs(cfg.Rate),
		octaves:     octaves,
		persistence: cfg.Persistence,
		ranges:      append([]Range(nil), ranges...),
	}
}

// At returns channel c's value at time t seconds, within the channel's range.
func (m *Modulator) At(c int, t float64) float64 {
	r := m.ranges[len(m.ranges)-1]
	if c < len(m.ranges) {
		r = m.ranges[c]
	}
	v := octaveNoise(m.noise, t*m.rate, float64(c)*7.31, m.octaves, 1, m.persistence)
	return r.Lo + v*(r.Hi-r.Lo)
}

// Fill writes one frame of channel values for frame index frame at sampleRate.
func (m *Modulator) Fill(in []float64, frame int64, sampleRate float64) {
	t := float64(frame) / sampleRate
	for c := range in {
		in[c] = m.At(c, t)
	}
}

// octaveNoise layers octaves of normalized noise; the result stays in [0,1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
