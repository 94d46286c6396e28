package sim

import "math"

// Body is the geometry one side of a pairwise resistance computation needs.
type Body struct {
	Diameter float64
	Softness float64
}

// ResistanceOptions parameterizes the pairwise resistance law.
type ResistanceOptions struct {
	// Exponent shapes the rise of resistance with compression, clamped to [0,1].
	// Near 0 the response is close to binary, at 1 it is linear.
	Exponent float64
	// Asymmetric normalizes both compression shares by the candidate's give,
	// matching the reference generator. When false each share is normalized by its own give.
	Asymmetric bool
}

// Resistance returns how strongly a historic event at the given temporal distance
// repels a candidate, in [0,1]. drive in [0,1] scales the result by (1 - drive).
func Resistance(candidate, historic Body, distance float64, drive float64, opts ResistanceOptions) float64 {
	giveA := candidate.Diameter * candidate.Softness
	giveB := historic.Diameter * historic.Softness

	compression := (candidate.Diameter + historic.Diameter) - distance
	if compression <= 0 {
		return 0
	}
	var r float64
	if compression > giveA+giveB {
		r = 1
	} else {
		// share the compression in proportion to each side's give
		ratio := giveA / (giveA + giveB)
		cA := ratio * compression
		cB := compression - cA
		normB := giveB
		if opts.Asymmetric {
			normB = giveA
		}
		r = 0.5 * (compressionTerm(cA, giveA, opts.Exponent) + compressionTerm(cB, normB, opts.Exponent))
	}
	return clamp01(r * (1 - clamp01(drive)))
}

// compressionTerm is (c/give)^exp, with an absent share contributing nothing and a
// share over zero give counting as fully compressed.
func compressionTerm(c, give, exp float64) float64 {
	if c <= 0 {
		return 0
	}
	if give <= 0 {
		return 1
	}
	return math.Pow(c/give, exp)
}

// TotalResistance sums the resistance every history entry exerts on a candidate at
// tick and clips the sum to 1. Sum rather than max: nearby neighbours compound.
func TotalResistance(candidate Body, drive float64, history *History, tick int64, opts ResistanceOptions) float64 {
	total := 0.0
	for i := 0; i < history.Len(); i++ {
		h := history.At(i)
		distance := float64(tick - h.Marker)
		total += Resistance(candidate, Body{Diameter: h.Diameter, Softness: h.Softness}, distance, drive, opts)
		if total >= 1 {
			return 1
		}
	}
	return total
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
