package trace

// TraceSummary aggregates statistics from a GeneratorTrace.
type TraceSummary struct {
	TotalSteps          int
	PlacedCount         int
	ForcedCount         int
	EmptyCount          int
	RejectedEdits       int
	UniqueSpecies       int
	SpeciesDistribution map[int]int // species id → placements
	MeanGap             float64     // mean ticks between consecutive placements
	MaxGap              int64
}

// Summarize computes aggregate statistics from a GeneratorTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(gt *GeneratorTrace) *TraceSummary {
	summary := &TraceSummary{
		SpeciesDistribution: make(map[int]int),
	}
	if gt == nil {
		return summary
	}

	summary.TotalSteps = len(gt.Placements)
	var lastTick int64
	gaps, gapSum := 0, int64(0)
	for _, p := range gt.Placements {
		if !p.Placed {
			summary.EmptyCount++
			continue
		}
		summary.PlacedCount++
		if p.Forced {
			summary.ForcedCount++
		}
		summary.SpeciesDistribution[p.SpeciesID]++
		if summary.PlacedCount > 1 {
			gap := p.Tick - lastTick
			gapSum += gap
			gaps++
			if gap > summary.MaxGap {
				summary.MaxGap = gap
			}
		}
		lastTick = p.Tick
	}
	if gaps > 0 {
		summary.MeanGap = float64(gapSum) / float64(gaps)
	}
	for _, e := range gt.Edits {
		if !e.Applied {
			summary.RejectedEdits++
		}
	}

	summary.UniqueSpecies = len(summary.SpeciesDistribution)

	return summary
}
