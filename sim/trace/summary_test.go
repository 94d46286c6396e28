package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	gt := NewGeneratorTrace(TraceConfig{Level: TraceLevelPlacements})

	// WHEN summarized
	summary := Summarize(gt)

	// THEN all counts are zero
	if summary.TotalSteps != 0 || summary.PlacedCount != 0 || summary.EmptyCount != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.MeanGap != 0 || summary.MaxGap != 0 {
		t.Error("expected 0 gap values")
	}
	if len(summary.SpeciesDistribution) != 0 {
		t.Error("expected empty species distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalSteps != 0 || summary.SpeciesDistribution == nil {
		t.Errorf("unexpected summary for nil trace: %+v", summary)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with mixed placed, forced, and empty steps
	gt := NewGeneratorTrace(TraceConfig{Level: TraceLevelPlacements})
	gt.RecordPlacement(PlacementRecord{Tick: 1, Placed: true, SpeciesID: 0})
	gt.RecordPlacement(PlacementRecord{Tick: 2, SpeciesID: -1})
	gt.RecordPlacement(PlacementRecord{Tick: 3, SpeciesID: -1})
	gt.RecordPlacement(PlacementRecord{Tick: 4, Placed: true, SpeciesID: 1})
	gt.RecordPlacement(PlacementRecord{Tick: 10, Placed: true, Forced: true, SpeciesID: 0})
	gt.RecordEdit(EditRecord{Op: "setSoftness", Species: 9, Value: 0.5, Applied: false})

	// WHEN summarized
	summary := Summarize(gt)

	// THEN counts match
	if summary.TotalSteps != 5 {
		t.Errorf("expected 5 steps, got %d", summary.TotalSteps)
	}
	if summary.PlacedCount != 3 || summary.EmptyCount != 2 || summary.ForcedCount != 1 {
		t.Errorf("counts mismatch: %+v", summary)
	}
	if summary.UniqueSpecies != 2 || summary.SpeciesDistribution[0] != 2 {
		t.Errorf("distribution mismatch: %v", summary.SpeciesDistribution)
	}
	if summary.RejectedEdits != 1 {
		t.Errorf("expected 1 rejected edit, got %d", summary.RejectedEdits)
	}

	// THEN gaps are 3 and 6 ticks
	if summary.MeanGap != 4.5 {
		t.Errorf("expected mean gap 4.5, got %f", summary.MeanGap)
	}
	if summary.MaxGap != 6 {
		t.Errorf("expected max gap 6, got %d", summary.MaxGap)
	}
}
