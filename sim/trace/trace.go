package trace

// TraceLevel controls the verbosity of placement tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelPlacements captures every step outcome and host edit.
	TraceLevelPlacements TraceLevel = "placements"
	// TraceLevelCandidates additionally copies the scored candidate probabilities.
	TraceLevelCandidates TraceLevel = "candidates"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:       true,
	TraceLevelPlacements: true,
	TraceLevelCandidates: true,
	"":                   true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// GeneratorTrace collects step and edit records during a run.
type GeneratorTrace struct {
	Config     TraceConfig
	Placements []PlacementRecord
	Edits      []EditRecord
}

// NewGeneratorTrace creates a GeneratorTrace ready for recording.
func NewGeneratorTrace(config TraceConfig) *GeneratorTrace {
	return &GeneratorTrace{
		Config:     config,
		Placements: make([]PlacementRecord, 0),
		Edits:      make([]EditRecord, 0),
	}
}

// Enabled reports whether records should be collected at all.
func (gt *GeneratorTrace) Enabled() bool {
	return gt != nil && gt.Config.Level != TraceLevelNone && gt.Config.Level != ""
}

// WantsCandidates reports whether candidate probabilities should be copied.
func (gt *GeneratorTrace) WantsCandidates() bool {
	return gt != nil && gt.Config.Level == TraceLevelCandidates
}

// RecordPlacement appends a step record.
func (gt *GeneratorTrace) RecordPlacement(record PlacementRecord) {
	gt.Placements = append(gt.Placements, record)
}

// RecordEdit appends an edit record.
func (gt *GeneratorTrace) RecordEdit(record EditRecord) {
	gt.Edits = append(gt.Edits, record)
}
