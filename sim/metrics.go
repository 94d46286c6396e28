// Tracks generator-wide and per-species placement statistics.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates step outcomes for final reporting.
// Host-side: unlike the engine it keeps every onset, so memory grows with the run.
type Metrics struct {
	Ticks      int64       // last tick observed
	Placements int         // placed steps, forced included
	Forced     int         // placements that bypassed selection
	EmptyTicks int         // steps with no placement
	Species    map[int]int // species id -> placements

	onsets        []int64         // every placement tick, in order
	speciesOnsets map[int][]int64 // species id -> placement ticks
}

// MetricsOutput is the JSON form written by SaveResults.
type MetricsOutput struct {
	RunID          string         `json:"run_id,omitempty"`
	Ticks          int64          `json:"ticks"`
	Placements     int            `json:"placements"`
	Forced         int            `json:"forced"`
	EmptyTicks     int            `json:"empty_ticks"`
	PlacementRate  float64        `json:"placement_rate"`
	IntervalMean   float64        `json:"interval_mean"`
	IntervalStdDev float64        `json:"interval_stddev"`
	SpeciesCounts  map[string]int `json:"species_counts"`
	NumberVariance float64        `json:"number_variance"`
	VarianceWindow int64          `json:"number_variance_window"`
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Species:       make(map[int]int),
		speciesOnsets: make(map[int][]int64),
	}
}

// Observe folds one engine outcome into the aggregates.
func (m *Metrics) Observe(o Outcome) {
	if o.Tick > m.Ticks {
		m.Ticks = o.Tick
	}
	if !o.Placed {
		m.EmptyTicks++
		return
	}
	m.Placements++
	if o.Forced {
		m.Forced++
	}
	m.Species[o.SpeciesID]++
	m.onsets = append(m.onsets, o.Tick)
	m.speciesOnsets[o.SpeciesID] = append(m.speciesOnsets[o.SpeciesID], o.Tick)
}

// IntervalStats returns the mean and standard deviation of the gaps between
// consecutive placements of any species. NaN when fewer than two gaps exist.
func (m *Metrics) IntervalStats() (mean, std float64) {
	return intervalStats(m.onsets)
}

// SpeciesIntervalStats is IntervalStats restricted to one species.
func (m *Metrics) SpeciesIntervalStats(id int) (mean, std float64) {
	return intervalStats(m.speciesOnsets[id])
}

func intervalStats(onsets []int64) (float64, float64) {
	if len(onsets) < 3 {
		return math.NaN(), math.NaN()
	}
	gaps := make([]float64, len(onsets)-1)
	for i := 1; i < len(onsets); i++ {
		gaps[i-1] = float64(onsets[i] - onsets[i-1])
	}
	return stat.MeanStdDev(gaps, nil)
}

// NumberVariance returns the variance of placement counts over consecutive,
// non-overlapping windows of the given length. A hyperuniform sequence keeps
// this small as the window grows; a Poisson-like one grows it linearly.
func (m *Metrics) NumberVariance(window int64) float64 {
	if window <= 0 || m.Ticks < 2*window {
		return math.NaN()
	}
	counts := make([]float64, m.Ticks/window)
	for _, t := range m.onsets {
		// ticks start at 1
		idx := (t - 1) / window
		if idx < int64(len(counts)) {
			counts[idx]++
		}
	}
	return stat.Variance(counts, nil)
}

// PlacementRate is placements per tick.
func (m *Metrics) PlacementRate() float64 {
	if m.Ticks == 0 {
		return 0
	}
	return float64(m.Placements) / float64(m.Ticks)
}

// Print writes a human-readable summary.
func (m *Metrics) Print(w io.Writer, varianceWindow int64) {
	fmt.Fprintln(w, "=== Generator Metrics ===")
	fmt.Fprintf(w, "Ticks                : %s\n", humanize.Comma(m.Ticks))
	fmt.Fprintf(w, "Placements           : %s (%s forced)\n", humanize.Comma(int64(m.Placements)), humanize.Comma(int64(m.Forced)))
	fmt.Fprintf(w, "Empty ticks          : %s\n", humanize.Comma(int64(m.EmptyTicks)))
	fmt.Fprintf(w, "Placement rate       : %.4f per tick\n", m.PlacementRate())
	if mean, std := m.IntervalStats(); !math.IsNaN(mean) {
		fmt.Fprintf(w, "Inter-onset interval : %.2f ± %.2f ticks\n", mean, std)
	}
	if v := m.NumberVariance(varianceWindow); !math.IsNaN(v) {
		fmt.Fprintf(w, "Number variance      : %.4f (window %d)\n", v, varianceWindow)
	}
	for _, id := range m.speciesIDs() {
		line := fmt.Sprintf("  species %-3d        : %s", id, humanize.Comma(int64(m.Species[id])))
		if mean, std := m.SpeciesIntervalStats(id); !math.IsNaN(mean) {
			line += fmt.Sprintf("  (interval %.2f ± %.2f)", mean, std)
		}
		fmt.Fprintln(w, line)
	}
}

// Output builds the JSON form of the metrics.
func (m *Metrics) Output(runID string, varianceWindow int64) MetricsOutput {
	out := MetricsOutput{
		RunID:          runID,
		Ticks:          m.Ticks,
		Placements:     m.Placements,
		Forced:         m.Forced,
		EmptyTicks:     m.EmptyTicks,
		PlacementRate:  m.PlacementRate(),
		SpeciesCounts:  make(map[string]int, len(m.Species)),
		VarianceWindow: varianceWindow,
	}
	if mean, std := m.IntervalStats(); !math.IsNaN(mean) {
		out.IntervalMean, out.IntervalStdDev = mean, std
	}
	if v := m.NumberVariance(varianceWindow); !math.IsNaN(v) {
		out.NumberVariance = v
	}
	for id, n := range m.Species {
		out.SpeciesCounts[fmt.Sprintf("%d", id)] = n
	}
	return out
}

// SaveResults writes the JSON metrics to outputPath; an empty path is a no-op.
func (m *Metrics) SaveResults(runID string, varianceWindow int64, outputPath string) error {
	if outputPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(m.Output(runID, varianceWindow), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	logrus.Infof("Metrics written to: %s", outputPath)
	return nil
}

func (m *Metrics) speciesIDs() []int {
	ids := make([]int, 0, len(m.Species))
	for id := range m.Species {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
