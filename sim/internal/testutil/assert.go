// Package testutil provides shared test infrastructure for the generator packages.
// It holds tolerance assertions used across sim/ and sim/host/ test packages.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertUnitInterval fails when v is NaN or outside [0,1].
func AssertUnitInterval(t *testing.T, name string, v float64) {
	t.Helper()
	if math.IsNaN(v) || v < 0 || v > 1 {
		t.Errorf("%s = %v, want a value in [0,1]", name, v)
	}
}

// AssertBalanced fails when two counts differ by more than tol of their sum.
func AssertBalanced(t *testing.T, name string, a, b int, tol float64) {
	t.Helper()
	total := a + b
	if total == 0 {
		t.Errorf("%s: both counts are zero", name)
		return
	}
	imbalance := math.Abs(float64(a-b)) / float64(total)
	if imbalance > tol {
		t.Errorf("%s: counts %d vs %d, imbalance %.4f exceeds %.4f", name, a, b, imbalance, tol)
	}
}
