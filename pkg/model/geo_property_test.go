package model

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// latLonGen draws a point with valid coordinate ranges, matching the
// finite-input guard HaversineMeters itself applies (spec.md §9 "avoid NaN").
func latLonGen(t *rapid.T, label string) LatLon {
	return LatLon{
		Lat: rapid.Float64Range(-90, 90).Draw(t, label+"Lat"),
		Lon: rapid.Float64Range(-180, 180).Draw(t, label+"Lon"),
	}
}

// TestHaversineMetersProperties exercises the quantified invariants spec.md
// §8 lists for the Haversine distance: symmetry, non-negativity, zero for
// identical points, and (to numerical tolerance) the triangle inequality.
func TestHaversineMetersProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := latLonGen(t, "a")
		b := latLonGen(t, "b")
		c := latLonGen(t, "c")

		dAB := HaversineMeters(a, b)
		dBA := HaversineMeters(b, a)
		dAC := HaversineMeters(a, c)
		dCB := HaversineMeters(c, b)

		if dAB < 0 {
			t.Fatalf("distance must be non-negative, got %f", dAB)
		}
		if math.Abs(dAB-dBA) > 1e-6 {
			t.Fatalf("distance must be symmetric: d(a,b)=%f d(b,a)=%f", dAB, dBA)
		}
		if HaversineMeters(a, a) > 1e-6 {
			t.Fatalf("distance from a point to itself must be zero, got %f", HaversineMeters(a, a))
		}
		// Triangle inequality, with a small tolerance for floating-point drift.
		const tol = 1.0
		if dAB > dAC+dCB+tol {
			t.Fatalf("triangle inequality violated: d(a,b)=%f > d(a,c)=%f + d(c,b)=%f", dAB, dAC, dCB)
		}
	})
}
