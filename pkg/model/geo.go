package model

import "math"

// EarthRadiusMeters is the mean Earth radius used by the Haversine formula
// throughout both engines (spec.md §4.7.2).
const EarthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two lat/lon
// points, in meters. Symmetric, non-negative, and zero for identical
// points (spec.md §8 testable properties).
func HaversineMeters(a, b LatLon) float64 {
	if !isFinitePair(a) || !isFinitePair(b) {
		return 0
	}
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

func isFinitePair(p LatLon) bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

// WithinSquare reports whether point p lies within a square of the given
// half-side (meters, approximated in degrees as the trust model does:
// ~0.002 deg ~= 200 m) centered on center.
func WithinSquare(center, p LatLon, halfSideDeg float64) bool {
	return math.Abs(center.Lat-p.Lat) <= halfSideDeg && math.Abs(center.Lon-p.Lon) <= halfSideDeg
}

// ClusterByRadius greedily clusters points into groups in which every
// member lies within radiusMeters of the group's first point (its seed),
// used by the ultrasonic
// engine's distinct-location count (spec.md §4.8.1).
func ClusterByRadius(points []LatLon, radiusMeters float64) [][]LatLon {
	var clusters [][]LatLon
	for _, p := range points {
		placed := false
		for i, cl := range clusters {
			if HaversineMeters(cl[0], p) <= radiusMeters {
				clusters[i] = append(clusters[i], p)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []LatLon{p})
		}
	}
	return clusters
}
