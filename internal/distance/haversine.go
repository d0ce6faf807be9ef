// Package distance computes great-circle distances between WGS84 points.
package distance

import (
	"math"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

const earthRadiusKM = 6371.0

// Valid reports whether p is a plausible WGS84 coordinate: longitude in
// [-180, 180], latitude in [-90, 90], neither NaN.
func Valid(p orb.Point) bool {
	lon, lat := p.Lon(), p.Lat()
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// Kilometers returns the haversine distance between a and b. ok is false
// when either point is outside WGS84 bounds; the distance is then zero and
// must not be persisted.
func Kilometers(a, b orb.Point) (km float64, ok bool) {
	if !Valid(a) || !Valid(b) {
		zap.L().Warn("distance: invalid coordinates",
			zap.Float64s("a", a[:]),
			zap.Float64s("b", b[:]),
		)
		return 0, false
	}

	lat1 := a.Lat() * math.Pi / 180
	lon1 := a.Lon() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	lon2 := b.Lon() * math.Pi / 180

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c, true
}

// Meters returns the haversine distance rounded to whole meters. ok follows
// the same contract as Kilometers; non-finite results also report false.
func Meters(a, b orb.Point) (int, bool) {
	km, ok := Kilometers(a, b)
	if !ok {
		return 0, false
	}
	m := math.Round(km * 1000)
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return int(m), true
}
