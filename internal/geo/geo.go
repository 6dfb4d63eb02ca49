// Package geo provides great-circle distance calculations for
// telemetry aggregation.
package geo

import (
	"github.com/jftuga/geodist"
)

// kmToNM converts kilometers to nautical miles.
const kmToNM = 0.539957

// Coord is a latitude/longitude pair in decimal degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// DistanceNM returns the haversine great-circle distance between two
// coordinates in nautical miles. It is pure and never fails for finite
// input; callers are responsible for sane coordinate ranges.
func DistanceNM(a, b Coord) float64 {
	_, km := geodist.HaversineDistance(
		geodist.Coord{Lat: a.Lat, Lon: a.Lon},
		geodist.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	return km * kmToNM
}
