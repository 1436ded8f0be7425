// Package geospatial holds spherical-earth helpers for longitude/latitude
// coordinates.
package geospatial

import (
	"math"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371000.0

// Haversine returns the great-circle distance in meters between two
// longitude/latitude points given in degrees.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// PathLength sums the great-circle distance along a path of internal
// geographic coordinates (X longitude, Y latitude).
func PathLength(path []domain.Coordinate) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += Haversine(path[i-1].X, path[i-1].Y, path[i].X, path[i].Y)
	}
	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
