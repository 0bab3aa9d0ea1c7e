package osm

import (
	"math"

	"github.com/fwojciec/carecost"
)

// earthRadiusMiles is the mean Earth radius.
const earthRadiusMiles = 3958.8

// metersPerMile converts search radii for the Overpass around filter.
const metersPerMile = 1609.344

// DistanceMiles returns the great-circle distance between a and b.
func DistanceMiles(a, b carecost.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}
