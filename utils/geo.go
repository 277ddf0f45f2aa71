package utils

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula
const earthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance in meters between two
// coordinates using the haversine formula. The result is symmetric and zero
// for identical points. Out-of-range coordinates are not validated.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
