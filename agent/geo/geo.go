package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean sphere radius used for great-circle distance.
const EarthRadiusMeters = 6371000.0

// Coordinate is a WGS-84 point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// Valid reports whether the coordinate lies inside the latitude/longitude domain.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lng - a.Lng)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Within reports whether a and b are strictly closer than threshold meters.
func Within(a, b Coordinate, thresholdMeters float64) bool {
	return Distance(a, b) < thresholdMeters
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
