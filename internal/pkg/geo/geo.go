package geo

import "math"

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371000

// DefaultRadiusMeters is the geofence radius used when an organization has none configured.
const DefaultRadiusMeters = 100

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Verdict is the result of a geofence evaluation.
type Verdict struct {
	WithinRange bool    `json:"within_range"`
	Distance    float64 `json:"distance"`
	Radius      float64 `json:"radius"`
}

// DistanceMeters returns the great-circle distance between a and b in meters.
func DistanceMeters(a, b Point) float64 {
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180.0)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180.0)

	lat1Rad := a.Latitude * (math.Pi / 180.0)
	lat2Rad := b.Latitude * (math.Pi / 180.0)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// WithinFence reports whether p lies inside the circle of the given radius around center.
// The boundary is inclusive and there is no grace tolerance.
func WithinFence(center Point, radius float64, p Point) Verdict {
	distance := DistanceMeters(center, p)
	return Verdict{
		WithinRange: distance <= radius,
		Distance:    distance,
		Radius:      radius,
	}
}

// IsValidCoordinate checks latitude and longitude ranges.
func IsValidCoordinate(p Point) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}
