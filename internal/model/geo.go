package model

import "math"

const earthRadiusKm = 6371.0

// GeoLocation is an immutable latitude/longitude pair.
type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewGeoLocation(latitude, longitude float64) GeoLocation {
	return GeoLocation{Latitude: latitude, Longitude: longitude}
}

// DistanceTo returns the great-circle distance to other in kilometers.
func (g GeoLocation) DistanceTo(other GeoLocation) float64 {
	lat1 := g.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	deltaLat := (other.Latitude - g.Latitude) * math.Pi / 180
	deltaLon := (other.Longitude - g.Longitude) * math.Pi / 180

	a := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(deltaLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// SearchRadius is the radius used for nearby-mosque lookups.
type SearchRadius struct {
	Km float64 `json:"km"`
}

func DefaultSearchRadius() SearchRadius {
	return SearchRadius{Km: 10.0}
}
