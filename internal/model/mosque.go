package model

import "time"

// Mosque is a directory entry for a mosque. IsFavorite and LastAccessed are
// the only fields mutated after creation, and only through the favorites
// operations in the store.
type Mosque struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Address      *string    `json:"address,omitempty" db:"address"`
	City         *string    `json:"city,omitempty" db:"city"`
	Country      *string    `json:"country,omitempty" db:"country"`
	Latitude     *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64   `json:"longitude,omitempty" db:"longitude"`
	IsFavorite   bool       `json:"is_favorite" db:"is_favorite"`
	LastAccessed *time.Time `json:"last_accessed,omitempty" db:"last_accessed"`
}

func NewMosque(id, name string) Mosque {
	return Mosque{ID: id, Name: name}
}

// Location returns the mosque's coordinates when both are known.
func (m Mosque) Location() (GeoLocation, bool) {
	if m.Latitude == nil || m.Longitude == nil {
		return GeoLocation{}, false
	}
	return GeoLocation{Latitude: *m.Latitude, Longitude: *m.Longitude}, true
}

// MosqueSearchResult is the merged external + favorites search response.
type MosqueSearchResult struct {
	Mosques []Mosque `json:"mosques"`
	Total   int      `json:"total"`
}
