package geocode

import (
	"fmt"
	"strconv"

	"github.com/devskill-org/planetary-hours/astro"
)

// Place is one Nominatim search result. Nominatim encodes coordinates as
// decimal strings.
type Place struct {
	PlaceID     int64   `json:"place_id"`
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Class       string  `json:"class,omitempty"`
	Type        string  `json:"type,omitempty"`
	Importance  float64 `json:"importance,omitempty"`
}

// Coordinate parses Lat and Lon.
func (p Place) Coordinate() (astro.Coordinate, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return astro.Coordinate{}, &ValidationError{Field: "lat", Message: fmt.Sprintf("invalid value %q", p.Lat)}
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return astro.Coordinate{}, &ValidationError{Field: "lon", Message: fmt.Sprintf("invalid value %q", p.Lon)}
	}
	c := astro.Coordinate{Latitude: lat, Longitude: lon}
	if err := c.Validate(); err != nil {
		return astro.Coordinate{}, err
	}
	return c, nil
}

// SearchParams are the query parameters for Search.
type SearchParams struct {
	Query        string
	Limit        int    // 0 means the server default
	CountryCodes string // comma separated ISO 3166-1 alpha-2 codes, optional
	Language     string // Accept-Language value, optional
}
