// Package places resolves place identifiers into place details through an
// external place-data provider.
package places

import "strings"

// PlaceID is an opaque token naming a place in the provider's catalog.
type PlaceID string

// String returns the raw identifier.
func (id PlaceID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id PlaceID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// Position is a geographic coordinate.
type Position struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Photo is a reference to a provider-hosted photo.
type Photo struct {
	Reference   string `json:"reference"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Attribution string `json:"attribution,omitempty"`
}

// OpeningHours summarizes whether a place is open and its weekly schedule.
// WeekdayText keeps the provider's order.
type OpeningHours struct {
	OpenNow     bool     `json:"openNow"`
	WeekdayText []string `json:"weekdayText,omitempty"`
}

// PlaceDetails is a resolved place. Only Position is required for the
// details to be shown on the map; every other field is optional.
type PlaceDetails struct {
	ID               PlaceID       `json:"placeId,omitempty"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formattedAddress,omitempty"`
	Position         *Position     `json:"position,omitempty"`
	Photos           []Photo       `json:"photos,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	UserRatingsTotal *int          `json:"userRatingsTotal,omitempty"`
	OpeningHours     *OpeningHours `json:"openingHours,omitempty"`
}

// Renderable reports whether the details carry a position to anchor a popup.
func (d PlaceDetails) Renderable() bool {
	return d.Position != nil
}

// Candidate is one match of a find-place-from-text query.
type Candidate struct {
	ID       PlaceID   `json:"placeId"`
	Name     string    `json:"name"`
	Position *Position `json:"position,omitempty"`
}

// Prediction is one autocomplete suggestion.
type Prediction struct {
	ID            PlaceID `json:"placeId"`
	Description   string  `json:"description"`
	MainText      string  `json:"mainText,omitempty"`
	SecondaryText string  `json:"secondaryText,omitempty"`
}

// Bounds is a south-west / north-east rectangle.
type Bounds struct {
	SouthWest Position `json:"southWest" yaml:"southWest"`
	NorthEast Position `json:"northEast" yaml:"northEast"`
}

// Field names understood by the provider.
const (
	FieldName             = "name"
	FieldFormattedAddress = "formatted_address"
	FieldGeometry         = "geometry"
	FieldPlaceID          = "place_id"
	FieldPhotos           = "photos"
	FieldRating           = "rating"
	FieldUserRatingsTotal = "user_ratings_total"
	FieldOpeningHours     = "opening_hours"
)

// DetailFields is the fixed field set requested for every detail lookup.
var DetailFields = []string{
	FieldName,
	FieldFormattedAddress,
	FieldGeometry,
	FieldPlaceID,
	FieldPhotos,
	FieldRating,
	FieldUserRatingsTotal,
	FieldOpeningHours,
}

// FindFields is the field set requested for find-place-from-text lookups.
var FindFields = []string{
	FieldPlaceID,
	FieldGeometry,
	FieldName,
}
