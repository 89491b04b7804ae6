// Package popup builds popup content for resolved places and owns the single
// open popup of a map session.
package popup

import (
	"strconv"

	"mapview_backend/internal/places"
	"mapview_backend/platform/apperr"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fixed target size of the popup photo.
const (
	PhotoWidth  = 300
	PhotoHeight = 200
)

const (
	hoursOpen   = "Open now"
	hoursClosed = "Closed now"
)

// PhotoLinker turns a provider photo reference into a URL the browser can load.
type PhotoLinker func(reference string, width, height int) string

// Rating is the star block of a popup.
type Rating struct {
	Value float64 `json:"value"`
	Count *int    `json:"count,omitempty"`
	Stars Stars   `json:"stars"`
	Label string  `json:"label"`
}

// Hours is the opening-hours block. Lines keep the provider's order.
type Hours struct {
	OpenNow bool     `json:"openNow"`
	Status  string   `json:"status"`
	Lines   []string `json:"lines,omitempty"`
}

// Image is the single popup photo.
type Image struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Attribution string `json:"attribution,omitempty"`
}

// Content describes a popup. Text fields hold provider text verbatim; Render
// escapes them.
type Content struct {
	PlaceID  places.PlaceID  `json:"placeId,omitempty"`
	Name     string          `json:"name"`
	Address  string          `json:"address,omitempty"`
	Position places.Position `json:"position"`
	Rating   *Rating         `json:"rating,omitempty"`
	Hours    *Hours          `json:"hours,omitempty"`
	Photo    *Image          `json:"photo,omitempty"`
	MapLink  string          `json:"mapLink"`
}

// Builder converts place details into popup content.
type Builder struct {
	photoURL PhotoLinker
	printer  *message.Printer
}

// NewBuilder creates a builder. A nil linker drops photos from the content.
func NewBuilder(photoURL PhotoLinker) *Builder {
	return &Builder{
		photoURL: photoURL,
		printer:  message.NewPrinter(language.English),
	}
}

// Build describes details as popup content. Details without a position cannot
// anchor a popup and are rejected.
func (b *Builder) Build(details places.PlaceDetails) (Content, error) {
	if details.Position == nil {
		return Content{}, apperr.Validation("place has no position").WithOp("popup.Build")
	}

	content := Content{
		PlaceID:  details.ID,
		Name:     details.Name,
		Address:  details.FormattedAddress,
		Position: *details.Position,
		MapLink:  MapLink(*details.Position, details.ID),
	}

	if details.Rating != nil {
		content.Rating = b.rating(*details.Rating, details.UserRatingsTotal)
	}

	if details.OpeningHours != nil {
		status := hoursClosed
		if details.OpeningHours.OpenNow {
			status = hoursOpen
		}
		content.Hours = &Hours{
			OpenNow: details.OpeningHours.OpenNow,
			Status:  status,
			Lines:   details.OpeningHours.WeekdayText,
		}
	}

	if len(details.Photos) > 0 && b.photoURL != nil {
		first := details.Photos[0]
		content.Photo = &Image{
			URL:         b.photoURL(first.Reference, PhotoWidth, PhotoHeight),
			Width:       PhotoWidth,
			Height:      PhotoHeight,
			Attribution: first.Attribution,
		}
	}

	return content, nil
}

func (b *Builder) rating(value float64, count *int) *Rating {
	label := strconv.FormatFloat(value, 'f', -1, 64)
	if count != nil {
		noun := "reviews"
		if *count == 1 {
			noun = "review"
		}
		label += " (" + b.printer.Sprintf("%d", *count) + " " + noun + ")"
	}
	return &Rating{
		Value: value,
		Count: count,
		Stars: StarsFor(value),
		Label: label,
	}
}
