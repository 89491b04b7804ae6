// Package selection turns map clicks, search submissions and autocomplete
// commits into viewport and popup changes for one map session.
package selection

import (
	"mapview_backend/internal/places"
	"mapview_backend/internal/viewport"
)

// Click is a click on the map surface: either ClickOnPlace or
// ClickOnEmptySpace.
type Click interface {
	isClick()
}

// ClickOnPlace is a click that landed on a point of interest.
type ClickOnPlace struct {
	PlaceID places.PlaceID
}

// ClickOnEmptySpace is a click with no point of interest under it.
type ClickOnEmptySpace struct{}

func (ClickOnPlace) isClick()      {}
func (ClickOnEmptySpace) isClick() {}

// NewClick classifies a click by whether it carries a place identifier.
func NewClick(id places.PlaceID) Click {
	if id.IsZero() {
		return ClickOnEmptySpace{}
	}
	return ClickOnPlace{PlaceID: id}
}

// AutocompletePlace is the place record yielded by an autocomplete commit.
// Both ID and Position are optional.
type AutocompletePlace struct {
	PlaceID  places.PlaceID   `json:"placeId"`
	Name     string           `json:"name"`
	Position *places.Position `json:"position"`
}

// Outcome tells the caller what a selection did synchronously.
type Outcome string

const (
	// OutcomeAccepted means a resolution was started.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeIgnored means nothing changed.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeClosed means an open popup was closed.
	OutcomeClosed Outcome = "closed"
)

// Result is returned by every selection entry point.
type Result struct {
	Outcome Outcome `json:"status"`
	Seq     uint64  `json:"seq,omitempty"`
	// PreventDefault asks the map widget to suppress its own info window.
	PreventDefault bool            `json:"preventDefault,omitempty"`
	Viewport       *viewport.State `json:"viewport,omitempty"`
}
