package maps

import (
	"time"

	"mapview_backend/internal/maps/profile"
	"mapview_backend/internal/places"
	"mapview_backend/internal/selection"
	"mapview_backend/internal/viewport"
)

// CreateSessionRequest opens a session for one map instance.
type CreateSessionRequest struct {
	Profile string `json:"profile" binding:"omitempty,max=64"`
}

// CreateSessionResponse carries the session token the browser presents on
// every later call.
type CreateSessionResponse struct {
	SessionID string          `json:"sessionId"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Profile   profile.Profile `json:"profile"`
	Viewport  viewport.State  `json:"viewport"`
}

// ClickRequest is a click on the map surface. An empty PlaceID is a click on
// empty space.
type ClickRequest struct {
	PlaceID string `json:"placeId" binding:"max=512"`
}

// SearchBoxRequest mirrors the search input text.
type SearchBoxRequest struct {
	Text string `json:"text" binding:"max=512"`
}

// SearchRequest submits the search box. Text, when present, replaces the box
// text first.
type SearchRequest struct {
	Text *string `json:"text" binding:"omitempty,max=512"`
}

// AutocompleteQuery asks for suggestions.
type AutocompleteQuery struct {
	Input string `form:"input" binding:"max=256"`
}

// PositionRequest is a coordinate sent by the browser.
type PositionRequest struct {
	Lat float64 `json:"lat" binding:"latitude"`
	Lng float64 `json:"lng" binding:"longitude"`
}

// AutocompleteCommitRequest is the place chosen in the autocomplete widget.
// PlaceID and Position are optional.
type AutocompleteCommitRequest struct {
	PlaceID  string           `json:"placeId" binding:"max=512"`
	Name     string           `json:"name" binding:"max=512"`
	Position *PositionRequest `json:"position"`
}

func (r AutocompleteCommitRequest) toPlace() selection.AutocompletePlace {
	place := selection.AutocompletePlace{PlaceID: places.PlaceID(r.PlaceID), Name: r.Name}
	if r.Position != nil {
		place.Position = &places.Position{Lat: r.Position.Lat, Lng: r.Position.Lng}
	}
	return place
}

// PopupQuery selects the popup representation.
type PopupQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=json html"`
}

// QRQuery sets the QR code edge length in pixels.
type QRQuery struct {
	Size int `form:"size" binding:"omitempty,min=64,max=1024"`
}

// PhotoQuery bounds the proxied photo.
type PhotoQuery struct {
	Width  int `form:"w" binding:"omitempty,min=1,max=1600"`
	Height int `form:"h" binding:"omitempty,min=1,max=1600"`
}

// PredictionsResponse lists autocomplete suggestions.
type PredictionsResponse struct {
	Predictions []places.Prediction `json:"predictions"`
}

// wsInbound is a selection sent over the WebSocket.
type wsInbound struct {
	Type     string           `json:"type"` // "click", "search_box", "search", "autocomplete_commit"
	PlaceID  string           `json:"placeId,omitempty"`
	Name     string           `json:"name,omitempty"`
	Text     *string          `json:"text,omitempty"`
	Position *places.Position `json:"position,omitempty"`
}

// wsOutbound is a reply or pushed event on the WebSocket.
type wsOutbound struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}
