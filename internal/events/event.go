// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"encoding/json"

	"mapview_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	Decoder     = events.Decoder
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// SessionEvent is an event addressed to one map session.
type SessionEvent interface {
	Event
	Session() string
}

// Event names.
const (
	NameSessionCreated   = "session.created"
	NameSessionClosed    = "session.closed"
	NamePopupOpened      = "map.popup.opened"
	NamePopupClosed      = "map.popup.closed"
	NameViewportChanged  = "map.viewport.changed"
	NameSearchBoxCleared = "map.search_box.cleared"
)

// =============================================================================
// Session Domain Events
// =============================================================================

// SessionCreated is published when a browser map instance opens a session.
type SessionCreated struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	Profile   string `json:"profile"`
}

func (e SessionCreated) EventName() string { return NameSessionCreated }
func (e SessionCreated) Session() string   { return e.SessionID }

// SessionClosed is published when a session is deleted or expires.
type SessionClosed struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason"`
}

func (e SessionClosed) EventName() string { return NameSessionClosed }
func (e SessionClosed) Session() string   { return e.SessionID }

// =============================================================================
// Map Domain Events
// =============================================================================

// PopupOpened is published after a popup opened. Content is the structured
// popup description and HTML its escaped rendering.
type PopupOpened struct {
	BaseEvent
	SessionID string          `json:"sessionId"`
	PopupID   string          `json:"popupId"`
	PlaceID   string          `json:"placeId,omitempty"`
	Lat       float64         `json:"lat"`
	Lng       float64         `json:"lng"`
	Content   json.RawMessage `json:"content"`
	HTML      string          `json:"html"`
}

func (e PopupOpened) EventName() string { return NamePopupOpened }
func (e PopupOpened) Session() string   { return e.SessionID }

// PopupClosed is published after the open popup closed.
type PopupClosed struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	PopupID   string `json:"popupId"`
}

func (e PopupClosed) EventName() string { return NamePopupClosed }
func (e PopupClosed) Session() string   { return e.SessionID }

// ViewportChanged is published when a selection recenters the map.
type ViewportChanged struct {
	BaseEvent
	SessionID string  `json:"sessionId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Zoom      int     `json:"zoom"`
}

func (e ViewportChanged) EventName() string { return NameViewportChanged }
func (e ViewportChanged) Session() string   { return e.SessionID }

// SearchBoxCleared is published when a selection empties the search box.
type SearchBoxCleared struct {
	BaseEvent
	SessionID string `json:"sessionId"`
}

func (e SearchBoxCleared) EventName() string { return NameSearchBoxCleared }
func (e SearchBoxCleared) Session() string   { return e.SessionID }

// SessionEventNames lists every event the stream hub forwards to clients.
var SessionEventNames = []string{
	NameSessionClosed,
	NamePopupOpened,
	NamePopupClosed,
	NameViewportChanged,
	NameSearchBoxCleared,
}

// DecoderRegistry is implemented by buses that rebuild events from the wire.
type DecoderRegistry interface {
	RegisterDecoder(eventName string, d Decoder)
}

// RegisterDecoders teaches a bus how to decode every map session event.
func RegisterDecoders(r DecoderRegistry) {
	r.RegisterDecoder(NameSessionCreated, decodeAs[SessionCreated])
	r.RegisterDecoder(NameSessionClosed, decodeAs[SessionClosed])
	r.RegisterDecoder(NamePopupOpened, decodeAs[PopupOpened])
	r.RegisterDecoder(NamePopupClosed, decodeAs[PopupClosed])
	r.RegisterDecoder(NameViewportChanged, decodeAs[ViewportChanged])
	r.RegisterDecoder(NameSearchBoxCleared, decodeAs[SearchBoxCleared])
}

func decodeAs[T Event](payload []byte) (Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, err
	}
	return e, nil
}
