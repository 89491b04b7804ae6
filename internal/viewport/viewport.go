// Package viewport tracks the center and zoom of a map session.
package viewport

import (
	"sync"

	"mapview_backend/internal/places"
)

// DefaultFocusZoom is the zoom applied when focusing on a selected place.
const DefaultFocusZoom = 17

// State is the map's current center and zoom.
type State struct {
	Center places.Position `json:"center"`
	Zoom   int             `json:"zoom"`
}

// Sink observes viewport changes.
type Sink interface {
	ViewportChanged(s State)
}

// Controller owns the viewport of one map session.
type Controller struct {
	mu        sync.Mutex
	state     State
	focusZoom int
	sink      Sink
}

// NewController starts at initial. A non-positive focusZoom falls back to
// DefaultFocusZoom. sink may be nil.
func NewController(initial State, focusZoom int, sink Sink) *Controller {
	if focusZoom <= 0 {
		focusZoom = DefaultFocusZoom
	}
	return &Controller{state: initial, focusZoom: focusZoom, sink: sink}
}

// Focus centers the map on pos at the focus zoom.
func (c *Controller) Focus(pos places.Position) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = State{Center: pos, Zoom: c.focusZoom}
	if c.sink != nil {
		c.sink.ViewportChanged(c.state)
	}
	return c.state
}

// State returns the current viewport.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
