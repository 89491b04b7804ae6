// Package session manages map sessions: one per map instance in a browser
// page, each owning its popup, viewport, search box and selection pipeline.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"mapview_backend/internal/maps/profile"
	"mapview_backend/internal/places"
	"mapview_backend/internal/popup"
	"mapview_backend/internal/selection"
	"mapview_backend/internal/viewport"
)

// Session is one map instance.
type Session struct {
	ID        string
	Profile   profile.Profile
	CreatedAt time.Time

	Popups   *popup.Manager
	Viewport *viewport.Controller
	Box      *selection.SearchBox
	Pipeline *selection.Pipeline

	// AutocompleteToken groups the session's suggestion requests at the provider.
	AutocompleteToken string

	ctx      context.Context
	cancel   context.CancelFunc
	lastSeen atomic.Int64
}

// Snapshot is the observable state of a session.
type Snapshot struct {
	ID         string         `json:"id"`
	Profile    string         `json:"profile"`
	CreatedAt  time.Time      `json:"createdAt"`
	Viewport   viewport.State `json:"viewport"`
	Popup      *popup.Popup   `json:"popup,omitempty"`
	SearchText string         `json:"searchText"`
	Selected   places.PlaceID `json:"selected,omitempty"`
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:         s.ID,
		Profile:    s.Profile.Name,
		CreatedAt:  s.CreatedAt,
		Viewport:   s.Viewport.State(),
		SearchText: s.Box.Text(),
	}
	if p, ok := s.Popups.Current(); ok {
		snap.Popup = &p
		snap.Selected = p.Content.PlaceID
	}
	return snap
}

// Suggest builds an autocomplete request limited to the session's region.
func (s *Session) Suggest(input string) places.AutocompleteRequest {
	return s.Profile.Autocomplete(input, s.AutocompleteToken)
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) close() {
	s.cancel()
}
