package viewport

import (
	"testing"

	"mapview_backend/internal/places"
)

type countingSink struct {
	states []State
}

func (s *countingSink) ViewportChanged(state State) {
	s.states = append(s.states, state)
}

func TestFocusSetsCenterAndFocusZoom(t *testing.T) {
	sink := &countingSink{}
	initial := State{Center: places.Position{Lat: 25.033, Lng: 121.5654}, Zoom: 14}
	c := NewController(initial, 0, sink)

	if c.State() != initial {
		t.Fatalf("expected initial state %+v, got %+v", initial, c.State())
	}

	target := places.Position{Lat: 25.03, Lng: 121.56}
	got := c.Focus(target)
	if got.Center != target || got.Zoom != DefaultFocusZoom {
		t.Fatalf("expected %v at zoom %d, got %+v", target, DefaultFocusZoom, got)
	}
	if c.State() != got {
		t.Fatalf("expected state to be stored")
	}
	if len(sink.states) != 1 || sink.states[0] != got {
		t.Fatalf("expected one notification, got %v", sink.states)
	}
}

func TestFocusUsesConfiguredZoom(t *testing.T) {
	c := NewController(State{Zoom: 10}, 15, nil)
	if got := c.Focus(places.Position{Lat: 1, Lng: 1}); got.Zoom != 15 {
		t.Fatalf("expected zoom 15, got %d", got.Zoom)
	}
}
