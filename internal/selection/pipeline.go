package selection

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"mapview_backend/internal/places"
	"mapview_backend/internal/popup"
	"mapview_backend/internal/viewport"
	"mapview_backend/platform/logger"
	"mapview_backend/platform/sanitize"
)

// Selection sources, used in logs.
const (
	SourceClick        = "click"
	SourceSearch       = "search"
	SourceAutocomplete = "autocomplete"
)

// Resolver looks places up through the provider.
type Resolver interface {
	Resolve(ctx context.Context, id places.PlaceID) (places.PlaceDetails, error)
	FindFirst(ctx context.Context, query string) (places.Candidate, error)
}

// ContentBuilder describes resolved places as popup content.
type ContentBuilder interface {
	Build(details places.PlaceDetails) (popup.Content, error)
}

// Popups is the popup owner of the session.
type Popups interface {
	ShowSelection(seq uint64, content popup.Content, at places.Position) (popup.Popup, bool)
	CloseSelection(seq uint64) bool
	Current() (popup.Popup, bool)
}

// Viewport is the viewport owner of the session.
type Viewport interface {
	Focus(pos places.Position) viewport.State
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Resolver Resolver
	Builder  ContentBuilder
	Popups   Popups
	Viewport Viewport
	Box      *SearchBox
	Log      *logger.Logger
}

// Pipeline routes the three selection sources of one session to the viewport
// and the popup. Resolutions run in the background, bound to ctx, and are
// never retried. Failures leave the popup untouched.
type Pipeline struct {
	ctx  context.Context
	deps Deps
	seq  atomic.Uint64
	wg   sync.WaitGroup
}

// NewPipeline creates a pipeline whose background work stops when ctx ends.
func NewPipeline(ctx context.Context, deps Deps) *Pipeline {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	return &Pipeline{ctx: ctx, deps: deps}
}

// HandleClick processes a click on the map surface. A click on a place
// starts a resolution without moving the viewport; a click on empty space
// closes the popup and clears the selection.
func (p *Pipeline) HandleClick(click Click) Result {
	seq := p.seq.Add(1)

	switch c := click.(type) {
	case ClickOnPlace:
		p.resolveAndShow(seq, c.PlaceID, SourceClick)
		return Result{Outcome: OutcomeAccepted, Seq: seq, PreventDefault: true}
	default:
		closed := p.deps.Popups.CloseSelection(seq)
		if !closed {
			return Result{Outcome: OutcomeIgnored, Seq: seq}
		}
		return Result{Outcome: OutcomeClosed, Seq: seq}
	}
}

// SubmitSearch looks up the current search box text. Blank text is ignored.
// When the lookup finds a place the box is cleared, the viewport focuses on
// it and its popup is resolved; otherwise nothing changes.
func (p *Pipeline) SubmitSearch() Result {
	query := sanitize.Query(p.deps.Box.Text())
	if strings.TrimSpace(query) == "" {
		p.deps.Log.SelectionDropped(SourceSearch, "empty query")
		return Result{Outcome: OutcomeIgnored}
	}

	seq := p.seq.Add(1)
	p.spawn(func(ctx context.Context) {
		candidate, err := p.deps.Resolver.FindFirst(ctx, query)
		if err != nil {
			p.deps.Log.SelectionDropped(SourceSearch, err.Error())
			return
		}
		if candidate.ID.IsZero() || candidate.Position == nil {
			p.deps.Log.SelectionDropped(SourceSearch, "match has no identifier or geometry")
			return
		}

		p.deps.Box.Clear()
		p.deps.Viewport.Focus(*candidate.Position)
		p.show(ctx, seq, candidate.ID, SourceSearch)
	})
	return Result{Outcome: OutcomeAccepted, Seq: seq}
}

// CommitAutocomplete processes a chosen suggestion. A suggestion without an
// identifier or a position is ignored and the box is left alone.
func (p *Pipeline) CommitAutocomplete(place AutocompletePlace) Result {
	if place.PlaceID.IsZero() || place.Position == nil {
		p.deps.Log.SelectionDropped(SourceAutocomplete, "suggestion has no identifier or geometry")
		return Result{Outcome: OutcomeIgnored}
	}

	seq := p.seq.Add(1)
	p.deps.Box.Clear()
	state := p.deps.Viewport.Focus(*place.Position)
	p.resolveAndShow(seq, place.PlaceID, SourceAutocomplete)
	return Result{Outcome: OutcomeAccepted, Seq: seq, Viewport: &state}
}

// Selected returns the place of the open popup, or the zero ID when no
// popup is open. It is read from the popup owner so the two never disagree.
func (p *Pipeline) Selected() places.PlaceID {
	current, ok := p.deps.Popups.Current()
	if !ok {
		return ""
	}
	return current.Content.PlaceID
}

// Wait blocks until all background resolutions have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) resolveAndShow(seq uint64, id places.PlaceID, source string) {
	p.spawn(func(ctx context.Context) {
		p.show(ctx, seq, id, source)
	})
}

func (p *Pipeline) show(ctx context.Context, seq uint64, id places.PlaceID, source string) {
	details, err := p.deps.Resolver.Resolve(ctx, id)
	if err != nil {
		p.deps.Log.SelectionDropped(source, err.Error())
		return
	}

	content, err := p.deps.Builder.Build(details)
	if err != nil {
		p.deps.Log.SelectionDropped(source, err.Error())
		return
	}

	if _, ok := p.deps.Popups.ShowSelection(seq, content, *details.Position); !ok {
		p.deps.Log.SelectionDropped(source, "superseded by a newer selection")
	}
}

func (p *Pipeline) spawn(fn func(ctx context.Context)) {
	if p.ctx.Err() != nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn(p.ctx)
	}()
}
