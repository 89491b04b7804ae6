package places

import (
	"context"
	"errors"
	"strings"

	"mapview_backend/platform/apperr"
)

// Resolver turns identifiers and free text into places. Every call goes to
// the provider exactly once: there is no retry, cache or de-duplication.
type Resolver struct {
	provider Provider
}

// NewResolver creates a resolver backed by provider.
func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve fetches the full detail field set for id.
//
// The result is NotFound when the provider has no such place or the place
// has no geometry, and Upstream for any other provider failure.
func (r *Resolver) Resolve(ctx context.Context, id PlaceID) (PlaceDetails, error) {
	const op = "places.Resolve"

	if id.IsZero() {
		return PlaceDetails{}, apperr.Validation("place id is required").WithOp(op)
	}

	details, err := r.provider.Details(ctx, id, DetailFields)
	if err != nil {
		return PlaceDetails{}, classify(op, err)
	}
	if details == nil {
		return PlaceDetails{}, apperr.NotFound("place not found").WithOp(op)
	}
	if !details.Renderable() {
		return PlaceDetails{}, apperr.NotFound("place has no geometry").WithOp(op)
	}
	if details.ID.IsZero() {
		details.ID = id
	}
	return *details, nil
}

// FindFirst runs a find-place-from-text query and returns the first match.
// A first match without an identifier or geometry counts as no match.
func (r *Resolver) FindFirst(ctx context.Context, query string) (Candidate, error) {
	const op = "places.FindFirst"

	query = strings.TrimSpace(query)
	if query == "" {
		return Candidate{}, apperr.Validation("query is required").WithOp(op)
	}

	candidates, err := r.provider.FindPlaceFromText(ctx, query, FindFields)
	if err != nil {
		return Candidate{}, classify(op, err)
	}
	if len(candidates) == 0 {
		return Candidate{}, apperr.NotFound("no place matches the query").WithOp(op)
	}

	first := candidates[0]
	if first.ID.IsZero() || first.Position == nil {
		return Candidate{}, apperr.NotFound("first match has no identifier or geometry").WithOp(op)
	}
	return first, nil
}

// Suggest returns autocomplete predictions. Blank input yields no predictions
// without calling the provider.
func (r *Resolver) Suggest(ctx context.Context, req AutocompleteRequest) ([]Prediction, error) {
	const op = "places.Suggest"

	req.Input = strings.TrimSpace(req.Input)
	if req.Input == "" {
		return []Prediction{}, nil
	}

	predictions, err := r.provider.Autocomplete(ctx, req)
	if errors.Is(err, ErrNoResults) {
		return []Prediction{}, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return predictions, nil
}

// Photo fetches a provider photo.
func (r *Resolver) Photo(ctx context.Context, reference string, maxWidth, maxHeight int) (*PhotoStream, error) {
	const op = "places.Photo"

	if strings.TrimSpace(reference) == "" {
		return nil, apperr.Validation("photo reference is required").WithOp(op)
	}
	stream, err := r.provider.Photo(ctx, reference, maxWidth, maxHeight)
	if err != nil {
		return nil, classify(op, err)
	}
	return stream, nil
}

func classify(op string, err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ErrNoResults):
		return apperr.Wrap(apperr.KindNotFound, "place not found", err).WithOp(op)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Upstream("provider call abandoned", err).WithOp(op)
	default:
		return apperr.Upstream("place provider failed", err).WithOp(op)
	}
}
