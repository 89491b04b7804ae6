package places

import (
	"context"
	"errors"
	"testing"

	"mapview_backend/platform/apperr"
)

type fakeProvider struct {
	details     *PlaceDetails
	detailsErr  error
	candidates  []Candidate
	findErr     error
	predictions []Prediction
	suggestErr  error

	detailCalls  int
	findCalls    int
	suggestCalls int
	lastFields   []string
}

func (f *fakeProvider) Details(_ context.Context, _ PlaceID, fields []string) (*PlaceDetails, error) {
	f.detailCalls++
	f.lastFields = fields
	return f.details, f.detailsErr
}

func (f *fakeProvider) FindPlaceFromText(_ context.Context, _ string, fields []string) ([]Candidate, error) {
	f.findCalls++
	f.lastFields = fields
	return f.candidates, f.findErr
}

func (f *fakeProvider) Autocomplete(_ context.Context, _ AutocompleteRequest) ([]Prediction, error) {
	f.suggestCalls++
	return f.predictions, f.suggestErr
}

func (f *fakeProvider) Photo(_ context.Context, _ string, _, _ int) (*PhotoStream, error) {
	return nil, errors.New("not implemented")
}

func TestResolveReturnsDetailsWithFixedFieldSet(t *testing.T) {
	provider := &fakeProvider{details: &PlaceDetails{Name: "Cafe Sol", Position: &Position{Lat: 1, Lng: 2}}}
	resolver := NewResolver(provider)

	details, err := resolver.Resolve(context.Background(), "abc")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if details.ID != "abc" {
		t.Fatalf("expected id to be filled in, got %q", details.ID)
	}
	if provider.detailCalls != 1 {
		t.Fatalf("expected exactly one provider call, got %d", provider.detailCalls)
	}
	if len(provider.lastFields) != len(DetailFields) {
		t.Fatalf("expected %d fields, got %d", len(DetailFields), len(provider.lastFields))
	}
}

func TestResolveWithoutGeometryIsNotFound(t *testing.T) {
	resolver := NewResolver(&fakeProvider{details: &PlaceDetails{Name: "Nowhere"}})

	_, err := resolver.Resolve(context.Background(), "abc")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveClassifiesProviderErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperr.Kind
	}{
		{name: "no results", err: ErrNoResults, kind: apperr.KindNotFound},
		{name: "status", err: &StatusError{Op: "details", Status: "REQUEST_DENIED"}, kind: apperr.KindUpstream},
		{name: "deadline", err: context.DeadlineExceeded, kind: apperr.KindUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := NewResolver(&fakeProvider{detailsErr: tc.err})
			_, err := resolver.Resolve(context.Background(), "abc")
			if apperr.GetKind(err) != tc.kind {
				t.Fatalf("expected kind %v, got %v (%v)", tc.kind, apperr.GetKind(err), err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected cause to be preserved")
			}
		})
	}
}

func TestResolveRejectsEmptyID(t *testing.T) {
	provider := &fakeProvider{}
	_, err := NewResolver(provider).Resolve(context.Background(), "  ")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if provider.detailCalls != 0 {
		t.Fatalf("expected no provider call")
	}
}

func TestFindFirstUsesOnlyFirstCandidate(t *testing.T) {
	provider := &fakeProvider{candidates: []Candidate{
		{ID: "first", Position: &Position{Lat: 1, Lng: 1}},
		{ID: "second", Position: &Position{Lat: 2, Lng: 2}},
	}}

	got, err := NewResolver(provider).FindFirst(context.Background(), "cafe")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != "first" {
		t.Fatalf("expected first candidate, got %q", got.ID)
	}
}

func TestFindFirstWithoutGeometryIsNotFound(t *testing.T) {
	provider := &fakeProvider{candidates: []Candidate{
		{ID: "first"},
		{ID: "second", Position: &Position{Lat: 2, Lng: 2}},
	}}

	_, err := NewResolver(provider).FindFirst(context.Background(), "cafe")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindFirstEmptyIsNotFound(t *testing.T) {
	_, err := NewResolver(&fakeProvider{}).FindFirst(context.Background(), "ZZZ_no_such_place_123")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSuggestBlankInputSkipsProvider(t *testing.T) {
	provider := &fakeProvider{}
	predictions, err := NewResolver(provider).Suggest(context.Background(), AutocompleteRequest{Input: "   "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(predictions) != 0 || provider.suggestCalls != 0 {
		t.Fatalf("expected no predictions and no provider call")
	}
}

func TestSuggestZeroResultsIsEmpty(t *testing.T) {
	predictions, err := NewResolver(&fakeProvider{suggestErr: ErrNoResults}).
		Suggest(context.Background(), AutocompleteRequest{Input: "zzz"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if predictions == nil || len(predictions) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", predictions)
	}
}
