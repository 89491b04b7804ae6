package places

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNoResults is returned by providers when a lookup matched nothing.
var ErrNoResults = errors.New("no results")

// StatusError is a non-success status reported by the provider.
type StatusError struct {
	Op      string
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: provider status %s: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: provider status %s", e.Op, e.Status)
}

// AutocompleteRequest carries the typed input and the optional region limits.
type AutocompleteRequest struct {
	Input        string
	SessionToken string
	Restriction  *Bounds
	Countries    []string
	Language     string
}

// PhotoStream is a provider photo body. Callers must close Body.
type PhotoStream struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Provider is the external place-data service.
type Provider interface {
	// Details looks up one place with the requested fields.
	Details(ctx context.Context, id PlaceID, fields []string) (*PlaceDetails, error)
	// FindPlaceFromText returns candidate matches in provider order.
	FindPlaceFromText(ctx context.Context, query string, fields []string) ([]Candidate, error)
	// Autocomplete returns suggestions for partially typed input.
	Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Prediction, error)
	// Photo fetches a photo scaled to fit the given bounds.
	Photo(ctx context.Context, reference string, maxWidth, maxHeight int) (*PhotoStream, error)
}
