package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Upstream("x", nil), http.StatusBadGateway},
		{Internal("x"), http.StatusInternalServerError},
		{Gone("x"), http.StatusGone},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Fatalf("kind %d: expected %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestIsFollowsWrappedChain(t *testing.T) {
	base := NotFound("place not found").WithOp("places.Resolve")
	wrapped := fmt.Errorf("selection: %w", base)

	if !Is(wrapped, KindNotFound) {
		t.Fatalf("expected wrapped error to report KindNotFound")
	}
	if Is(errors.New("plain"), KindNotFound) {
		t.Fatalf("plain error must not report a kind")
	}
}

func TestErrorMessageIncludesOpAndCause(t *testing.T) {
	err := Upstream("provider failed", errors.New("OVER_QUERY_LIMIT")).WithOp("places.Details")
	want := "places.Details: provider failed: OVER_QUERY_LIMIT"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
