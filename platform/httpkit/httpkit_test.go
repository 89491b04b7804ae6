package httpkit

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"mapview_backend/platform/apperr"
	"mapview_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(raw string) (string, error) {
	if id, ok := v[raw]; ok {
		return id, nil
	}
	return "", errors.New("unknown token")
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestSessionRequired(t *testing.T) {
	r := newEngine()
	r.GET("/p", SessionRequired(staticVerifier{"good": "s-1"}), func(c *gin.Context) {
		id, _ := SessionID(c)
		c.String(http.StatusOK, id)
	})

	cases := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"bearer", "Bearer good", "", http.StatusOK, "s-1"},
		{"query", "", "?token=good", http.StatusOK, "s-1"},
		{"invalid", "Bearer bad", "", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/p"+tc.query, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, w.Code)
		}
		if tc.body != "" && w.Body.String() != tc.body {
			t.Fatalf("%s: expected body %q, got %q", tc.name, tc.body, w.Body.String())
		}
	}
}

func TestRateLimitRejectsAfterBurst(t *testing.T) {
	r := newEngine()
	limiter := NewPerMinuteLimiter(1, 2, logger.Discard())
	r.GET("/x", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence: %v", codes)
	}
}

func TestHandleErrorMapsKinds(t *testing.T) {
	r := newEngine()
	r.GET("/nf", func(c *gin.Context) {
		HandleError(c, fmt.Errorf("wrap: %w", apperr.NotFound("no popup open")))
	})
	r.GET("/raw", func(c *gin.Context) {
		HandleError(c, errors.New("secret detail"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nf", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if got := w.Body.String(); got != `{"error":"internal error"}` {
		t.Fatalf("expected generic error body, got %s", got)
	}
}
