package places

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"mapview_backend/platform/logger"
)

type testPlacesConfig struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func (c testPlacesConfig) GetGoogleMapsAPIKey() string {
	if c.apiKey == "" {
		return "test-key"
	}
	return c.apiKey
}

func (c testPlacesConfig) GetPlacesBaseURL() string { return c.baseURL }

func (c testPlacesConfig) GetPlacesHTTPTimeout() time.Duration {
	if c.timeout == 0 {
		return 2 * time.Second
	}
	return c.timeout
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleClient(testPlacesConfig{baseURL: srv.URL + "/"}, logger.Discard())
}

func TestGoogleDetailsRequestsFieldsAndMapsResult(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"result": {
				"place_id": "abc",
				"name": "Cafe Sol",
				"formatted_address": "1 Main St",
				"geometry": {"location": {"lat": 25.03, "lng": 121.56}},
				"rating": 4.7,
				"user_ratings_total": 120,
				"photos": [{"photo_reference": "ref-1", "width": 800, "height": 600, "html_attributions": ["<a href=\"https://x\">Jane</a>"]}],
				"opening_hours": {"open_now": true, "weekday_text": ["Monday: 8AM-5PM"]}
			}
		}`)
	})

	details, err := client.Details(context.Background(), "abc", DetailFields)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPath != "/details/json" {
		t.Fatalf("expected /details/json, got %s", gotPath)
	}
	if gotQuery.Get("key") != "test-key" {
		t.Fatalf("expected api key to be sent")
	}
	if gotQuery.Get("fields") != "name,formatted_address,geometry,place_id,photos,rating,user_ratings_total,opening_hours" {
		t.Fatalf("unexpected fields %q", gotQuery.Get("fields"))
	}
	if details.Name != "Cafe Sol" || details.Position == nil || details.Position.Lat != 25.03 {
		t.Fatalf("unexpected details %+v", details)
	}
	if details.Rating == nil || *details.Rating != 4.7 {
		t.Fatalf("expected rating 4.7")
	}
	if details.UserRatingsTotal == nil || *details.UserRatingsTotal != 120 {
		t.Fatalf("expected 120 ratings")
	}
	if len(details.Photos) != 1 || details.Photos[0].Attribution != "Jane" {
		t.Fatalf("expected stripped attribution, got %+v", details.Photos)
	}
	if details.OpeningHours == nil || !details.OpeningHours.OpenNow {
		t.Fatalf("expected opening hours")
	}
}

func TestGoogleDetailsWithoutGeometryHasNilPosition(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"OK","result":{"place_id":"abc","name":"Nowhere"}}`)
	})

	details, err := client.Details(context.Background(), "abc", DetailFields)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if details.Position != nil {
		t.Fatalf("expected nil position, got %+v", details.Position)
	}
}

func TestGoogleStatusMapping(t *testing.T) {
	cases := []struct {
		status    string
		noResults bool
	}{
		{status: "ZERO_RESULTS", noResults: true},
		{status: "NOT_FOUND", noResults: true},
		{status: "REQUEST_DENIED"},
		{status: "OVER_QUERY_LIMIT"},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"status":"`+tc.status+`","error_message":"nope"}`)
			})

			_, err := client.Details(context.Background(), "abc", DetailFields)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.noResults {
				if !errors.Is(err, ErrNoResults) {
					t.Fatalf("expected ErrNoResults, got %v", err)
				}
				return
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) || statusErr.Status != tc.status {
				t.Fatalf("expected StatusError %s, got %v", tc.status, err)
			}
		})
	}
}

func TestGoogleHTTPFailureIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := client.FindPlaceFromText(context.Background(), "cafe", FindFields); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestGoogleFindPlaceFromText(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, `{"status":"OK","candidates":[
			{"place_id":"first","name":"A","geometry":{"location":{"lat":1,"lng":2}}},
			{"place_id":"second","name":"B"}
		]}`)
	})

	candidates, err := client.FindPlaceFromText(context.Background(), "cafe sol", FindFields)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotQuery.Get("inputtype") != "textquery" || gotQuery.Get("input") != "cafe sol" {
		t.Fatalf("unexpected query %v", gotQuery)
	}
	if len(candidates) != 2 || candidates[0].ID != "first" || candidates[0].Position == nil {
		t.Fatalf("unexpected candidates %+v", candidates)
	}
	if candidates[1].Position != nil {
		t.Fatalf("expected second candidate without position")
	}
}

func TestGoogleAutocompleteSendsRestrictions(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, `{"status":"OK","predictions":[
			{"place_id":"p1","description":"Cafe Sol, Toronto","structured_formatting":{"main_text":"Cafe Sol","secondary_text":"Toronto"}}
		]}`)
	})

	predictions, err := client.Autocomplete(context.Background(), AutocompleteRequest{
		Input:        "caf",
		SessionToken: "tok",
		Restriction: &Bounds{
			SouthWest: Position{Lat: 41.6, Lng: -95.2},
			NorthEast: Position{Lat: 56.9, Lng: -74.3},
		},
		Countries: []string{"CA"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotQuery.Get("locationrestriction") != "rectangle:41.6,-95.2|56.9,-74.3" {
		t.Fatalf("unexpected restriction %q", gotQuery.Get("locationrestriction"))
	}
	if gotQuery.Get("components") != "country:ca" {
		t.Fatalf("unexpected components %q", gotQuery.Get("components"))
	}
	if gotQuery.Get("sessiontoken") != "tok" {
		t.Fatalf("expected session token to be forwarded")
	}
	if len(predictions) != 1 || predictions[0].MainText != "Cafe Sol" {
		t.Fatalf("unexpected predictions %+v", predictions)
	}
}

func TestGooglePhotoStreamsBody(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		if r.URL.Path != "/photo" {
			t.Errorf("expected /photo, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	})

	stream, err := client.Photo(context.Background(), "ref-1", 300, 200)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() {
		_ = stream.Body.Close()
	}()

	body, _ := io.ReadAll(stream.Body)
	if string(body) != "jpeg-bytes" {
		t.Fatalf("unexpected body %q", body)
	}
	if stream.ContentType != "image/jpeg" {
		t.Fatalf("unexpected content type %q", stream.ContentType)
	}
	if gotQuery.Get("maxwidth") != "300" || gotQuery.Get("maxheight") != "200" || gotQuery.Get("photo_reference") != "ref-1" {
		t.Fatalf("unexpected query %v", gotQuery)
	}
}

func TestTransportErrorsDoNotExposeAPIKey(t *testing.T) {
	const secret = "SECRET-KEY-123"

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(200 * time.Millisecond):
		}
		_, _ = io.WriteString(w, `{"status":"OK","result":{}}`)
	}))
	defer srv.Close()
	defer close(release)

	var logs bytes.Buffer
	client := NewGoogleClient(testPlacesConfig{
		baseURL: srv.URL,
		apiKey:  secret,
		timeout: 50 * time.Millisecond,
	}, logger.NewWithWriter("production", &logs))

	_, err := NewResolver(client).Resolve(context.Background(), "poi-42")
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if strings.Contains(err.Error(), secret) {
		t.Fatalf("expected error without api key, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "details/json") {
		t.Fatalf("expected error to name the endpoint, got %q", err.Error())
	}
	if logs.Len() == 0 {
		t.Fatal("expected provider call to be logged")
	}
	if strings.Contains(logs.String(), secret) {
		t.Fatalf("expected logs without api key, got %s", logs.String())
	}

	_, err = client.Photo(context.Background(), "ref-1", 300, 200)
	if err == nil {
		t.Fatal("expected photo timeout error, got nil")
	}
	if strings.Contains(err.Error(), secret) || strings.Contains(logs.String(), secret) {
		t.Fatalf("expected photo error and logs without api key, got %q", err.Error())
	}
}
