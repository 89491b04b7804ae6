package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mapview_backend/platform/config"
	"mapview_backend/platform/logger"
	"mapview_backend/platform/sanitize"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
	statusNotFound    = "NOT_FOUND"
)

// GoogleClient talks to the Google Places Web Service.
type GoogleClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewGoogleClient creates a client from the places configuration.
func NewGoogleClient(cfg config.PlacesConfig, log *logger.Logger) *GoogleClient {
	return &GoogleClient{
		apiKey:  cfg.GetGoogleMapsAPIKey(),
		baseURL: strings.TrimRight(cfg.GetPlacesBaseURL(), "/"),
		client:  &http.Client{Timeout: cfg.GetPlacesHTTPTimeout()},
		log:     log,
	}
}

// Details implements Provider.
func (g *GoogleClient) Details(ctx context.Context, id PlaceID, fields []string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", id.String())
	params.Set("fields", strings.Join(fields, ","))

	var resp googleDetailsResponse
	if err := g.getJSON(ctx, "details", params, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("details", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, ErrNoResults
	}
	details := toDetails(*resp.Result)
	return &details, nil
}

// FindPlaceFromText implements Provider.
func (g *GoogleClient) FindPlaceFromText(ctx context.Context, query string, fields []string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("input", query)
	params.Set("inputtype", "textquery")
	params.Set("fields", strings.Join(fields, ","))

	var resp googleFindPlaceResponse
	if err := g.getJSON(ctx, "findplacefromtext", params, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("findplacefromtext", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Candidates))
	for _, raw := range resp.Candidates {
		candidates = append(candidates, Candidate{
			ID:       PlaceID(raw.PlaceID),
			Name:     raw.Name,
			Position: toPosition(raw.Geometry),
		})
	}
	return candidates, nil
}

// Autocomplete implements Provider.
func (g *GoogleClient) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Prediction, error) {
	params := url.Values{}
	params.Set("input", req.Input)
	if req.SessionToken != "" {
		params.Set("sessiontoken", req.SessionToken)
	}
	if req.Restriction != nil {
		params.Set("locationrestriction", rectangle(*req.Restriction))
	}
	if len(req.Countries) > 0 {
		parts := make([]string, 0, len(req.Countries))
		for _, c := range req.Countries {
			parts = append(parts, "country:"+strings.ToLower(c))
		}
		params.Set("components", strings.Join(parts, "|"))
	}
	if req.Language != "" {
		params.Set("language", req.Language)
	}

	var resp googleAutocompleteResponse
	if err := g.getJSON(ctx, "autocomplete", params, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("autocomplete", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	predictions := make([]Prediction, 0, len(resp.Predictions))
	for _, raw := range resp.Predictions {
		predictions = append(predictions, Prediction{
			ID:            PlaceID(raw.PlaceID),
			Description:   raw.Description,
			MainText:      raw.StructuredFormatting.MainText,
			SecondaryText: raw.StructuredFormatting.SecondaryText,
		})
	}
	return predictions, nil
}

// Photo implements Provider. The provider answers with a redirect to the
// image, which the HTTP client follows.
func (g *GoogleClient) Photo(ctx context.Context, reference string, maxWidth, maxHeight int) (*PhotoStream, error) {
	params := url.Values{}
	params.Set("photo_reference", reference)
	if maxWidth > 0 {
		params.Set("maxwidth", strconv.Itoa(maxWidth))
	}
	if maxHeight > 0 {
		params.Set("maxheight", strconv.Itoa(maxHeight))
	}

	start := time.Now()
	resp, err := g.do(ctx, "photo", params)
	if err != nil {
		g.log.ProviderCall("photo", "transport_error", time.Since(start), err)
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		err := fmt.Errorf("photo upstream error: %d", resp.StatusCode)
		g.log.ProviderCall("photo", strconv.Itoa(resp.StatusCode), time.Since(start), err)
		return nil, err
	}
	g.log.ProviderCall("photo", statusOK, time.Since(start), nil)

	return &PhotoStream{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

func (g *GoogleClient) do(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", g.baseURL, endpointPath(endpoint), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, redactURL(endpoint, err)
	}
	return resp, nil
}

// redactURL drops the request URL, which carries the API key, from a
// transport error. The underlying cause stays in the chain.
func redactURL(endpoint string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s %s: %w", urlErr.Op, endpointPath(endpoint), urlErr.Err)
	}
	return err
}

func (g *GoogleClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	start := time.Now()

	resp, err := g.do(ctx, endpoint, params)
	if err != nil {
		g.log.ProviderCall(endpoint, "transport_error", time.Since(start), err)
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%s upstream error (status %d): %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
		g.log.ProviderCall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start), err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		g.log.ProviderCall(endpoint, "decode_error", time.Since(start), err)
		return fmt.Errorf("failed to decode %s payload: %w", endpoint, err)
	}

	g.log.ProviderCall(endpoint, statusOf(out), time.Since(start), nil)
	return nil
}

func endpointPath(endpoint string) string {
	if endpoint == "photo" {
		return "photo"
	}
	return endpoint + "/json"
}

func statusOf(v interface{}) string {
	switch r := v.(type) {
	case *googleDetailsResponse:
		return r.Status
	case *googleFindPlaceResponse:
		return r.Status
	case *googleAutocompleteResponse:
		return r.Status
	}
	return ""
}

func statusErr(op, status, message string) error {
	switch status {
	case statusOK:
		return nil
	case statusZeroResults, statusNotFound:
		return ErrNoResults
	default:
		return &StatusError{Op: op, Status: status, Message: message}
	}
}

func toDetails(raw googlePlace) PlaceDetails {
	details := PlaceDetails{
		ID:               PlaceID(raw.PlaceID),
		Name:             raw.Name,
		FormattedAddress: raw.FormattedAddress,
		Position:         toPosition(raw.Geometry),
		Rating:           raw.Rating,
		UserRatingsTotal: raw.UserRatingsTotal,
	}

	for _, p := range raw.Photos {
		if p.PhotoReference == "" {
			continue
		}
		photo := Photo{Reference: p.PhotoReference, Width: p.Width, Height: p.Height}
		if len(p.HTMLAttributions) > 0 {
			photo.Attribution = sanitize.StripHTML(p.HTMLAttributions[0])
		}
		details.Photos = append(details.Photos, photo)
	}

	if raw.OpeningHours != nil {
		details.OpeningHours = &OpeningHours{
			OpenNow:     raw.OpeningHours.OpenNow,
			WeekdayText: raw.OpeningHours.WeekdayText,
		}
	}
	return details
}

func toPosition(g *googleGeometry) *Position {
	if g == nil || g.Location == nil {
		return nil
	}
	return &Position{Lat: g.Location.Lat, Lng: g.Location.Lng}
}

func rectangle(b Bounds) string {
	return fmt.Sprintf("rectangle:%s,%s|%s,%s",
		formatCoord(b.SouthWest.Lat), formatCoord(b.SouthWest.Lng),
		formatCoord(b.NorthEast.Lat), formatCoord(b.NorthEast.Lng))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var _ Provider = (*GoogleClient)(nil)
