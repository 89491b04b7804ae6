package maps

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"mapview_backend/internal/maps/profile"
	"mapview_backend/internal/maps/stream"
	"mapview_backend/internal/places"
	"mapview_backend/internal/popup"
	"mapview_backend/internal/selection"
	"mapview_backend/internal/session"
	"mapview_backend/platform/apperr"
	"mapview_backend/platform/httpkit"
	"mapview_backend/platform/logger"
	"mapview_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	msgInvalidRequest = "invalid request"
	msgUnknownProfile = "unknown map profile"
	photoCacheControl = "private, max-age=86400"
)

// PhotoPath is where the photo proxy is mounted.
const PhotoPath = "/api/v1/maps/photos/"

// PhotoURL links a provider photo reference to the photo proxy.
func PhotoURL(reference string, width, height int) string {
	q := url.Values{}
	q.Set("w", strconv.Itoa(width))
	q.Set("h", strconv.Itoa(height))
	return PhotoPath + url.PathEscape(reference) + "?" + q.Encode()
}

// Suggester fetches autocomplete predictions and provider photos.
type Suggester interface {
	Suggest(ctx context.Context, req places.AutocompleteRequest) ([]places.Prediction, error)
	Photo(ctx context.Context, reference string, maxWidth, maxHeight int) (*places.PhotoStream, error)
}

// Handler exposes map profiles, the photo proxy and map sessions.
type Handler struct {
	store    *session.Store
	tokens   *session.Tokens
	profiles *profile.Registry
	places   Suggester
	hub      *stream.Hub
	val      *validator.Validator
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// HandlerDeps are the collaborators of the maps handler.
type HandlerDeps struct {
	Store    *session.Store
	Tokens   *session.Tokens
	Profiles *profile.Registry
	Places   Suggester
	Hub      *stream.Hub
	Log      *logger.Logger
	// Origins limits WebSocket upgrades; AllowAllOrigins disables the check.
	Origins         []string
	AllowAllOrigins bool
}

// NewHandler creates the maps handler and its WebSocket upgrader.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		store:    deps.Store,
		tokens:   deps.Tokens,
		profiles: deps.Profiles,
		places:   deps.Places,
		hub:      deps.Hub,
		val:      validator.New(),
		upgrader: newUpgrader(deps.Origins, deps.AllowAllOrigins),
		log:      deps.Log,
	}
}

// ListProfiles handles GET /api/v1/maps/profiles
func (h *Handler) ListProfiles(c *gin.Context) {
	httpkit.OK(c, gin.H{"profiles": h.profiles.List(), "default": h.profiles.Default().Name})
}

// GetProfile handles GET /api/v1/maps/profiles/:name
func (h *Handler) GetProfile(c *gin.Context) {
	p, ok := h.profiles.Get(c.Param("name"))
	if !ok {
		httpkit.Error(c, http.StatusNotFound, msgUnknownProfile, nil)
		return
	}
	httpkit.OK(c, p)
}

// Photo handles GET /api/v1/maps/photos/:ref?w=&h=
func (h *Handler) Photo(c *gin.Context) {
	var q PhotoQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if q.Width == 0 {
		q.Width = popup.PhotoWidth
	}
	if q.Height == 0 {
		q.Height = popup.PhotoHeight
	}

	photo, err := h.places.Photo(c.Request.Context(), c.Param("ref"), q.Width, q.Height)
	if httpkit.HandleError(c, err) {
		return
	}
	defer func() {
		_ = photo.Body.Close()
	}()

	contentType := photo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, photo.Size, contentType, photo.Body, map[string]string{
		"Cache-Control": photoCacheControl,
	})
}

// CreateSession handles POST /api/v1/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
			return
		}
	}

	p, ok := h.profiles.Get(req.Profile)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, msgUnknownProfile, nil)
		return
	}

	sess := h.store.Create(p)
	token, expiresAt, err := h.tokens.Issue(sess.ID)
	if err != nil {
		_ = h.store.Delete(sess.ID)
		h.log.Error("failed to issue session token", "error", err)
		httpkit.HandleError(c, apperr.Internal("failed to issue session token"))
		return
	}

	httpkit.JSON(c, http.StatusCreated, CreateSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   p,
		Viewport:  sess.Viewport.State(),
	})
}

// GetSession handles GET /api/v1/session
func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	httpkit.OK(c, sess.Snapshot())
}

// DeleteSession handles DELETE /api/v1/session
func (h *Handler) DeleteSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.store.Delete(sess.ID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Click handles POST /api/v1/session/clicks
func (h *Handler) Click(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	respondResult(c, sess.Pipeline.HandleClick(selection.NewClick(places.PlaceID(req.PlaceID))))
}

// SetSearchBox handles PUT /api/v1/session/search-box
func (h *Handler) SetSearchBox(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req SearchBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	sess.Box.Set(req.Text)
	httpkit.OK(c, gin.H{"text": sess.Box.Text()})
}

// Search handles POST /api/v1/session/search
func (h *Handler) Search(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req SearchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
			return
		}
	}
	if req.Text != nil {
		sess.Box.Set(*req.Text)
	}

	respondResult(c, sess.Pipeline.SubmitSearch())
}

// Autocomplete handles GET /api/v1/session/autocomplete?input=
func (h *Handler) Autocomplete(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var q AutocompleteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	predictions, err := h.places.Suggest(c.Request.Context(), sess.Suggest(q.Input))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, PredictionsResponse{Predictions: predictions})
}

// CommitAutocomplete handles POST /api/v1/session/autocomplete/commit
func (h *Handler) CommitAutocomplete(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req AutocompleteCommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	respondResult(c, sess.Pipeline.CommitAutocomplete(req.toPlace()))
}

// Popup handles GET /api/v1/session/popup?format=json|html
func (h *Handler) Popup(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var q PopupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	current, open := sess.Popups.Current()
	if !open {
		httpkit.HandleError(c, apperr.NotFound("no popup is open"))
		return
	}

	if q.Format == "html" {
		html, err := popup.Render(current.Content)
		if err != nil {
			h.log.Error("failed to render popup", "session_id", sess.ID, "error", err)
			httpkit.HandleError(c, apperr.Internal("failed to render popup"))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}
	httpkit.OK(c, current)
}

// PopupQR handles GET /api/v1/session/popup/qr.png?size=
func (h *Handler) PopupQR(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var q QRQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	current, open := sess.Popups.Current()
	if !open {
		httpkit.HandleError(c, apperr.NotFound("no popup is open"))
		return
	}

	png, err := popup.QRCode(current.Content, q.Size)
	if err != nil {
		h.log.Error("failed to encode qr code", "session_id", sess.ID, "error", err)
		httpkit.HandleError(c, apperr.Internal("failed to encode qr code"))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// Events handles GET /api/v1/session/events (Server-Sent Events)
func (h *Handler) Events(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.hub.ServeSSE(c, sess.ID, sess.Snapshot())
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	id, ok := httpkit.SessionID(c)
	if !ok {
		httpkit.HandleError(c, apperr.Unauthorized("missing session"))
		return nil, false
	}
	sess, err := h.store.Get(id)
	if httpkit.HandleError(c, err) {
		return nil, false
	}
	return sess, true
}

func respondResult(c *gin.Context, result selection.Result) {
	if result.Outcome == selection.OutcomeAccepted {
		httpkit.Accepted(c, result)
		return
	}
	httpkit.OK(c, result)
}
