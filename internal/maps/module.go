// Package maps exposes map profiles, the provider photo proxy and per-map
// sessions whose selections drive the place popup.
package maps

import (
	apphttp "mapview_backend/internal/http"
)

// Module wires the maps HTTP routes.
type Module struct {
	handler *Handler
}

func NewModule(deps HandlerDeps) *Module {
	return &Module{handler: NewHandler(deps)}
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	limit := ctx.SelectionRateLimiter.RateLimit()

	public := ctx.V1.Group("/maps")
	public.GET("/profiles", m.handler.ListProfiles)
	public.GET("/profiles/:name", m.handler.GetProfile)
	public.GET("/photos/:ref", limit, m.handler.Photo)

	ctx.V1.POST("/sessions", limit, m.handler.CreateSession)

	sess := ctx.Protected.Group("/session")
	sess.GET("", m.handler.GetSession)
	sess.DELETE("", m.handler.DeleteSession)
	sess.POST("/clicks", limit, m.handler.Click)
	sess.PUT("/search-box", m.handler.SetSearchBox)
	sess.POST("/search", limit, m.handler.Search)
	sess.GET("/autocomplete", limit, m.handler.Autocomplete)
	sess.POST("/autocomplete/commit", limit, m.handler.CommitAutocomplete)
	sess.GET("/popup", m.handler.Popup)
	sess.GET("/popup/qr.png", m.handler.PopupQR)
	sess.GET("/events", m.handler.Events)
	sess.GET("/ws", m.handler.WebSocket)
}

var _ apphttp.Module = (*Module)(nil)
