// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"mapview_backend/internal/events"
	"mapview_backend/platform/config"
	"mapview_backend/platform/httpkit"
	"mapview_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.RateLimitConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and rate limit settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (e.g., Redis ping). Nil means always ready.
	Health HealthChecker
	// Sessions verifies map session tokens for the protected route group.
	Sessions httpkit.TokenVerifier
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
