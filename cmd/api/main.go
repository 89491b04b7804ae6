package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mapview_backend/internal/events"
	apphttp "mapview_backend/internal/http"
	"mapview_backend/internal/http/router"
	"mapview_backend/internal/maps"
	"mapview_backend/internal/maps/profile"
	"mapview_backend/internal/maps/stream"
	"mapview_backend/internal/places"
	"mapview_backend/internal/popup"
	"mapview_backend/internal/session"
	"mapview_backend/platform/config"
	"mapview_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	eventBus, health, closeBus := initEventBus(ctx, g, cfg, log)
	if closeBus != nil {
		defer closeBus()
	}

	profiles, err := profile.Load(cfg.GetMapProfilesFile(), cfg.GetMapProfile())
	if err != nil {
		log.Error("failed to load map profiles", "error", err)
		panic("failed to load map profiles: " + err.Error())
	}
	log.Info("map profiles loaded", "default", profiles.Default().Name, "count", len(profiles.List()))

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	resolver := places.NewResolver(places.NewGoogleClient(cfg, log))
	builder := popup.NewBuilder(maps.PhotoURL)

	store := session.NewStore(ctx, session.Deps{
		Resolver:      resolver,
		Builder:       builder,
		Bus:           eventBus,
		Log:           log,
		TTL:           cfg.GetSessionTTL(),
		SequenceGuard: cfg.GetSelectionOrdering() == config.OrderingLatestSelection,
	})
	g.Go(func() error {
		return store.Run(ctx)
	})
	log.Info("session store started", "ttl", cfg.GetSessionTTL(), "ordering", cfg.GetSelectionOrdering())

	hub := stream.New(log)
	hub.SubscribeTo(eventBus)
	defer hub.Close()

	tokens := session.NewTokens(cfg)

	mapsModule := maps.NewModule(maps.HandlerDeps{
		Store:           store,
		Tokens:          tokens,
		Profiles:        profiles,
		Places:          resolver,
		Hub:             hub,
		Log:             log,
		Origins:         cfg.GetCORSOrigins(),
		AllowAllOrigins: cfg.GetCORSAllowAll(),
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		Sessions: tokens,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			mapsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// redisHealth adapts a Redis client to the router's readiness check.
type redisHealth struct {
	client *redis.Client
}

func (r redisHealth) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// initEventBus selects the Redis bus when REDIS_URL is set so sessions on
// every instance see the same events. Without Redis the bus is in-process.
func initEventBus(ctx context.Context, g *errgroup.Group, cfg config.RedisConfig, log *logger.Logger) (events.Bus, apphttp.HealthChecker, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; using in-memory event bus")
		return events.NewInMemoryBus(log), nil, nil
	}

	client, err := events.NewRedisClient(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}

	bus := events.NewRedisBus(client, cfg.GetRedisChannelPrefix(), log)
	g.Go(func() error {
		return bus.Run(ctx)
	})

	select {
	case <-bus.Ready():
	case <-ctx.Done():
	}
	log.Info("redis event bus subscribed", "prefix", cfg.GetRedisChannelPrefix())

	return bus, redisHealth{client: client}, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
