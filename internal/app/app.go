package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"djajbladi-console/internal/client"
	"djajbladi-console/internal/config"
	"djajbladi-console/internal/database"
	"djajbladi-console/internal/event"
	"djajbladi-console/internal/handler"
	"djajbladi-console/internal/middleware"
	"djajbladi-console/internal/router"
	"djajbladi-console/internal/service"
	"djajbladi-console/internal/session"
	"djajbladi-console/internal/tokenstore"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cleanupFuncs []func()

	sessionTier := tokenstore.NewMemoryTier()
	cleanupFuncs = append(cleanupFuncs, sessionTier.Close)

	// Remembered sessions go to Postgres when one is configured; without it
	// the durable tier is memory too and remember only survives until the
	// process restarts.
	var durable tokenstore.Tier
	var db *database.DB
	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL")
		db, err = database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		cleanupFuncs = append(cleanupFuncs, db.Close)

		pgTier := tokenstore.NewPostgresTier(db.Pool)
		sealed, err := tokenstore.NewSealedTier(pgTier, cfg.TokenSealKey)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize token sealing: %w", err)
		}
		durable = sealed
		slog.Info("database ready")
	} else {
		slog.Warn("DATABASE_URL not set, remembered sessions will not survive restarts")
		memDurable := tokenstore.NewMemoryTier()
		cleanupFuncs = append(cleanupFuncs, memDurable.Close)
		durable = memDurable
	}

	store := tokenstore.New(sessionTier, durable, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	resolver := session.NewResolver(store)

	bus := event.NewBus()
	cleanupFuncs = append(cleanupFuncs, logSessionEvents(bus))

	backend := client.New(cfg.BackendBaseURL, cfg.BackendTimeout)
	capacity := service.NewCapacityValidator(backend)
	watcher := session.NewWatcher(resolver, store, bus, cfg.WatchInterval)
	guard := middleware.NewGuard(resolver, store, cfg.SessionCookieName, cfg.LoginPath, cfg.DashboardPath)

	cookie := handler.CookieConfig{
		Name:        cfg.SessionCookieName,
		Secure:      cfg.CookieSecure,
		RememberAge: cfg.RefreshTokenTTL,
	}
	authHandler := handler.NewAuthHandler(backend, store, bus, cookie)
	sessionHandler := handler.NewSessionHandler(resolver, watcher, cfg.SessionCookieName)
	adminHandler := handler.NewAdminHandler(backend, store, capacity)

	appRouter := router.New(cfg, guard, authHandler, sessionHandler, adminHandler)

	if db != nil {
		janitorCtx, janitorCancel := context.WithCancel(context.Background())
		cleanupFuncs = append(cleanupFuncs, janitorCancel)
		go runExpiryJanitor(janitorCtx, tokenstore.NewPostgresTier(db.Pool))
	}

	// WriteTimeout stays zero so the session watch stream is not cut off;
	// the timeout middleware bounds every other request.
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, cleanupFuncs: cleanupFuncs}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}

// logSessionEvents drains the bus into the structured log so session
// lifecycle transitions are visible alongside the request log. The returned
// function unsubscribes and stops the drain goroutine.
func logSessionEvents(bus event.Bus) func() {
	events, unsubscribe := bus.Subscribe()
	go func() {
		for e := range events {
			slog.Info("session event",
				"event_id", e.ID,
				"type", string(e.Type),
				"session_id", e.SessionID,
				"email", e.Email,
				"role", e.Role,
			)
		}
	}()

	return unsubscribe
}

// runExpiryJanitor periodically drops lapsed console_state rows.
func runExpiryJanitor(ctx context.Context, tier *tokenstore.PostgresTier) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := tier.CleanExpired(ctx)
			if err != nil {
				slog.Warn("expired row cleanup failed", "error", err)
			} else if removed > 0 {
				slog.Info("expired console state reclaimed", "rows", removed)
			}
		}
	}
}
