// Copyright (c) 2026 Aventra. All rights reserved.

// Command api is the entry point for the Aventra storefront BFF server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Bind session slot storage (Redis when configured, in-memory otherwise).
//  4. Wire the session & cart engine and the catalog gateway.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aventra/storefront/internal/api"
	"github.com/aventra/storefront/internal/cart"
	"github.com/aventra/storefront/internal/catalog"
	"github.com/aventra/storefront/internal/platform/config"
	"github.com/aventra/storefront/internal/platform/constants"
	"github.com/aventra/storefront/internal/platform/keystore"
	"github.com/aventra/storefront/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Aventra] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("catalog", cfg.CatalogBaseURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Session Slot Storage ───────────────────────────────────────────
	var (
		slots        keystore.Store
		checkStorage func() error
	)

	if cfg.RedisURL != "" {
		rdb, err := keystore.Connect(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to slot storage")
		defer func() {
			log.Info("closing slot storage client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("slot storage close error", slog.Any("error", cerr))
			}
		}()

		slots = keystore.NewRedis(rdb)
		checkStorage = func() error {
			return keystore.Ping(context.Background(), rdb)
		}
	} else {
		log.Warn("redis_not_configured", slog.String("effect", "sessions will not survive a restart"))
		slots = keystore.NewMemory()
	}

	// ── 4. Engine Wiring ──────────────────────────────────────────────────
	sessions := session.NewManager(slots, log)
	gateway := catalog.NewGateway(cfg.CatalogBaseURL, log)
	carts := cart.NewStore(slots, log)
	reconciler := cart.NewReconciler(carts, sessions, gateway, log)

	// ── 5. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckStorage: checkStorage,
		CheckCatalog: func() error {
			// Reachability only; any HTTP answer means the catalog is up.
			probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			request, err := http.NewRequestWithContext(probeCtx, http.MethodHead, cfg.CatalogBaseURL, nil)
			if err != nil {
				return err
			}
			response, err := http.DefaultClient.Do(request)
			if err != nil {
				return err
			}
			return response.Body.Close()
		},
	}, log)

	// ── 6. HTTP Handlers ──────────────────────────────────────────────────
	guardFor := func(navigate func(target string)) catalog.RouteGuard {
		return session.NewGuard(sessions, navigate)
	}

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Session:   session.NewHandler(sessions, gateway, cfg.LoginRedirect),
		Catalog:   catalog.NewHandler(gateway, sessions, guardFor, cfg.LoginRedirect),
		Cart:      cart.NewHandler(carts, reconciler, cfg.LoginRedirect),
	}

	server := api.NewServer(context.Background(), cfg, log, handlers)

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs and exits on a fatal startup error.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed", slog.String("step", step), slog.Any("error", err))
		os.Exit(1)
	}
}
