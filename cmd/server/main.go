// Clarity Council - Multi-Persona Consultation Server
package main

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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/claritycouncil/council/internal/api"
	"github.com/claritycouncil/council/internal/config"
	"github.com/claritycouncil/council/internal/council"
	"github.com/claritycouncil/council/internal/middleware"
	"github.com/claritycouncil/council/internal/persona"
	"github.com/claritycouncil/council/internal/registry"
	"github.com/claritycouncil/council/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Live sessions are held in memory; completed sessions are archived to
	// SQLite for later retrieval.
	repo := store.NewMemoryStore()
	defer repo.Close()

	archive, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize session archive", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := archive.Close(); closeErr != nil {
			slog.Error("Failed to close session archive", "error", closeErr)
		}
	}()

	if err := archive.Ping(context.Background()); err != nil {
		slog.Error("Session archive health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session archive connected", "path", cfg.DBPath)

	// Persona catalog with workspace overrides.
	overrides, err := persona.LoadOverrides(cfg.WorkspaceDir)
	if err != nil {
		slog.Error("Failed to load persona overrides", "error", err)
		os.Exit(1)
	}
	catalog := persona.NewCatalog(overrides)
	if overrides != nil {
		slog.Info("Persona overrides loaded", "count", len(overrides.Overrides))
	}

	mgr := council.NewSessionManager(repo, council.Config{
		InteractiveModeEnabled:   cfg.Council.InteractiveEnabled,
		DebateCycleLimit:         cfg.Council.DebateCycleLimit,
		ExtendedDebateCycleLimit: cfg.Council.ExtendedDebateCycleLimit,
	})
	ctrl := council.NewController(mgr, catalog, nil)

	handler := api.NewHandler(ctrl, mgr, catalog, archive, cfg.WorkspaceDir)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))
	r.Use(middleware.CORS([]string{"*"}))

	handler.Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hot-reload persona overrides when the workspace file changes.
	watcher, err := persona.NewWatcher(cfg.WorkspaceDir)
	if err != nil {
		slog.Warn("Persona override watcher disabled", "error", err)
	} else {
		defer watcher.Close()
		go watcher.Run(ctx)
		go func() {
			for {
				select {
				case updated, ok := <-watcher.Updates():
					if !ok {
						return
					}
					catalog.SetOverrides(updated)
					slog.Info("Persona catalog reloaded from workspace")
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Docker registration and periodic self health probing.
	reg, err := registry.New(cfg.Registry.RegistrationEnabled)
	if err != nil {
		slog.Error("Failed to initialize docker registry", "error", err)
		os.Exit(1)
	}
	defer reg.Close()

	if reg.Enabled() {
		if err := reg.Register(ctx); err != nil {
			slog.Error("Docker registration failed", "error", err)
			os.Exit(1)
		}
	}
	reg.StartProber(ctx, registry.ProbeConfig{
		SelfURL:      fmt.Sprintf("http://127.0.0.1:%s/healthz", cfg.Port),
		WorkspaceDir: cfg.WorkspaceDir,
		Interval:     cfg.Registry.ProbeInterval,
	})

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
