// ABOUTME: The serve subcommand wiring config, store, fleet, and HTTP API together.
// ABOUTME: Owns daemon startup order and graceful shutdown.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wardenhq/warden/internal/auth"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/fleet"
	"github.com/wardenhq/warden/internal/httpapi"
	"github.com/wardenhq/warden/internal/registry"
	"github.com/wardenhq/warden/internal/store"
	"github.com/wardenhq/warden/internal/supervisor"
)

func runServe(ctx context.Context) error {
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	fmt.Print(banner)
	logger.Info("starting warden", "version", version, "config", configPath)

	db, err := store.NewSQLiteStore(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	reg := registry.New(logger)

	manifest, err := fleet.LoadManifest(cfg.Fleet.ManifestPath, fleet.Defaults{
		HealthInterval: cfg.Fleet.DefaultHealthInterval,
		Timeout:        cfg.Fleet.DefaultTimeout,
	})
	if err != nil {
		return fmt.Errorf("loading fleet manifest: %w", err)
	}

	agents, err := fleet.Build(manifest, logger)
	if err != nil {
		return fmt.Errorf("building fleet: %w", err)
	}
	for _, ag := range agents {
		if err := reg.Register(ag); err != nil {
			return fmt.Errorf("registering agent %s: %w", ag.ID(), err)
		}
	}
	logger.Info("fleet registered", "agents", reg.Len())

	journalEvents(reg, agents, db, logger)

	result := reg.StartAll(ctx)
	if !result.Ok() {
		logger.Warn("fleet started with failures",
			"succeeded", len(result.Succeeded),
			"failed", len(result.Failed),
		)
	} else {
		logger.Info("fleet started", "agents", len(result.Succeeded))
	}

	mux := http.NewServeMux()
	api := httpapi.New(reg, db, logger)
	api.RegisterRoutes(mux)

	handler, err := wrapAuth(ctx, mux, cfg, db, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	stopResult := reg.StopAll(shutdownCtx)
	if !stopResult.Ok() {
		logger.Warn("fleet stopped with failures", "failed", len(stopResult.Failed))
	}

	logger.Info("warden stopped")
	return nil
}

// wrapAuth enables bearer token auth when any credential source is
// configured. With no JWT secret and no stored tokens the API serves open,
// which suits the default loopback bind.
func wrapAuth(ctx context.Context, mux *http.ServeMux, cfg *config.Config, db store.Store, logger *slog.Logger) (http.Handler, error) {
	tokenCount, err := db.CountTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting api tokens: %w", err)
	}

	if cfg.Auth.JWTSecret == "" && tokenCount == 0 {
		logger.Warn("api auth disabled: no jwt secret and no api tokens configured")
		return mux, nil
	}

	var verifier auth.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	}
	return auth.Middleware(verifier, db, logger)(mux), nil
}

// journalEvents persists fleet lifecycle and per-agent state transitions to
// the event journal. Journal write failures are logged, never propagated:
// the audit trail must not interfere with supervision. Writes use a fresh
// context so events emitted during shutdown still land in the journal.
func journalEvents(reg *registry.Registry, agents []*supervisor.Agent, db store.Store, logger *slog.Logger) {
	record := func(evt supervisor.Event) {
		rec := &store.EventRecord{
			ID:            uuid.NewString(),
			AgentID:       evt.AgentID,
			Name:          evt.Name,
			CorrelationID: evt.CorrelationID,
			OldState:      string(evt.OldState),
			NewState:      string(evt.NewState),
			CreatedAt:     evt.Timestamp,
		}
		if evt.Health != nil {
			rec.HealthStatus = string(evt.Health.Status)
			rec.Message = evt.Health.Message
		}
		if err := db.SaveEvent(context.Background(), rec); err != nil {
			logger.Error("journaling event failed",
				"agent_id", evt.AgentID, "event", evt.Name, "error", err)
		}
	}

	for _, name := range []string{
		registry.EventAgentStarted,
		registry.EventAgentStopped,
		registry.EventAgentUnhealthy,
	} {
		reg.Subscribe(name, record)
	}
	for _, ag := range agents {
		ag.Subscribe(supervisor.EventStateChanged, record)
	}
}
