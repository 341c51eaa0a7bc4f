// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/SilentBYOB/blacksoundfest-api/internal/api"
	"github.com/SilentBYOB/blacksoundfest-api/internal/auth"
	"github.com/SilentBYOB/blacksoundfest-api/internal/config"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival/badgerstore"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival/mongostore"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
	"github.com/SilentBYOB/blacksoundfest-api/internal/metrics"
	"github.com/SilentBYOB/blacksoundfest-api/internal/middleware"
	"github.com/SilentBYOB/blacksoundfest-api/internal/storage"
	"github.com/SilentBYOB/blacksoundfest-api/internal/supervisor"
	"github.com/SilentBYOB/blacksoundfest-api/internal/supervisor/services"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

const (
	storeGCInterval = 10 * time.Minute
	storeGCRatio    = 0.5
	startupTimeout  = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("store_backend", cfg.Store.Backend).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Blacksoundfest API")
	metrics.AppInfo.WithLabelValues(version, runtime.Version(), cfg.Store.Backend).Set(1)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	store := openStore(startCtx, cfg, tree)
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing festival store")
			}
		}()
		seedStore(startCtx, store, cfg.Festival.SeedFile)
	}
	cancelStart()

	objects, files := openObjects(cfg)

	tokens, err := auth.NewTokenService(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create token service")
	}
	admin, err := auth.NewAdminCredentials(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load admin credentials")
	}

	var submitLimiter *middleware.IPRateLimiter
	if !cfg.Security.RateLimitDisabled {
		submitLimiter = middleware.NewIPRateLimiter(cfg.Security.SubmitRateReqs, cfg.Security.SubmitRateWindow)
		tree.AddMaintenanceService(submitLimiter)
	}

	handler := api.NewHandler(cfg, store, objects, tokens, admin)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)), submitLimiter, files)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, services.DefaultShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Blacksoundfest API stopped")
}

// openStore opens the configured document store. A store that cannot be
// opened is logged and nil is returned; the server still starts and the
// endpoints that need the store answer 503.
func openStore(ctx context.Context, cfg *config.Config, tree *supervisor.SupervisorTree) festival.Store {
	switch cfg.Store.Backend {
	case "mongo":
		store, err := mongostore.Open(ctx, mongostore.Options{
			URI:        cfg.Store.MongoURI,
			Database:   cfg.Store.MongoDatabase,
			Collection: cfg.Store.MongoCollection,
			Key:        cfg.Store.DocumentKey,
			Timeout:    cfg.Store.MongoTimeout,
		})
		if err != nil {
			logging.Error().Err(err).Msg("Failed to connect to MongoDB, festival data endpoints disabled")
			return nil
		}
		logging.Info().Str("database", cfg.Store.MongoDatabase).Str("collection", cfg.Store.MongoCollection).Msg("MongoDB festival store ready")
		return store

	default:
		store, err := badgerstore.Open(badgerstore.Options{
			Path:       cfg.Store.BadgerPath,
			InMemory:   cfg.Store.BadgerInMemory,
			SyncWrites: true,
			Key:        cfg.Store.DocumentKey,
			GCInterval: storeGCInterval,
			GCRatio:    storeGCRatio,
		})
		if err != nil {
			logging.Error().Err(err).Str("path", cfg.Store.BadgerPath).Msg("Failed to open Badger store, festival data endpoints disabled")
			return nil
		}
		tree.AddMaintenanceService(store)
		logging.Info().Str("path", cfg.Store.BadgerPath).Bool("in_memory", cfg.Store.BadgerInMemory).Msg("Badger festival store ready")
		return store
	}
}

func seedStore(ctx context.Context, store festival.Store, path string) {
	seeded, err := festival.Seed(ctx, store, path)
	if err != nil {
		logging.Error().Err(err).Str("file", path).Msg("Failed to seed festival document")
		return
	}
	if seeded {
		logging.Info().Str("file", path).Msg("Festival document seeded")
	}
}

// openObjects creates the filesystem object store behind a circuit breaker.
// On failure both results are nil and uploads answer 503.
func openObjects(cfg *config.Config) (storage.ObjectStore, http.Handler) {
	baseURL := cfg.Objects.PublicBaseURL
	if baseURL == "" {
		host := cfg.Server.Host
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		baseURL = fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
	}

	fs, err := storage.NewFileStore(cfg.Objects.RootDir, baseURL)
	if err != nil {
		logging.Error().Err(err).Str("root", cfg.Objects.RootDir).Msg("Failed to open object store, uploads disabled")
		return nil, nil
	}
	logging.Info().Str("root", cfg.Objects.RootDir).Str("public_base_url", baseURL).Msg("Object store ready")
	return storage.NewBreakerStore(fs, storage.DefaultBreakerSettings()), fs.Handler()
}
