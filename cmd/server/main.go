// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

// Package main is the entry point for the RigMatch server.
//
// RigMatch recommends pre-built PC configurations matched to a requirement
// profile (purpose, budget window, performance level, brand preferences).
// The server initializes components in the following order:
//
//  1. Configuration: environment variables > YAML file > defaults (Koanf v2)
//  2. Catalog: DuckDB configuration catalog behind a circuit breaker
//  3. Cache: Badger or in-memory recommendation result cache
//  4. Engine: retrieval, scoring, and explanation pipeline
//  5. Events: in-process feedback bus and cache-invalidation consumer
//  6. HTTP server: REST API under a suture supervisor tree
//
// Graceful shutdown on SIGINT/SIGTERM drains in-flight requests within the
// server timeout, then closes the bus, cache, and catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/rigmatch/internal/api"
	"github.com/tomtom215/rigmatch/internal/cache"
	"github.com/tomtom215/rigmatch/internal/catalog"
	"github.com/tomtom215/rigmatch/internal/config"
	"github.com/tomtom215/rigmatch/internal/engine"
	"github.com/tomtom215/rigmatch/internal/events"
	"github.com/tomtom215/rigmatch/internal/logging"
	"github.com/tomtom215/rigmatch/internal/supervisor"
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
		Str("environment", cfg.Server.Environment).
		Str("catalog_path", cfg.Database.Path).
		Str("cache_store", cfg.Cache.Store).
		Msg("Starting RigMatch")

	// Catalog behind a circuit breaker.
	duck, err := catalog.NewDuckDBStore(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open configuration catalog")
	}
	defer func() {
		if err := duck.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
	}()
	breaker := catalog.NewBreakerStore(duck)
	logging.Info().Msg("Catalog initialized")

	// Result cache.
	store, err := cache.New(cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open result cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	// Recommendation engine.
	eng := engine.New(breaker, store, cfg.Engine, cfg.Cache)

	// Feedback event bus.
	bus := events.NewBus(cfg.Events, events.NewLoggerAdapter())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// HTTP surface.
	handler := api.NewHandler(eng, breaker, breaker, bus, cfg.API)
	router := api.NewRouter(handler, cfg.API)
	defer router.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Supervisor tree: feedback consumer and HTTP server with restart.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddEventsService(supervisor.NewFeedbackConsumerService(bus, eng))
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.Timeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	logging.Info().Msg("RigMatch stopped")
}
