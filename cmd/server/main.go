// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

// Package main is the entry point for the versiongate server.
//
// Versiongate exposes a single read-only diagnostic endpoint,
// GET /version-info, reporting the host runtime version, the application-core
// version, and installed plugin/theme versions to a remote periodic checker.
// Access is guarded by a dual-factor gate: a shared-secret header or an
// IP/CIDR allowlist.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layering (env > config.yaml > defaults);
//     the allowlist is parsed and validated here, and the process refuses to
//     start on a malformed or never-authorizing configuration
//  2. Logging: global zerolog logger
//  3. Registry client: manifest-file adapter (REGISTRY_MANIFEST)
//  4. Collector: runtime + descriptor + registry enumeration, with optional
//     upstream latest-version enrichment (UPDATES_ENABLED)
//  5. HTTP server: Chi router under a Suture supervisor, graceful shutdown
//     on SIGINT/SIGTERM
//
// # Configuration
//
// Minimal deployment with a header secret and an allowlist:
//
//	export AUTH_HEADER_NAME=X-Auth-Key
//	export AUTH_HEADER_VALUE=$(openssl rand -hex 24)
//	export AUTH_ALLOWED_SUBJECTS="127.0.0.1, 10.0.0.0/24"
//	export REGISTRY_MANIFEST=/etc/versiongate/components.json
//	export APP_VERSION_FILE=/var/www/core-version
//	./versiongate
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkalinow/versiongate/internal/api"
	"github.com/mkalinow/versiongate/internal/collector"
	"github.com/mkalinow/versiongate/internal/config"
	"github.com/mkalinow/versiongate/internal/directory"
	"github.com/mkalinow/versiongate/internal/gate"
	"github.com/mkalinow/versiongate/internal/logging"
	"github.com/mkalinow/versiongate/internal/registry"
	"github.com/mkalinow/versiongate/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors use the default logger; config is not yet available.
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	g, err := gate.New(gate.Config{
		HeaderName:      cfg.Auth.HeaderName,
		HeaderValue:     cfg.Auth.HeaderValue,
		AllowedSubjects: cfg.Auth.AllowedSubjects,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build access gate")
	}
	if cfg.Auth.HeaderName != "" {
		logging.Info().
			Str("header", cfg.Auth.HeaderName).
			Str("secret", logging.SanitizeSecret(cfg.Auth.HeaderValue)).
			Msg("header factor configured")
	}
	if n := len(cfg.Auth.AllowedSubjects); n > 0 {
		logging.Info().Int("subjects", n).Msg("address factor configured")
	}

	reg := registry.NewManifestClient(cfg.Registry.Manifest)
	if !reg.Available() {
		logging.Warn().Str("manifest", cfg.Registry.Manifest).
			Msg("registry manifest unavailable; component lists will be empty")
	}

	collectorOpts := []collector.Option{}
	if cfg.Updates.Enabled {
		collectorOpts = append(collectorOpts, collector.WithEnricher(directory.NewClient(directory.Config{
			EnvatoAPIKey:  cfg.Updates.EnvatoAPIKey,
			Timeout:       cfg.Updates.Timeout,
			RatePerSecond: cfg.Updates.RatePerSecond,
		})))
		logging.Info().Msg("latest-version enrichment enabled")
	}
	coll := collector.New(reg, cfg.Collector.VersionFile, collectorOpts...)

	router := api.NewRouter(api.NewHandler(coll), g, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.Add(supervisor.NewHTTPService(server, supervisor.DefaultTreeConfig().ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", server.Addr).
		Bool("metrics", cfg.Server.MetricsEnabled).
		Msg("versiongate starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor exited with error")
		os.Exit(1)
	}

	logging.Info().Msg("versiongate stopped")
}
