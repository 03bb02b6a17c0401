// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

// Package api provides HTTP routing and handlers using the Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkalinow/versiongate/internal/config"
	"github.com/mkalinow/versiongate/internal/gate"
	"github.com/mkalinow/versiongate/internal/middleware"
)

// Router assembles the HTTP surface of the service.
type Router struct {
	handler *Handler
	gate    *gate.Gate
	cfg     *config.Config
}

// NewRouter creates a router from its collaborators.
func NewRouter(handler *Handler, g *gate.Gate, cfg *config.Config) *Router {
	return &Router{
		handler: handler,
		gate:    g,
		cfg:     cfg,
	}
}

// Setup configures all routes and the middleware stack.
//
// The gate middleware sits innermost on the version-info route, after rate
// limiting and instrumentation, so denied requests are still counted and
// paced but never reach the collector.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. RemoteAddr is never
	// rewritten from forwarded headers: the address factor of the gate (and
	// the rate-limit key) must reflect the socket peer, not a client-supplied
	// X-Forwarded-For value.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	if len(router.cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: router.cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", router.cfg.Auth.HeaderName},
			MaxAge:         86400,
		}))
	}

	// Liveness probe; reports nothing sensitive, so it sits outside the gate.
	r.Get("/healthz", router.handler.Healthz)

	if router.cfg.Server.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/version-info", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.gate.Middleware())
		r.Get("/", router.handler.VersionInfo)
	})

	return r
}

// rateLimit builds the httprate middleware for the version-info route.
func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.cfg.Server.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		router.cfg.Server.RateLimitReqs,
		router.cfg.Server.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}
