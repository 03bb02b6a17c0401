// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

// Package config loads and validates versiongate configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//  1. Environment variables
//  2. Optional YAML config file
//  3. Built-in defaults
//
// The authorization settings are resolved fully at load time: every allowlist
// entry is parsed, and a configuration that could never authorize anyone (or
// would authorize everyone) is rejected before the server starts.
package config

import (
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Auth      AuthConfig      `koanf:"auth"`
	Registry  RegistryConfig  `koanf:"registry"`
	Collector CollectorConfig `koanf:"collector"`
	Updates   UpdatesConfig   `koanf:"updates"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout"`

	// MetricsEnabled exposes /metrics (Prometheus) when true.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// CORSOrigins lists allowed CORS origins. Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`

	// Rate limiting for the version-info endpoint.
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// AuthConfig holds the access gate settings.
//
// The gate authorizes a request when the configured header carries the
// expected value (constant-time compare) OR the client address matches one of
// the allowed subjects. Allowed subjects mix bare IP literals and CIDR blocks;
// entries may carry incidental whitespace which is trimmed at load.
type AuthConfig struct {
	HeaderName  string `koanf:"header_name"`
	HeaderValue string `koanf:"header_value"`

	// AllowedSubjects is a list of IPv4/IPv6 literals and CIDR blocks.
	// Accepted from the environment as a comma-separated string.
	AllowedSubjects []string `koanf:"allowed_subjects"`
}

// RegistryConfig locates the component registry manifest.
type RegistryConfig struct {
	// Manifest is the path to the JSON manifest describing installed
	// plugins and themes. Empty disables component enumeration.
	Manifest string `koanf:"manifest"`
}

// CollectorConfig holds version collection settings.
type CollectorConfig struct {
	// VersionFile is the path of the application-core version descriptor.
	// An unreadable or absent file yields an empty application version.
	VersionFile string `koanf:"version_file"`
}

// UpdatesConfig controls optional latest-version enrichment from upstream
// directories (wordpress.org, Envato).
type UpdatesConfig struct {
	Enabled bool `koanf:"enabled"`

	// EnvatoAPIKey enables Envato lookups for premium components.
	EnvatoAPIKey string `koanf:"envato_api_key"`

	// Timeout bounds a single upstream lookup.
	Timeout time.Duration `koanf:"timeout"`

	// RatePerSecond paces enrichment passes; one token admits all lookups
	// of one report.
	RatePerSecond float64 `koanf:"rate_per_second" validate:"min=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8787,
			Timeout:        30 * time.Second,
			MetricsEnabled: true,
			CORSOrigins:    []string{},

			// The endpoint serves an infrequent periodic checker; a low
			// ceiling still leaves generous headroom.
			RateLimitReqs:     60,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Auth: AuthConfig{
			HeaderName:      "",
			HeaderValue:     "",
			AllowedSubjects: []string{},
		},
		Registry: RegistryConfig{
			Manifest: "",
		},
		Collector: CollectorConfig{
			VersionFile: "",
		},
		Updates: UpdatesConfig{
			Enabled:       false,
			EnvatoAPIKey:  "",
			Timeout:       10 * time.Second,
			RatePerSecond: 0.2, // one upstream call per 5s, matching checker etiquette
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
