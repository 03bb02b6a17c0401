// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

// Package collector assembles the version report served by the endpoint.
//
// Collection is best-effort: the runtime version is always present, the
// application-core version degrades to an empty string, and component
// enumeration is skipped entirely when the registry is unavailable. A single
// unresolvable component is skipped and logged without aborting the loop.
package collector

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkalinow/versiongate/internal/logging"
	"github.com/mkalinow/versiongate/internal/metrics"
	"github.com/mkalinow/versiongate/internal/registry"
)

// Component is one report entry. LatestVersion is only populated when
// update enrichment is enabled; omitempty keeps the wire contract unchanged
// for consumers that predate it.
type Component struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	LatestVersion string `json:"latest_version,omitempty"`
}

// Report is the response payload of the version-info endpoint.
//
// Field names are the externally observed contract of the original PHP-era
// checker and are preserved verbatim: php_version carries the host runtime
// version, wp_version the application-core version. Missing data is an empty
// string or empty list, never null.
type Report struct {
	RuntimeVersion string      `json:"php_version"`
	AppVersion     string      `json:"wp_version"`
	Plugins        []Component `json:"plugins"`
	Themes         []Component `json:"themes"`
}

// Enricher resolves the latest published version of a component from an
// upstream directory. Pace admits one report's worth of lookups; the
// version methods return an empty string (not an error) when no version is
// known.
type Enricher interface {
	Pace(ctx context.Context) error
	LatestPluginVersion(ctx context.Context, name string) (string, error)
	LatestThemeVersion(ctx context.Context, name string) (string, error)
}

// Collector builds version reports. Safe for concurrent use; it holds no
// mutable state and re-queries the registry on every invocation.
type Collector struct {
	reg         registry.Client
	versionFile string
	enricher    Enricher
	logger      zerolog.Logger

	// runtimeVersion is queried once; the host runtime cannot change
	// within a process lifetime.
	runtimeVersion string
}

// Option configures a Collector.
type Option func(*Collector)

// WithEnricher enables latest-version enrichment.
func WithEnricher(e Enricher) Option {
	return func(c *Collector) { c.enricher = e }
}

// WithLogger replaces the collector's logger. Useful in tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Collector) { c.logger = logger }
}

// New creates a Collector. reg may be nil when no registry integration is
// configured; collection then degrades to a partial report.
func New(reg registry.Client, versionFile string, opts ...Option) *Collector {
	c := &Collector{
		reg:            reg,
		versionFile:    versionFile,
		logger:         logging.With().Str("component", "collector").Logger(),
		runtimeVersion: runtime.Version(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect builds a fresh report. It never fails: every degradation path
// yields a partial report with empty fields instead of an error.
func (c *Collector) Collect(ctx context.Context) Report {
	start := time.Now()
	defer func() {
		metrics.CollectDuration.Observe(time.Since(start).Seconds())
	}()

	report := Report{
		RuntimeVersion: c.runtimeVersion,
		AppVersion:     c.appVersion(),
		Plugins:        []Component{},
		Themes:         []Component{},
	}

	if c.reg == nil || !c.reg.Available() {
		c.logger.Warn().Msg("component registry unavailable; serving partial report")
		metrics.RecordRegistrySkip("unavailable")
		return report
	}

	report.Plugins = c.collectPlugins()
	report.Themes = c.collectThemes()

	if c.enricher != nil {
		c.enrich(ctx, &report)
	}

	return report
}

// appVersion reads the application-core version descriptor. Absence is not
// an error condition; the report simply carries an empty string.
func (c *Collector) appVersion() string {
	if c.versionFile == "" {
		return ""
	}
	data, err := os.ReadFile(c.versionFile)
	if err != nil {
		c.logger.Debug().Str("path", c.versionFile).Msg("version descriptor unreadable")
		return ""
	}
	return strings.TrimSpace(string(data))
}

// collectPlugins enumerates active plugins, skipping single unresolvable
// entries. Registry enumeration order is preserved.
func (c *Collector) collectPlugins() []Component {
	ids, err := c.reg.ActivePlugins()
	if err != nil {
		c.logger.Error().Err(err).Msg("plugin enumeration failed")
		metrics.RecordRegistrySkip("query_error")
		return []Component{}
	}

	plugins := make([]Component, 0, len(ids))
	for _, id := range ids {
		info, err := c.reg.PluginInfo(id)
		if err != nil {
			if errors.Is(err, registry.ErrPathNotFound) {
				c.logger.Warn().Str("plugin", id).Msg("installed path missing; skipping plugin")
				metrics.RecordRegistrySkip("path_not_found")
			} else {
				c.logger.Error().Err(err).Str("plugin", id).Msg("plugin lookup failed; skipping plugin")
				metrics.RecordRegistrySkip("query_error")
			}
			continue
		}
		plugins = append(plugins, Component{Name: info.Name, Version: info.Version})
	}
	return plugins
}

// collectThemes enumerates installed themes. The registry already validated
// installation, so there is no per-entry existence check.
func (c *Collector) collectThemes() []Component {
	records, err := c.reg.Themes()
	if err != nil {
		c.logger.Error().Err(err).Msg("theme enumeration failed")
		metrics.RecordRegistrySkip("query_error")
		return []Component{}
	}

	themes := make([]Component, 0, len(records))
	for _, rec := range records {
		themes = append(themes, Component{Name: rec.Name, Version: rec.Version})
	}
	return themes
}

// enrich annotates entries with their latest upstream versions. Lookup
// failures leave the entry unenriched; they never fail the report. Pacing
// is acquired once for the whole report; if it cannot be, the report ships
// without enrichment rather than stalling the request.
func (c *Collector) enrich(ctx context.Context, report *Report) {
	if err := c.enricher.Pace(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("enrichment pacing unavailable; serving report without latest versions")
		return
	}

	for i := range report.Plugins {
		latest, err := c.enricher.LatestPluginVersion(ctx, report.Plugins[i].Name)
		if err != nil {
			c.logger.Debug().Err(err).Str("plugin", report.Plugins[i].Name).Msg("latest-version lookup failed")
			continue
		}
		report.Plugins[i].LatestVersion = latest
	}
	for i := range report.Themes {
		latest, err := c.enricher.LatestThemeVersion(ctx, report.Themes[i].Name)
		if err != nil {
			c.logger.Debug().Err(err).Str("theme", report.Themes[i].Name).Msg("latest-version lookup failed")
			continue
		}
		report.Themes[i].LatestVersion = latest
	}
}
