// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mkalinow/versiongate/internal/logging"
	"github.com/mkalinow/versiongate/internal/metrics"
)

// Default upstream endpoints.
const (
	defaultWordPressBase = "https://api.wordpress.org"
	defaultEnvatoBase    = "https://api.envato.com"
)

// componentKind selects the wordpress.org API flavor.
type componentKind string

const (
	kindPlugin componentKind = "plugin"
	kindTheme  componentKind = "theme"
)

// Config holds directory client settings.
type Config struct {
	// EnvatoAPIKey enables Envato catalog lookups when non-empty.
	EnvatoAPIKey string

	// Timeout bounds a single upstream HTTP call.
	Timeout time.Duration

	// RatePerSecond paces whole reports, not individual calls: one token
	// admits all lookups of one collection pass. Hosts are quick to ban
	// aggressive pollers; the historical etiquette is one pass per five
	// seconds.
	RatePerSecond float64

	// WordPressBaseURL and EnvatoBaseURL override the upstream hosts.
	// Intended for tests.
	WordPressBaseURL string
	EnvatoBaseURL    string
}

// Client queries upstream directories for latest component versions.
// Outbound calls run through a shared circuit breaker; report-level pacing
// is acquired via Pace before the lookups of one collection pass. Every
// failure is non-fatal to the caller's report.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	limiter    *rate.Limiter
	envatoKey  string
	wpBase     string
	envatoBase string
	logger     zerolog.Logger
}

// NewClient creates a directory client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 0.2
	}
	wpBase := cfg.WordPressBaseURL
	if wpBase == "" {
		wpBase = defaultWordPressBase
	}
	envatoBase := cfg.EnvatoBaseURL
	if envatoBase == "" {
		envatoBase = defaultEnvatoBase
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "directory-upstream",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		envatoKey:  cfg.EnvatoAPIKey,
		wpBase:     wpBase,
		envatoBase: envatoBase,
		logger:     logging.With().Str("component", "directory").Logger(),
	}
}

// Pace acquires the etiquette token for one collection pass. It blocks
// until the pass may proceed or ctx is done; callers that cannot wait skip
// enrichment instead. The individual lookups of an admitted pass are not
// paced further, so one report completes in bounded time.
func (c *Client) Pace(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("directory: pacing wait: %w", err)
	}
	return nil
}

// LatestPluginVersion resolves the latest directory version for a plugin
// display name. Returns an empty string when no candidate slug resolves.
func (c *Client) LatestPluginVersion(ctx context.Context, name string) (string, error) {
	return c.latestVersion(ctx, name, kindPlugin)
}

// LatestThemeVersion resolves the latest version for a theme display name.
// Known premium themes are resolved through the Envato catalog instead of
// the wordpress.org directory.
func (c *Client) LatestThemeVersion(ctx context.Context, name string) (string, error) {
	for _, slug := range Slugs(name) {
		if !Exempt(slug) {
			continue
		}
		itemID, ok := EnvatoItemID(slug)
		if !ok || c.envatoKey == "" {
			// Premium component without a usable Envato mapping:
			// nothing to resolve.
			return "", nil
		}
		return c.envatoVersion(ctx, itemID)
	}
	return c.latestVersion(ctx, name, kindTheme)
}

// latestVersion tries each candidate slug against the wordpress.org info
// API until one resolves.
func (c *Client) latestVersion(ctx context.Context, name string, kind componentKind) (string, error) {
	for _, slug := range Slugs(name) {
		if Exempt(slug) {
			c.logger.Debug().Str("slug", slug).Msg("slug exempt from directory checks")
			continue
		}

		version, err := c.wordpressVersion(ctx, slug, kind)
		if err != nil {
			metrics.RecordDirectoryLookup("wordpress", "error")
			c.logger.Debug().Err(err).Str("slug", slug).Msg("directory lookup failed")
			continue
		}
		if version != "" {
			metrics.RecordDirectoryLookup("wordpress", "hit")
			return version, nil
		}
		metrics.RecordDirectoryLookup("wordpress", "miss")
	}
	return "", nil
}

// infoResponse is the subset of the wordpress.org info API payload we read.
type infoResponse struct {
	Version string `json:"version"`
}

// wordpressVersion queries the wordpress.org plugin or theme info API for
// one slug. An unknown slug yields an empty version, not an error.
func (c *Client) wordpressVersion(ctx context.Context, slug string, kind componentKind) (string, error) {
	var endpoint string
	switch kind {
	case kindPlugin:
		endpoint = fmt.Sprintf("%s/plugins/info/1.2/?action=plugin_information&request[slug]=%s",
			c.wpBase, url.QueryEscape(slug))
	case kindTheme:
		endpoint = fmt.Sprintf("%s/themes/info/1.2/?action=theme_information&request[slug]=%s",
			c.wpBase, url.QueryEscape(slug))
	}

	body, err := c.fetch(ctx, endpoint, nil)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", nil
	}

	info := infoResponse{}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("directory: parse %s info for %q: %w", kind, slug, err)
	}
	return info.Version, nil
}

// envatoVersion queries the Envato catalog item-version API.
func (c *Client) envatoVersion(ctx context.Context, itemID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v3/market/catalog/item-version?id=%s", c.envatoBase, url.QueryEscape(itemID))
	headers := map[string]string{"Authorization": "Bearer " + c.envatoKey}

	body, err := c.fetch(ctx, endpoint, headers)
	if err != nil {
		metrics.RecordDirectoryLookup("envato", "error")
		return "", err
	}
	if len(body) == 0 {
		metrics.RecordDirectoryLookup("envato", "miss")
		return "", nil
	}

	payload := struct {
		ThemeLatestVersion  string `json:"wordpress_theme_latest_version"`
		PluginLatestVersion string `json:"wordpress_plugin_latest_version"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.RecordDirectoryLookup("envato", "error")
		return "", fmt.Errorf("directory: parse envato item %s: %w", itemID, err)
	}

	version := payload.ThemeLatestVersion
	if version == "" {
		version = payload.PluginLatestVersion
	}
	if version != "" {
		metrics.RecordDirectoryLookup("envato", "hit")
	} else {
		metrics.RecordDirectoryLookup("envato", "miss")
	}
	return version, nil
}

// fetch performs one breaker-guarded GET. Pacing happens per collection
// pass in Pace, not here.
func (c *Client) fetch(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("directory: build request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("directory: fetch: %w", err)
		}
		defer resp.Body.Close()

		// Unknown slugs come back as 404; that is a miss, not an
		// upstream failure worth counting against the breaker.
		if resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("directory: unexpected status %d from upstream", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("directory: read body: %w", err)
		}
		return body, nil
	})
}
