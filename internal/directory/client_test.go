// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkalinow/versiongate/internal/collector"
)

var _ collector.Enricher = (*Client)(nil)

// fastConfig disables outbound pacing so tests do not sleep.
func fastConfig(wpBase, envatoBase string) Config {
	return Config{
		Timeout:          2 * time.Second,
		RatePerSecond:    1000,
		WordPressBaseURL: wpBase,
		EnvatoBaseURL:    envatoBase,
	}
}

func TestLatestPluginVersion_FirstSlugResolves(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/plugins/info/1.2/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("request[slug]") != "wordpress-seo" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"version":"21.5","name":"Yoast SEO"}`))
	}))
	defer upstream.Close()

	c := NewClient(fastConfig(upstream.URL, ""))
	version, err := c.LatestPluginVersion(context.Background(), "Yoast SEO")
	if err != nil {
		t.Fatalf("LatestPluginVersion: %v", err)
	}
	if version != "21.5" {
		t.Errorf("version = %q, want 21.5", version)
	}
}

func TestLatestPluginVersion_SlugFallback(t *testing.T) {
	var queried []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := r.URL.Query().Get("request[slug]")
		queried = append(queried, slug)
		if slug != "contactform7" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"version":"5.9"}`))
	}))
	defer upstream.Close()

	c := NewClient(fastConfig(upstream.URL, ""))
	version, err := c.LatestPluginVersion(context.Background(), "Contact Form 7")
	if err != nil {
		t.Fatalf("LatestPluginVersion: %v", err)
	}
	if version != "5.9" {
		t.Errorf("version = %q, want 5.9", version)
	}
	// Hyphen and underscore variants miss before the concatenated one hits.
	if len(queried) != 3 {
		t.Errorf("expected 3 upstream queries, got %v", queried)
	}
}

func TestLatestPluginVersion_NoSlugResolves(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	c := NewClient(fastConfig(upstream.URL, ""))
	version, err := c.LatestPluginVersion(context.Background(), "Completely Unknown Plugin")
	if err != nil {
		t.Fatalf("LatestPluginVersion: %v", err)
	}
	if version != "" {
		t.Errorf("version = %q, want empty for unknown component", version)
	}
}

func TestLatestThemeVersion_DirectoryPath(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/themes/info/1.2/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"version":"1.2"}`))
	}))
	defer upstream.Close()

	c := NewClient(fastConfig(upstream.URL, ""))
	version, err := c.LatestThemeVersion(context.Background(), "Twenty Twenty-Four")
	if err != nil {
		t.Fatalf("LatestThemeVersion: %v", err)
	}
	if version != "1.2" {
		t.Errorf("version = %q, want 1.2", version)
	}
}

func TestLatestThemeVersion_PremiumViaEnvato(t *testing.T) {
	var wordpressHits int
	wpUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wordpressHits++
		http.NotFound(w, r)
	}))
	defer wpUpstream.Close()

	envato := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if r.URL.Path != "/v3/market/catalog/item-version" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("id") != "2833226" {
			t.Errorf("unexpected item id %s", r.URL.Query().Get("id"))
		}
		w.Write([]byte(`{"wordpress_theme_latest_version":"7.11.8"}`))
	}))
	defer envato.Close()

	cfg := fastConfig(wpUpstream.URL, envato.URL)
	cfg.EnvatoAPIKey = "test-key"
	c := NewClient(cfg)

	version, err := c.LatestThemeVersion(context.Background(), "Avada")
	if err != nil {
		t.Fatalf("LatestThemeVersion: %v", err)
	}
	if version != "7.11.8" {
		t.Errorf("version = %q, want 7.11.8", version)
	}
	if wordpressHits != 0 {
		t.Errorf("premium theme must never hit the wordpress.org directory, got %d hits", wordpressHits)
	}
}

func TestLatestThemeVersion_PremiumWithoutKey(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected")
	}))
	defer upstream.Close()

	c := NewClient(fastConfig(upstream.URL, upstream.URL))
	version, err := c.LatestThemeVersion(context.Background(), "Avada")
	if err != nil {
		t.Fatalf("LatestThemeVersion: %v", err)
	}
	if version != "" {
		t.Errorf("version = %q, want empty without an Envato key", version)
	}
}

func TestPace_AdmitsOnePassThenWaits(t *testing.T) {
	c := NewClient(Config{Timeout: time.Second, RatePerSecond: 0.2})

	if err := c.Pace(context.Background()); err != nil {
		t.Fatalf("first pass must be admitted immediately: %v", err)
	}

	// The next pass would wait out the etiquette interval; a done context
	// surfaces that instead of blocking the test.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Pace(ctx); err == nil {
		t.Error("second pass must wait for the etiquette interval")
	}
}

func TestLookupsWithinPassNotIndividuallyPaced(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"1.0"}`))
	}))
	defer upstream.Close()

	cfg := fastConfig(upstream.URL, "")
	cfg.RatePerSecond = 0.2
	c := NewClient(cfg)

	if err := c.Pace(context.Background()); err != nil {
		t.Fatalf("Pace: %v", err)
	}

	// At 0.2 tokens/s a per-call limiter would need ten seconds for the
	// remaining two lookups; an admitted pass must finish immediately.
	start := time.Now()
	for _, name := range []string{"Yoast SEO", "Smush", "WPCode Lite"} {
		if _, err := c.LatestPluginVersion(context.Background(), name); err != nil {
			t.Fatalf("LatestPluginVersion(%q): %v", name, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("lookups within one pass took %v", elapsed)
	}
}

func TestBreaker_OpensOnConsecutiveFailures(t *testing.T) {
	var hits int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	c := NewClient(fastConfig(upstream.URL, ""))

	// Two lookups with three slug variants each produce six failing
	// calls; the breaker opens after the fifth and absorbs the rest.
	for i := 0; i < 2; i++ {
		if _, err := c.LatestPluginVersion(context.Background(), "Contact Form 7"); err != nil {
			t.Fatalf("lookup must degrade, not fail: %v", err)
		}
	}
	if hits != 5 {
		t.Errorf("upstream hits = %d, want 5 before the breaker opens", hits)
	}
}
