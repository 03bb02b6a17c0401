// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package registry

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// manifest mirrors the on-disk JSON manifest maintained by the site tooling.
//
//	{
//	  "plugins": [
//	    {"id": "wordpress-seo", "name": "Yoast SEO", "version": "21.0",
//	     "path": "/var/www/wp-content/plugins/wordpress-seo"}
//	  ],
//	  "themes": [
//	    {"name": "Twenty Twenty-Four", "version": "1.1"}
//	  ]
//	}
type manifest struct {
	Plugins []manifestPlugin `json:"plugins"`
	Themes  []manifestTheme  `json:"themes"`
}

type manifestPlugin struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

type manifestTheme struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ManifestClient implements Client over a JSON manifest file.
//
// The file is re-read on every query. The endpoint is hit infrequently by a
// periodic checker, and staleness would defeat its purpose, so there is no
// memoization.
type ManifestClient struct {
	path string

	// statFunc checks plugin install paths; overridable in tests.
	statFunc func(string) error
}

// NewManifestClient creates a manifest-backed registry client. An empty path
// yields a client whose Available() is false.
func NewManifestClient(path string) *ManifestClient {
	return &ManifestClient{
		path: path,
		statFunc: func(p string) error {
			_, err := os.Stat(p)
			return err
		},
	}
}

// Available reports whether the manifest file can be read.
func (c *ManifestClient) Available() bool {
	if c.path == "" {
		return false
	}
	_, err := os.Stat(c.path)
	return err == nil
}

// ActivePlugins returns the manifest's plugin identifiers in file order.
func (c *ManifestClient) ActivePlugins() ([]string, error) {
	m, err := c.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(m.Plugins))
	for _, p := range m.Plugins {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// PluginInfo resolves one plugin by identifier, verifying its installed path.
func (c *ManifestClient) PluginInfo(id string) (Component, error) {
	m, err := c.load()
	if err != nil {
		return Component{}, err
	}
	for _, p := range m.Plugins {
		if p.ID != id {
			continue
		}
		if p.Path != "" {
			if err := c.statFunc(p.Path); err != nil {
				return Component{}, fmt.Errorf("%w: %s", ErrPathNotFound, p.Path)
			}
		}
		return Component{Name: p.Name, Version: p.Version}, nil
	}
	return Component{}, fmt.Errorf("registry: unknown plugin %q", id)
}

// Themes returns all theme records in file order.
func (c *ManifestClient) Themes() ([]Component, error) {
	m, err := c.load()
	if err != nil {
		return nil, err
	}
	themes := make([]Component, 0, len(m.Themes))
	for _, t := range m.Themes {
		themes = append(themes, Component{Name: t.Name, Version: t.Version})
	}
	return themes, nil
}

func (c *ManifestClient) load() (*manifest, error) {
	if c.path == "" {
		return nil, ErrUnavailable
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("registry: read manifest: %w", err)
	}
	m := &manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("registry: parse manifest: %w", err)
	}
	return m, nil
}
