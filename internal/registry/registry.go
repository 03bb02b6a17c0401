// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

// Package registry defines the component-registry client contract consumed
// by the version collector.
//
// The registry itself (the plugin/theme metadata store) is an external
// collaborator. This package only specifies how it is queried, plus a thin
// manifest-file adapter for deployments where the site tooling maintains a
// JSON manifest of installed components.
package registry

import "errors"

// Component describes one installed plugin or theme.
type Component struct {
	Name    string
	Version string
}

// ErrPathNotFound indicates a component whose recorded installed path does
// not exist on disk. The collector skips such entries without aborting
// enumeration.
var ErrPathNotFound = errors.New("registry: installed path not found")

// ErrUnavailable indicates the registry's query capabilities are not loaded.
var ErrUnavailable = errors.New("registry: client unavailable")

// Client is the narrow query interface over the component registry.
//
// Available is the capability probe: when it reports false, the collector
// skips component enumeration entirely and serves a partial report rather
// than failing the request.
type Client interface {
	// Available reports whether the minimum set of query capabilities
	// is loaded.
	Available() bool

	// ActivePlugins returns the identifiers of active plugins in the
	// registry's enumeration order.
	ActivePlugins() ([]string, error)

	// PluginInfo resolves one plugin's metadata by identifier. Returns
	// ErrPathNotFound when the recorded installed path is missing.
	PluginInfo(id string) (Component, error)

	// Themes returns all installed theme records. Installation is already
	// validated by the registry, so there is no existence precondition.
	Themes() ([]Component, error)
}
