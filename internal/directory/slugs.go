// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

// Package directory resolves the latest published versions of components
// from upstream directories: the wordpress.org plugin/theme API for
// directory-hosted components and the Envato market API for known premium
// items.
package directory

import "strings"

// specialCaseSlugs maps display names whose directory slug cannot be derived
// mechanically. The directory has no naming standard; this table grows by
// trial and error.
var specialCaseSlugs = map[string]string{
	"Cookie-Banner-Plugin für WordPress – Cookiebot CMP by Usercentrics": "cookiebot",
	"Complianz – GDPR/CCPA Cookie Consent":                               "complianz-gdpr",
	"Yoast SEO":                                                          "wordpress-seo",
	"WP Social Widget":                                                   "wp-social-widget",
	"Smush":                                                              "wp-smushit",
	"Self-Hosted Google Fonts":                                           "selfhost-google-fonts",
	"ShortPixel Image Optimizer":                                         "shortpixel-image-optimiser",
	"WPCode Lite":                                                        "insert-headers-and-footers",
	"Twenty Twenty-Four":                                                 "twentytwentyfour",
}

// exemptSlugs lists premium components that are never hosted on
// wordpress.org; querying the directory for them is pointless.
var exemptSlugs = map[string]struct{}{
	"avada":         {},
	"avada-builder": {},
	"avada-core":    {},
	"avada-child":   {},
	"avadachild":    {},
	"avada_child":   {},
	"avadacore":     {},
	"avada_core":    {},
	"avadabuilder":  {},
	"avada_builder": {},
}

// envatoItems maps component slugs to Envato marketplace item IDs for
// premium components resolvable via the Envato catalog API.
var envatoItems = map[string]string{
	"avada": "2833226",
}

// Slugs generates candidate directory slugs for a component display name.
// A special-case mapping wins outright; otherwise mechanical variants are
// tried in order. Variants that collapse to the same string (the dot-stripped
// form equals the hyphenated one for dot-free names) are emitted once, so a
// miss never costs a duplicate upstream call.
func Slugs(name string) []string {
	if slug, ok := specialCaseSlugs[name]; ok {
		return []string{slug}
	}

	lower := strings.ToLower(name)
	variants := []string{
		strings.ReplaceAll(lower, " ", "-"),
		strings.ReplaceAll(lower, " ", "_"),
		strings.ReplaceAll(lower, " ", ""),
		strings.ReplaceAll(strings.ReplaceAll(lower, " ", "-"), ".", ""),
	}

	seen := make(map[string]struct{}, len(variants))
	slugs := make([]string, 0, len(variants))
	for _, v := range variants {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		slugs = append(slugs, v)
	}
	return slugs
}

// Exempt reports whether a slug belongs to a component known to be absent
// from the wordpress.org directory.
func Exempt(slug string) bool {
	_, ok := exemptSlugs[strings.ToLower(slug)]
	return ok
}

// EnvatoItemID returns the Envato item ID for a component slug, if known.
func EnvatoItemID(slug string) (string, bool) {
	id, ok := envatoItems[strings.ToLower(slug)]
	return id, ok
}
