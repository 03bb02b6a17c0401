// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package directory

import (
	"reflect"
	"testing"
)

func TestSlugs_SpecialCases(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Yoast SEO", "wordpress-seo"},
		{"Smush", "wp-smushit"},
		{"Complianz – GDPR/CCPA Cookie Consent", "complianz-gdpr"},
		{"WPCode Lite", "insert-headers-and-footers"},
		{"Twenty Twenty-Four", "twentytwentyfour"},
	}
	for _, tt := range tests {
		got := Slugs(tt.name)
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("Slugs(%q) = %v, want [%s]", tt.name, got, tt.want)
		}
	}
}

func TestSlugs_MechanicalVariants(t *testing.T) {
	// The dot-stripped variant equals the hyphenated one for a dot-free
	// name and must not be emitted twice.
	got := Slugs("Contact Form 7")
	want := []string{
		"contact-form-7",
		"contact_form_7",
		"contactform7",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Slugs = %v, want %v", got, want)
	}
}

func TestSlugs_SingleWordCollapses(t *testing.T) {
	got := Slugs("Akismet")
	if len(got) != 1 || got[0] != "akismet" {
		t.Errorf("Slugs = %v, want [akismet]", got)
	}
}

func TestSlugs_DotStripping(t *testing.T) {
	got := Slugs("Akismet 5.0")
	if got[3] != "akismet-50" {
		t.Errorf("dot-stripped variant = %q, want akismet-50", got[3])
	}
}

func TestExempt(t *testing.T) {
	for _, slug := range []string{"avada", "Avada", "avada-builder", "avada_core", "avadachild"} {
		if !Exempt(slug) {
			t.Errorf("Exempt(%q) = false, want true", slug)
		}
	}
	for _, slug := range []string{"wordpress-seo", "twentytwentyfour", ""} {
		if Exempt(slug) {
			t.Errorf("Exempt(%q) = true, want false", slug)
		}
	}
}

func TestEnvatoItemID(t *testing.T) {
	id, ok := EnvatoItemID("avada")
	if !ok || id != "2833226" {
		t.Errorf("EnvatoItemID(avada) = %q, %v", id, ok)
	}
	if _, ok := EnvatoItemID("avada-builder"); ok {
		t.Error("avada-builder has no catalog item")
	}
}
