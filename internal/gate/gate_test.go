// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package gate

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/mkalinow/versiongate/internal/logging"
)

func newTestGate(t *testing.T, cfg Config) *Gate {
	t.Helper()
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return g
}

func TestAuthorize_HeaderMatchRegardlessOfAddress(t *testing.T) {
	g := newTestGate(t, Config{
		HeaderName:      "X-Auth-Key",
		HeaderValue:     "s3cr3t",
		AllowedSubjects: []string{"127.0.0.1"},
	})

	header := http.Header{}
	header.Set("X-Auth-Key", "s3cr3t")

	d := g.Authorize(context.Background(), "8.8.8.8:41234", header)
	if !d.Authorized {
		t.Fatal("expected authorization by header for non-allowlisted address")
	}
	if d.Factor != FactorHeader {
		t.Errorf("expected factor %q, got %q", FactorHeader, d.Factor)
	}
}

func TestAuthorize_HeaderNameCaseInsensitive(t *testing.T) {
	g := newTestGate(t, Config{HeaderName: "X-Auth-Key", HeaderValue: "s3cr3t"})

	header := http.Header{}
	header.Set("x-auth-key", "s3cr3t")

	if d := g.Authorize(context.Background(), "8.8.8.8:1", header); !d.Authorized {
		t.Error("expected case-insensitive header lookup to authorize")
	}
}

func TestAuthorize_WrongHeaderValueDenied(t *testing.T) {
	g := newTestGate(t, Config{HeaderName: "X-Auth-Key", HeaderValue: "s3cr3t"})

	header := http.Header{}
	header.Set("X-Auth-Key", "wrong")

	d := g.Authorize(context.Background(), "8.8.8.8:1", header)
	if d.Authorized {
		t.Fatal("expected denial for wrong header value")
	}
	if d.Factor != "" {
		t.Errorf("expected empty factor on denial, got %q", d.Factor)
	}
}

func TestAuthorize_AddressLiteralRegardlessOfHeader(t *testing.T) {
	g := newTestGate(t, Config{
		HeaderName:      "X-Auth-Key",
		HeaderValue:     "s3cr3t",
		AllowedSubjects: []string{"127.0.0.1", "10.0.0.0/24"},
	})

	d := g.Authorize(context.Background(), "127.0.0.1:55000", http.Header{})
	if !d.Authorized {
		t.Fatal("expected authorization by address literal without header")
	}
	if d.Factor != FactorAddress {
		t.Errorf("expected factor %q, got %q", FactorAddress, d.Factor)
	}
}

func TestAuthorize_CIDRContainment(t *testing.T) {
	g := newTestGate(t, Config{
		HeaderName:      "X-Auth-Key",
		HeaderValue:     "s3cr3t",
		AllowedSubjects: []string{"127.0.0.1", "10.0.0.0/24"},
	})

	tests := []struct {
		name       string
		remoteAddr string
		want       bool
	}{
		{"inside CIDR", "10.0.0.5:9999", true},
		{"CIDR network address", "10.0.0.0:1", true},
		{"CIDR broadcast address", "10.0.0.255:1", true},
		{"outside CIDR", "10.0.1.5:9999", false},
		{"unrelated address", "8.8.8.8:53", false},
		// Substring equality against "10.0.0.0/24" must not authorize.
		{"prefix-string lookalike", "10.0:1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Authorize(context.Background(), tt.remoteAddr, http.Header{})
			if d.Authorized != tt.want {
				t.Errorf("Authorize(%q) = %v, want %v", tt.remoteAddr, d.Authorized, tt.want)
			}
		})
	}
}

func TestAuthorize_IPv6(t *testing.T) {
	g := newTestGate(t, Config{AllowedSubjects: []string{"2001:db8::/32", "::1"}})

	if d := g.Authorize(context.Background(), "[2001:db8::42]:8080", http.Header{}); !d.Authorized {
		t.Error("expected IPv6 CIDR containment to authorize")
	}
	if d := g.Authorize(context.Background(), "[::1]:8080", http.Header{}); !d.Authorized {
		t.Error("expected IPv6 literal to authorize")
	}
	if d := g.Authorize(context.Background(), "[2001:db9::1]:8080", http.Header{}); d.Authorized {
		t.Error("expected IPv6 address outside prefix to be denied")
	}
}

func TestAuthorize_BareAddressWithoutPort(t *testing.T) {
	// A fronting listener may hand over a bare address without a port.
	g := newTestGate(t, Config{AllowedSubjects: []string{"10.0.0.0/24"}})

	if d := g.Authorize(context.Background(), "10.0.0.7", http.Header{}); !d.Authorized {
		t.Error("expected bare address to authorize")
	}
}

func TestAuthorize_EmptySecretNeverMatchesByHeader(t *testing.T) {
	// The header factor is disabled outright when no secret is configured;
	// an empty expected value must not collapse into "any header present".
	g := newTestGate(t, Config{
		HeaderName:      "X-Auth-Key",
		HeaderValue:     "",
		AllowedSubjects: []string{"127.0.0.1"},
	})

	header := http.Header{}
	header.Set("X-Auth-Key", "")

	if d := g.Authorize(context.Background(), "8.8.8.8:1", header); d.Authorized {
		t.Error("expected denial when no secret is configured")
	}
}

func TestNew_NoFactorsRejected(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for configuration with no authorization factor")
	}
}

func TestNew_MalformedEntryRejected(t *testing.T) {
	malformed := []string{"not-an-ip", "10.0.0.0/99", "300.1.2.3", "10.0.0./24"}
	for _, entry := range malformed {
		if _, err := New(Config{AllowedSubjects: []string{entry}}); err == nil {
			t.Errorf("expected error for malformed allowlist entry %q", entry)
		}
	}
}

func TestParseSubjects_TrimsWhitespace(t *testing.T) {
	subjects, err := ParseSubjects([]string{" 127.0.0.1 ", "\n10.0.0.0/24\n", ""})
	if err != nil {
		t.Fatalf("ParseSubjects() failed: %v", err)
	}
	if len(subjects) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(subjects))
	}
}

func TestAudit_NoRawAddressOrSecretInLog(t *testing.T) {
	var buf bytes.Buffer
	g := newTestGate(t, Config{
		HeaderName:      "X-Auth-Key",
		HeaderValue:     "super-secret-value",
		AllowedSubjects: []string{"127.0.0.1"},
	})
	g.SetLogger(logging.NewTestLogger(&buf))

	header := http.Header{}
	header.Set("X-Auth-Key", "super-secret-value")
	g.Authorize(context.Background(), "203.0.113.77:1234", header)
	g.Authorize(context.Background(), "203.0.113.78:1234", http.Header{})

	out := buf.String()
	if out == "" {
		t.Fatal("expected audit log output")
	}
	if strings.Contains(out, "203.0.113.77") || strings.Contains(out, "203.0.113.78") {
		t.Error("audit log contains a raw client address")
	}
	if strings.Contains(out, "super-secret-value") {
		t.Error("audit log contains the shared secret")
	}
	if !strings.Contains(out, "authorized") || !strings.Contains(out, "denied") {
		t.Error("audit log missing decision outcomes")
	}
}

func TestAudit_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	g := newTestGate(t, Config{AllowedSubjects: []string{"127.0.0.1"}})
	g.SetLogger(logging.NewTestLogger(&buf))

	ctx := logging.ContextWithRequestID(context.Background(), "req-42-abc")
	g.Authorize(ctx, "127.0.0.1:5000", http.Header{})

	if out := buf.String(); !strings.Contains(out, "req-42-abc") {
		t.Errorf("audit log missing request ID: %s", out)
	}
}
