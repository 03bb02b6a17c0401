// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

// Package gate implements the dual-factor access gate guarding the
// version-info endpoint.
//
// A request is authorized when either factor passes:
//
//   - the configured header carries the expected shared secret
//     (constant-time comparison), or
//   - the client address matches an allowlist entry (bare IP literal or
//     CIDR block, tested with true prefix containment).
//
// Both factors are resolved from immutable configuration at construction
// time; a Gate is safe for unsynchronized concurrent use.
package gate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkalinow/versiongate/internal/logging"
)

// Authorization factors reported in Decision and audit logs.
const (
	FactorHeader  = "header"
	FactorAddress = "address"
)

// ErrNoFactors indicates a configuration that could never authorize anyone.
var ErrNoFactors = errors.New("gate: no authorization factor configured (empty header secret and empty allowlist)")

// Config holds the externally supplied gate configuration.
type Config struct {
	// HeaderName is the request header checked for the shared secret.
	HeaderName string

	// HeaderValue is the expected shared secret. An empty value disables
	// the header factor entirely; it never matches an empty header.
	HeaderValue string

	// AllowedSubjects mixes bare IP literals and CIDR blocks.
	AllowedSubjects []string
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Authorized bool

	// Factor names the factor that granted access ("header" or "address");
	// empty on denial.
	Factor string
}

// Gate evaluates requests against the configured factors.
type Gate struct {
	headerName  string
	headerValue []byte
	subjects    []netip.Prefix
	logger      zerolog.Logger
}

// New builds a Gate from configuration.
//
// Malformed allowlist entries are rejected here, at configuration-load time,
// rather than silently skipped per request. A configuration with neither a
// usable header factor nor any allowlist entry is rejected outright: an
// empty expected value combined with an empty allowlist must deny
// unconditionally, and refusing to start makes that state visible.
func New(cfg Config) (*Gate, error) {
	subjects, err := ParseSubjects(cfg.AllowedSubjects)
	if err != nil {
		return nil, err
	}

	headerUsable := cfg.HeaderName != "" && cfg.HeaderValue != ""
	if !headerUsable && len(subjects) == 0 {
		return nil, ErrNoFactors
	}

	g := &Gate{
		subjects: subjects,
		logger:   logging.With().Str("component", "gate").Logger(),
	}
	if headerUsable {
		g.headerName = cfg.HeaderName
		g.headerValue = []byte(cfg.HeaderValue)
	}
	return g, nil
}

// SetLogger replaces the gate's audit logger. Useful in tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (g *Gate) SetLogger(logger zerolog.Logger) {
	g.logger = logger.With().Str("component", "gate").Logger()
}

// ParseSubjects parses allowlist entries into prefixes. Bare IP literals
// become single-address prefixes, so containment testing serves both forms.
func ParseSubjects(entries []string) ([]netip.Prefix, error) {
	subjects := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("gate: invalid CIDR allowlist entry %q: %w", entry, err)
			}
			subjects = append(subjects, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("gate: invalid IP allowlist entry %q: %w", entry, err)
		}
		addr = addr.Unmap()
		subjects = append(subjects, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return subjects, nil
}

// Authorize evaluates a request. remoteAddr is the client address as seen by
// the server, with or without a port suffix. The returned decision is also
// written to the audit log with an anonymized client identifier and the
// request ID carried by ctx; raw addresses and header values never reach
// the log.
func (g *Gate) Authorize(ctx context.Context, remoteAddr string, header http.Header) Decision {
	d := g.evaluate(remoteAddr, header)
	g.audit(ctx, remoteAddr, d)
	return d
}

func (g *Gate) evaluate(remoteAddr string, header http.Header) Decision {
	if g.matchHeader(header) {
		return Decision{Authorized: true, Factor: FactorHeader}
	}
	if g.matchAddress(remoteAddr) {
		return Decision{Authorized: true, Factor: FactorAddress}
	}
	return Decision{}
}

// matchHeader performs the shared-secret comparison. http.Header lookup is
// case-insensitive via canonicalization. The comparison is constant-time to
// avoid timing side-channels on the secret.
func (g *Gate) matchHeader(header http.Header) bool {
	if len(g.headerValue) == 0 {
		return false
	}
	got := header.Get(g.headerName)
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), g.headerValue) == 1
}

// matchAddress tests the client address against every allowlist prefix.
func (g *Gate) matchAddress(remoteAddr string) bool {
	addr, ok := parseRemoteAddr(remoteAddr)
	if !ok {
		return false
	}
	for _, prefix := range g.subjects {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseRemoteAddr extracts the client IP from "host:port" or a bare address.
func parseRemoteAddr(remoteAddr string) (netip.Addr, bool) {
	if remoteAddr == "" {
		return netip.Addr{}, false
	}
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// audit writes one anonymized log entry per decision.
func (g *Gate) audit(ctx context.Context, remoteAddr string, d Decision) {
	event := g.logger.Info()
	outcome := "denied"
	if d.Authorized {
		outcome = "authorized"
	} else {
		event = g.logger.Warn()
	}

	event.
		Str("event", "access_decision").
		Str("outcome", outcome).
		Str("client", logging.AnonymizeAddr(remoteAddr))
	if id := logging.RequestIDFromContext(ctx); id != "" {
		event.Str("request_id", id)
	}
	if d.Factor != "" {
		event.Str("factor", d.Factor)
	}
	event.Msg("access gate decision")
}
