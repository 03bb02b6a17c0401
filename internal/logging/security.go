// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package logging

import (
	"crypto/rand"
	"encoding/hex"
	"net"

	"golang.org/x/crypto/blake2b"
)

// addrHashKey is a per-process random key for address anonymization.
// Using a keyed hash means log digests cannot be reversed by hashing the
// IPv4 space offline, and digests are only correlatable within one process
// lifetime.
var addrHashKey = func() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("logging: cannot read random key: " + err.Error())
	}
	return key
}()

// AnonymizeAddr returns a stable, non-reversible identifier for a client
// address, suitable for audit logs. The raw address never appears in output.
// Port suffixes are stripped before hashing so "1.2.3.4:5678" and
// "1.2.3.4:9999" map to the same identifier.
func AnonymizeAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return "addr-unknown"
	}
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}

	h, err := blake2b.New256(addrHashKey)
	if err != nil {
		return "addr-unknown"
	}
	h.Write([]byte(host))
	sum := h.Sum(nil)
	return "addr-" + hex.EncodeToString(sum[:8])
}

// SanitizeSecret masks a secret value, showing only first and last 4
// characters. Intended for startup diagnostics; request-path logs must not
// include secrets at all.
// Example: "s3cr3t-value-1234" -> "s3cr...1234"
func SanitizeSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
