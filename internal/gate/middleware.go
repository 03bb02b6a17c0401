// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package gate

import (
	"net/http"

	"github.com/mkalinow/versiongate/internal/metrics"
)

// Middleware returns a chi-compatible middleware enforcing the gate.
// Denied requests receive a minimal 403 with a plain-text body and the
// wrapped handler never runs; the version pipeline cannot execute for an
// unauthorized caller.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Authorize(r.Context(), r.RemoteAddr, r.Header)
			metrics.RecordGateDecision(decision.Authorized, decision.Factor)

			if !decision.Authorized {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("Forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
