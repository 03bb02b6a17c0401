// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package api

import (
	"net/http"
	"time"

	"github.com/mkalinow/versiongate/internal/collector"
)

// Handler holds the handler dependencies.
type Handler struct {
	collector *collector.Collector
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(c *collector.Collector) *Handler {
	return &Handler{
		collector: c,
		startTime: time.Now(),
	}
}

// VersionInfo serves the version report. It only runs behind the access
// gate; by the time it executes the request is authorized.
//
// Collection is best-effort: registry unavailability or a missing version
// descriptor degrade individual fields, never the response status.
func (h *Handler) VersionInfo(w http.ResponseWriter, r *http.Request) {
	report := h.collector.Collect(r.Context())
	respondJSON(w, http.StatusOK, report)
}

// healthStatus is the /healthz payload.
type healthStatus struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime_seconds"`
}

// Healthz is the liveness probe. It deliberately reports nothing about
// installed components.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthStatus{
		Status: "ok",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}
