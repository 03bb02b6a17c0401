// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mkalinow/versiongate/internal/logging"
)

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}
