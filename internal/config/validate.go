// Versiongate - Authorized Version-Info Endpoint
// Copyright 2026 M. Kalinowski (mkalinow)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkalinow/versiongate

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mkalinow/versiongate/internal/gate"
)

// validate is the shared validator instance; validators are safe for
// concurrent use and cache struct metadata.
var validate = validator.New()

// Validate checks the configuration for correctness. It is called once at
// load; any error here prevents process start.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("invalid value for %s (rule %q)", ve.Namespace(), ve.Tag())
		}
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	if c.Updates.Enabled && c.Updates.Timeout <= 0 {
		return errors.New("updates.timeout must be positive when updates are enabled")
	}

	return nil
}

// validateAuth resolves the authorization configuration fully before any
// request is evaluated.
//
// Two states are rejected outright:
//   - a malformed allowlist entry (never skipped silently per request)
//   - neither factor usable: an empty expected header value combined with an
//     empty allowlist must deny every request, and a deployment in that state
//     is a provisioning mistake, so the server refuses to start
//
// A header name without a value (or the reverse) is also rejected: a
// half-configured header factor must never collapse into "any header
// present".
func (c *Config) validateAuth() error {
	if _, err := gate.ParseSubjects(c.Auth.AllowedSubjects); err != nil {
		return err
	}

	headerName := c.Auth.HeaderName != ""
	headerValue := c.Auth.HeaderValue != ""
	if headerName != headerValue {
		return errors.New("auth.header_name and auth.header_value must be set together")
	}
	if !headerName && len(c.Auth.AllowedSubjects) == 0 {
		return errors.New("no authorization factor configured: set auth.header_name/auth.header_value or auth.allowed_subjects")
	}

	return nil
}
