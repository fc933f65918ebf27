// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the procio
// command.
//
// Configuration is loaded from a single YAML file specified by:
//   - the PROCIO_CONFIG environment variable, or
//   - the --config flag passed to the command.
//
// There are no fallbacks and no automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides:
// with neither source set, the built-in defaults apply and nothing on
// disk is consulted.
//
// The file holds the supervision defaults (redirection mode, timeout,
// grace period, capture limits) that individual invocations override
// with flags, plus logging preferences.
package config
