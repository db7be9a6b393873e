// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the envsync command tree. Every command builds its
// dependencies through App, loads config.cue, the schema and the env files,
// and renders failures with the issue catalog before returning an *ExitError.
package cmd
