// SPDX-License-Identifier: MPL-2.0

// Package config loads envsync's own settings: where the schema document and
// env files live, which container engine restarts services, how the PKI tool
// is invoked and how a save treats items missing from their env file.
//
// Settings are read from config.cue (in ConfigDir or the working directory),
// validated against the embedded config_schema.cue, merged over the defaults
// with Viper and finally overridden by ENVSYNC_* environment variables.
package config
