// SPDX-License-Identifier: MPL-2.0

// Package container restarts the services that read the env files, through the
// docker or podman CLI.
//
// Both engines share BaseCLIEngine, which builds the CLI arguments and runs
// them through an injectable ExecCommandFunc so tests can replace the binary
// with a helper process.
package container
