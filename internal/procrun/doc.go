// SPDX-License-Identifier: MPL-2.0

// Package procrun runs an external command and hands each line it prints to a
// callback as soon as the line is complete. It is used for the PKI tool, whose
// progress output is shown while it runs.
package procrun
