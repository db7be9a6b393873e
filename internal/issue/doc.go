// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into messages a user can act on.
//
// ActionableError carries the failed operation, the file involved and
// remediation hints; the Issue catalog holds longer markdown explanations
// rendered with glamour when the CLI runs in verbose mode.
package issue
