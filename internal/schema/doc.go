// SPDX-License-Identifier: MPL-2.0

// Package schema loads the declarative configuration schema: an ordered list of
// groups, each holding typed items bound to one variable in one env file.
//
// Schema documents may be written in CUE, YAML, JSON, or TOML and are validated
// against an embedded CUE definition before they are decoded. Documents that
// nest the groups under itkconfigschema.configuration are accepted as well.
package schema
