// SPDX-License-Identifier: MPL-2.0

// Package engine keeps a configuration schema in sync with the env files it
// describes.
//
// Load correlates every schema item with its value in the env files and
// records where the value came from (a Provenance: file, 1-based line number
// and verbatim line text). Callers edit values outside the engine and pass
// them back as Edits. Save re-reads each affected file, checks that every line
// it is about to rewrite still matches its Provenance, substitutes only the
// value portion of those lines, and writes the file back. PatchVariable
// rewrites one variable in every configured file without consulting the
// schema.
//
// The engine is not safe for concurrent use. The staleness check is the only
// guard against other writers.
package engine
