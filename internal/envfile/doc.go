// SPDX-License-Identifier: MPL-2.0

// Package envfile reads, parses, and rewrites flat NAME=value environment files
// without disturbing content it does not own.
//
// Parsing is permissive: blank lines, comment-only lines, section headers, and
// anything else that is not an assignment yields "no match" and is never an
// error. Rewriting is line-oriented: only the text right of the first unescaped
// '=' of an assignment line is ever replaced, so leading whitespace, the
// variable name (including an optional "export " prefix), and the line
// terminator survive a rewrite byte-for-byte.
//
// Escapes: a '#' preceded by a backslash does not start a comment, and a '='
// preceded by a backslash does not separate the name from the value. Parsed
// values have `\#` unescaped to '#'; EscapeValue applies the inverse when a new
// value is written.
package envfile
