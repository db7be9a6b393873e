// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	commentChar   = '#'
	separatorChar = '='
	escapeChar    = '\\'

	// exportPrefix is accepted before a variable name and preserved on rewrite.
	exportPrefix = "export "
)

// ErrInvalidValue is the sentinel error wrapped by InvalidValueError.
var ErrInvalidValue = errors.New("invalid env value")

type (
	// Assignment is a parsed NAME=value pair. Name and Value are trimmed of
	// surrounding whitespace; Value has escaped '#' characters unescaped.
	Assignment struct {
		Name  string
		Value string
	}

	// Entry is an assignment located inside a file: its 1-based line number and
	// the verbatim line text including the line terminator.
	Entry struct {
		Assignment
		Line int
		Raw  string
	}

	// InvalidValueError is returned when a value would not read back unchanged
	// from a single line. It wraps ErrInvalidValue for errors.Is() compatibility.
	InvalidValueError struct {
		Name   string
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("value for %s %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidValue for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// ValidateValue reports whether value can be written as the value of name and
// parsed back as the same string. Line breaks would split the line, and
// surrounding whitespace is trimmed by ParseLine.
func ValidateValue(name, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return &InvalidValueError{Name: name, Value: value, Reason: "must not contain line breaks"}
	}
	if strings.TrimSpace(value) != value {
		return &InvalidValueError{Name: name, Value: value, Reason: "must not start or end with whitespace"}
	}
	return nil
}

// ParseLine tokenizes one raw line. It strips everything from the first
// unescaped '#', trims the remainder, and splits it on the first unescaped '='.
// The second return value is false when the line is not an assignment with a
// non-empty name.
func ParseLine(line string) (Assignment, bool) {
	content := strings.TrimSpace(StripComment(line))

	eq := indexUnescaped(content, separatorChar)
	if eq < 0 {
		return Assignment{}, false
	}

	name := strings.TrimSpace(content[:eq])
	if strings.HasPrefix(name, exportPrefix) {
		name = strings.TrimSpace(strings.TrimPrefix(name, exportPrefix))
	}
	if name == "" {
		return Assignment{}, false
	}

	value := strings.TrimSpace(content[eq+1:])

	return Assignment{Name: name, Value: unescapeValue(value)}, true
}

// StripComment returns line with everything from the first unescaped '#'
// removed. The line terminator, if any, is removed together with the comment.
func StripComment(line string) string {
	if idx := indexUnescaped(line, commentChar); idx >= 0 {
		return line[:idx]
	}
	return line
}

// ReplaceValue rewrites the value portion of line when line assigns name.
// Everything up to and including the first unescaped '=' is kept verbatim, the
// remainder of the line content (value and any trailing comment) is replaced
// with the escaped value, and the original line terminator is re-appended.
// The second return value is false, with line returned unchanged, when line
// does not assign name.
func ReplaceValue(line, name, value string) (string, bool) {
	body, terminator := splitTerminator(line)

	a, ok := ParseLine(body)
	if !ok || a.Name != name {
		return line, false
	}

	eq := indexUnescaped(body, separatorChar)
	if eq < 0 {
		return line, false
	}

	return body[:eq+1] + EscapeValue(value) + terminator, true
}

// EscapeValue escapes characters that would otherwise start a comment.
func EscapeValue(value string) string {
	return strings.ReplaceAll(value, string(commentChar), string(escapeChar)+string(commentChar))
}

// Scan returns every assignment in lines in file order, numbering lines from 1.
func Scan(lines []string) []Entry {
	var entries []Entry
	for i, raw := range lines {
		a, ok := ParseLine(raw)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Assignment: a, Line: i + 1, Raw: raw})
	}
	return entries
}

// indexUnescaped returns the index of the first c in s that is not directly
// preceded by a backslash, or -1.
func indexUnescaped(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == escapeChar && i+1 < len(s) && s[i+1] == c {
			i++
			continue
		}
		if s[i] == c {
			return i
		}
	}
	return -1
}

func unescapeValue(value string) string {
	return strings.ReplaceAll(value, string(escapeChar)+string(commentChar), string(commentChar))
}

// splitTerminator separates a trailing "\n" or "\r\n" from line.
func splitTerminator(line string) (body, terminator string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}
