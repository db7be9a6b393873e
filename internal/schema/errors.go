// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"errors"
	"fmt"
)

// ErrSchemaFormat is the sentinel for schema documents that cannot be loaded.
var ErrSchemaFormat = errors.New("invalid schema document")

// FormatError is returned when a schema document is malformed or misses a
// required field. It wraps ErrSchemaFormat for errors.Is() compatibility.
type FormatError struct {
	// Path is the schema document path, or "<input>" for in-memory documents.
	Path string
	// Reason describes the problem, including the document path of the field
	// when one is known.
	Reason string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid schema document '%s': %s", e.Path, e.Reason)
}

// Unwrap returns ErrSchemaFormat for errors.Is() compatibility.
func (e *FormatError) Unwrap() error { return ErrSchemaFormat }
