// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

var (
	// ErrInvalidDocument is wrapped by every *DocumentError.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrDocumentTooLarge is wrapped by *TooLargeError.
	ErrDocumentTooLarge = errors.New("document too large")
)

type (
	// FieldError is one problem reported for a document, located by its
	// JSON-style path ("groups[0].items[2].env_var.name"). Path is empty when
	// CUE could not attribute the problem to a field.
	FieldError struct {
		Path    string
		Message string
	}

	// DocumentError lists the problems CUE found in a document.
	//
	//	itkschema.yaml: groups[0].items[2].type: 2 errors in empty disjunction
	//	config.cue: validation failed:
	//	  save.missing_variable: 3 errors in empty disjunction
	//	  secret.length: invalid value 4 (out of bound >=8)
	DocumentError struct {
		File   string
		Fields []FieldError
		// cause is set when the error did not come from CUE.
		cause error
	}

	// TooLargeError is returned for documents over the configured size limit.
	TooLargeError struct {
		File  string
		Size  int
		Limit int64
	}
)

func (f FieldError) String() string {
	if f.Path == "" {
		return f.Message
	}
	return f.Path + ": " + f.Message
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.File, e.cause)
	}
	if len(e.Fields) == 1 {
		return e.File + ": " + e.Fields[0].String()
	}
	lines := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		lines[i] = f.String()
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.File, strings.Join(lines, "\n  "))
}

// Unwrap matches ErrInvalidDocument and, for non-CUE failures, the original error.
func (e *DocumentError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrInvalidDocument, e.cause}
	}
	return []error{ErrInvalidDocument}
}

// Error implements the error interface.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.File, e.Size, e.Limit)
}

// Unwrap returns ErrDocumentTooLarge.
func (e *TooLargeError) Unwrap() error { return ErrDocumentTooLarge }

// newDocumentError converts err into a *DocumentError for file. It returns
// nil for a nil err.
func newDocumentError(err error, file string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return &DocumentError{File: file, cause: err}
	}

	docErr := &DocumentError{File: file, Fields: make([]FieldError, 0, len(list))}
	for _, e := range list {
		path := jsonPath(cueerrors.Path(e))
		msg := e.Error()
		// CUE sometimes repeats the path at the start of the message.
		if path != "" {
			if rest, ok := strings.CutPrefix(msg, path); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			}
		}
		docErr.Fields = append(docErr.Fields, FieldError{Path: path, Message: msg})
	}
	return docErr
}

// jsonPath renders a CUE path, where list indices are plain numeric
// selectors, as "a.b[0].c".
func jsonPath(selectors []string) string {
	var sb strings.Builder
	for i, sel := range selectors {
		if _, err := strconv.Atoi(sel); err == nil && i > 0 {
			sb.WriteString("[" + sel + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(sel)
	}
	return sb.String()
}

// checkSize rejects data larger than limit.
func checkSize(data []byte, limit int64, file string) error {
	if int64(len(data)) > limit {
		return &TooLargeError{File: file, Size: len(data), Limit: limit}
	}
	return nil
}
