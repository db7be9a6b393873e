// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult contains the result of a successful parse.
type ParseResult[T any] struct {
	// Value is the decoded Go struct.
	Value *T

	// Unified is the unified CUE value, for callers that need to inspect
	// fields the Go struct does not carry.
	Unified cue.Value

	// Unwrapped reports whether the document was validated from the
	// WithUnwrap path rather than from its root.
	Unwrapped bool
}

// ParseAndDecode builds data in its document format, unifies it with the
// definition at schemaPath inside schema, validates the result, and decodes it
// into T.
//
// Errors from the user document are returned as *DocumentError, so they
// carry the filename and the document path of the offending field.
// Errors in the embedded schema itself are reported as internal errors.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := checkSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	// Schema and document must share a context to be unified.
	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	userValue, err := buildValue(ctx, data, filename, options.format)
	if err != nil {
		return nil, err
	}
	if userValue.Err() != nil {
		return nil, newDocumentError(userValue.Err(), filename)
	}

	unwrapped := false
	if options.unwrapPath != "" {
		if inner := userValue.LookupPath(cue.ParsePath(options.unwrapPath)); inner.Exists() {
			userValue = inner
			unwrapped = true
		}
	}

	unified := schemaRoot.Unify(userValue)

	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return nil, newDocumentError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, newDocumentError(err, filename)
	}

	return &ParseResult[T]{
		Value:     &result,
		Unified:   unified,
		Unwrapped: unwrapped,
	}, nil
}

// ParseAndDecodeString is ParseAndDecode with the schema given as a string.
func ParseAndDecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	return ParseAndDecode[T]([]byte(schema), data, schemaPath, opts...)
}
