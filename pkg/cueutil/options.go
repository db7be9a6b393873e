// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the default maximum document size for parsing (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	// parseOptions holds configuration for CUE parsing.
	parseOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
		format      Format
		unwrapPath  string
	}

	// Option configures parsing behavior.
	Option func(*parseOptions)
)

// defaultOptions returns the default parse options.
func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
		format:      FormatAuto,
	}
}

// WithMaxFileSize sets the maximum allowed document size.
// Default is DefaultMaxFileSize (5MB).
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) {
		o.maxFileSize = size
	}
}

// WithConcrete sets whether all values must be concrete after unification.
// Default is true (require concrete values).
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) {
		o.concrete = concrete
	}
}

// WithFilename sets the filename for error messages. With FormatAuto the
// filename extension also selects the document format.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}

// WithFormat forces the document format instead of detecting it from the filename.
func WithFormat(format Format) Option {
	return func(o *parseOptions) {
		o.format = format
	}
}

// WithUnwrap makes the parser validate the value found at path (e.g.
// "legacy.configuration") instead of the document root, when the document has
// a value at that path. Documents without it are validated from the root.
func WithUnwrap(path string) Option {
	return func(o *parseOptions) {
		o.unwrapPath = path
	}
}
