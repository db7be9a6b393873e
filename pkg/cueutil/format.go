// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"
	"github.com/pelletier/go-toml/v2"
)

const (
	// FormatAuto detects the format from the filename extension, defaulting to CUE.
	FormatAuto Format = ""
	// FormatCUE is CUE source.
	FormatCUE Format = "cue"
	// FormatYAML is YAML.
	FormatYAML Format = "yaml"
	// FormatJSON is JSON.
	FormatJSON Format = "json"
	// FormatTOML is TOML.
	FormatTOML Format = "toml"
)

// Format identifies the encoding of a user document.
type Format string

// FormatFromFilename returns the format implied by the extension of name.
// Unknown extensions map to FormatCUE.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatCUE
	}
}

// buildValue compiles data in the given format inside ctx so that the result
// can be unified with a schema compiled in the same context.
func buildValue(ctx *cue.Context, data []byte, filename string, format Format) (cue.Value, error) {
	if format == FormatAuto {
		format = FormatFromFilename(filename)
	}

	switch format {
	case FormatCUE:
		return ctx.CompileBytes(data, cue.Filename(filename)), nil

	case FormatYAML:
		file, err := cueyaml.Extract(filename, data)
		if err != nil {
			return cue.Value{}, fmt.Errorf("%s: %w", filename, err)
		}
		return ctx.BuildFile(file), nil

	case FormatJSON:
		expr, err := cuejson.Extract(filename, data)
		if err != nil {
			return cue.Value{}, fmt.Errorf("%s: %w", filename, err)
		}
		return ctx.BuildExpr(expr), nil

	case FormatTOML:
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return cue.Value{}, fmt.Errorf("%s: %w", filename, err)
		}
		return ctx.Encode(doc), nil

	default:
		return cue.Value{}, fmt.Errorf("%s: unsupported document format %q", filename, format)
	}
}
