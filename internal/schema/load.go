// SPDX-License-Identifier: MPL-2.0

package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"envsync-cli/pkg/cueutil"
)

// LegacyRoot is the path under which older schema documents nest their groups.
const LegacyRoot = "itkconfigschema.configuration"

//go:embed schema.cue
var schemaCUE string

type (
	documentEnvVar struct {
		File string `json:"file"`
		Name string `json:"name"`
	}

	documentItem struct {
		Name   string         `json:"name"`
		Type   string         `json:"type"`
		EnvVar documentEnvVar `json:"env_var"`
		Value  any            `json:"value,omitempty"`
	}

	documentGroup struct {
		ID          string         `json:"id"`
		Name        string         `json:"name"`
		Description string         `json:"description,omitempty"`
		Items       []documentItem `json:"items"`
	}

	document struct {
		Groups []documentGroup `json:"groups"`
	}
)

// Load reads and parses the schema document at path. The document format is
// taken from the file extension (.cue, .yaml/.yml, .json, .toml).
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema document '%s': %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses a schema document. filename is used for error messages and to
// detect the document format.
func Parse(data []byte, filename string) (*Schema, error) {
	if filename == "" {
		filename = "<input>"
	}

	result, err := cueutil.ParseAndDecodeString[document](schemaCUE, data, "#Schema",
		cueutil.WithFilename(filename),
		cueutil.WithUnwrap(LegacyRoot),
	)
	if err != nil {
		return nil, &FormatError{Path: filename, Reason: trimFilename(err.Error(), filename)}
	}

	return build(result.Value, filename)
}

func build(doc *document, filename string) (*Schema, error) {
	s := &Schema{Groups: make([]Group, 0, len(doc.Groups))}
	groupIDs := make(map[string]bool, len(doc.Groups))

	for gi, dg := range doc.Groups {
		if groupIDs[dg.ID] {
			return nil, &FormatError{Path: filename, Reason: fmt.Sprintf("groups[%d].id: duplicate group id %q", gi, dg.ID)}
		}
		groupIDs[dg.ID] = true

		g := Group{
			ID:          dg.ID,
			Name:        dg.Name,
			Description: dg.Description,
			Items:       make([]Item, 0, len(dg.Items)),
		}

		itemNames := make(map[string]bool, len(dg.Items))
		for ii, di := range dg.Items {
			if itemNames[di.Name] {
				return nil, &FormatError{
					Path:   filename,
					Reason: fmt.Sprintf("groups[%d].items[%d].name: duplicate item name %q in group %q", gi, ii, di.Name, dg.ID),
				}
			}
			itemNames[di.Name] = true

			kind := Kind(di.Type)
			if ok, errs := kind.IsValid(); !ok {
				return nil, &FormatError{Path: filename, Reason: fmt.Sprintf("groups[%d].items[%d].type: %v", gi, ii, errs[0])}
			}

			g.Items = append(g.Items, Item{
				Name:    di.Name,
				Kind:    kind,
				EnvVar:  EnvVar{File: di.EnvVar.File, Name: di.EnvVar.Name},
				Default: defaultValue(kind, di.Value),
			})
		}

		s.Groups = append(s.Groups, g)
	}

	return s, nil
}

// defaultValue converts the decoded document value to kind. An absent value
// becomes the empty value of the kind.
func defaultValue(kind Kind, raw any) Value {
	switch v := raw.(type) {
	case bool:
		return BoolValue(v).As(kind)
	case string:
		return kind.Parse(v)
	default:
		return kind.Parse("")
	}
}

// trimFilename drops the "<filename>: " prefix cueutil puts on its errors,
// since FormatError reports the path separately.
func trimFilename(msg, filename string) string {
	return strings.TrimPrefix(msg, filename+": ")
}
