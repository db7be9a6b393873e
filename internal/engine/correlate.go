// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"envsync-cli/internal/envfile"
)

// Load reads every configured env file once and correlates schema items with
// the assignments found. Items bound to the same file key and variable all
// receive the value. When a variable is assigned more than once in a file,
// the last assignment wins. Items whose variable is not found keep their
// schema default and have no provenance.
//
// Load may be called again to discard provenance and re-read the files.
func (e *Engine) Load() error {
	e.resetToDefaults()

	for _, f := range e.files {
		lines, err := envfile.ReadLines(f.Path)
		if err != nil {
			return &IOError{Op: "read", Path: f.Path, Err: unwrapPathError(err)}
		}
		e.correlate(f, lines)
	}

	for _, ent := range e.entries {
		switch {
		case !e.hasFile(ent.Item.EnvVar.File):
			e.logger.Warn("item refers to an unknown env file key",
				"item", ent.Ref, "file", ent.Item.EnvVar.File)
		case ent.Provenance == nil:
			e.logger.Warn("variable not found in env file",
				"item", ent.Ref, "file", ent.Item.EnvVar.File, "variable", ent.Item.EnvVar.Name)
		}
	}

	return nil
}

// correlate scans lines of one file and records value and provenance on every
// matching entry. Line numbers restart at 1 for each file.
func (e *Engine) correlate(f EnvFile, lines []string) {
	for _, a := range envfile.Scan(lines) {
		prov := &Provenance{Key: f.Key, Path: f.Path, Line: a.Line, Original: a.Raw}
		for i := range e.entries {
			ent := &e.entries[i]
			if ent.Item.EnvVar.File != f.Key || ent.Item.EnvVar.Name != a.Name {
				continue
			}
			if ent.Provenance != nil && ent.Provenance.Key == f.Key {
				e.logger.Debug("variable assigned more than once, using the later line",
					"variable", a.Name, "file", f.Path, "previous", ent.Provenance.Line, "line", a.Line)
			}
			ent.Value = a.Value
			ent.OriginalValue = a.Value
			ent.Provenance = prov
			e.logger.Debug("correlated item", "item", ent.Ref, "file", f.Path, "line", a.Line, "value", a.Value)
		}
	}
}

func (e *Engine) hasFile(key string) bool {
	_, ok := e.file(key)
	return ok
}
