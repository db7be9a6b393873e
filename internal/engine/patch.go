// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"envsync-cli/internal/envfile"
)

// PatchVariable sets the variable name to value on every line that assigns it,
// in every configured env file, regardless of the schema. There is no
// staleness check. Files without a matching line are not written. The report
// lists the written files; it is empty when no file assigns the variable.
//
// Items bound to a patched line get the new value and provenance.
func (e *Engine) PatchVariable(name, value string) (*SaveReport, error) {
	if err := envfile.ValidateValue(name, value); err != nil {
		return nil, err
	}

	report := &SaveReport{}
	for _, f := range e.files {
		lines, err := envfile.ReadLines(f.Path)
		if err != nil {
			return report, &IOError{Op: "read", Path: f.Path, Err: unwrapPathError(err)}
		}

		p := pendingFile{file: f, lines: lines}
		for i, line := range lines {
			rewritten, ok := envfile.ReplaceValue(line, name, value)
			if !ok {
				continue
			}
			p.lines[i] = rewritten
			p.changes = append(p.changes, LineChange{
				Line:     i + 1,
				Variable: name,
				Before:   line,
				After:    rewritten,
			})
		}
		if len(p.changes) == 0 {
			continue
		}

		if err := envfile.WriteLines(f.Path, p.lines); err != nil {
			return report, &IOError{Op: "write", Path: f.Path, Err: unwrapPathError(err)}
		}
		e.commit(p)
		report.Files = append(report.Files, FileChange{Key: f.Key, Path: f.Path, Changes: p.changes})
	}

	if len(report.Files) == 0 {
		e.logger.Warn("variable not found in any env file", "variable", name)
	}
	return report, nil
}
