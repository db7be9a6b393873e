// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"strings"

	"envsync-cli/internal/envfile"
)

type (
	// LineChange describes one rewritten or appended line.
	LineChange struct {
		// Line is the 1-based line number in the written file.
		Line     int
		Variable string
		// Items lists the items whose edit produced the line.
		Items []ItemRef
		// Before is empty for appended lines.
		Before   string
		After    string
		Appended bool
	}

	// FileChange describes the changes to one env file.
	FileChange struct {
		Key     string
		Path    string
		Changes []LineChange
	}

	// SaveReport lists the files a save wrote (or, for Plan, would write) in
	// env file order. Skipped lists changed items that were left unwritten
	// under MissingVariableSkip.
	SaveReport struct {
		Files   []FileChange
		Skipped []ItemRef
	}

	// pendingFile is a prepared rewrite of one env file.
	pendingFile struct {
		file    EnvFile
		lines   []string
		changes []LineChange
		// terminated is the 1-based line that received a terminator so a
		// variable could be appended after it, or 0.
		terminated int
	}
)

// Plan validates edits against the env files as they are on disk now and
// returns the changes Save would make, without writing anything.
func (e *Engine) Plan(edits Edits) (*SaveReport, error) {
	pending, skipped, err := e.prepare(edits)
	if err != nil {
		return nil, err
	}
	return newReport(pending, skipped), nil
}

// Save writes every dirty edit back to its env file.
//
// Each affected file is re-read. Every line to be rewritten must still equal
// the text recorded in its item's Provenance, otherwise Save returns a
// *StaleFileError and writes nothing. Only the value portion of a line is
// replaced; leading whitespace, the variable name, and the line terminator are
// kept, and all other lines are written back verbatim.
//
// All files are validated before the first write. Files are then written one
// at a time, each atomically. If a write fails, files written before it stay
// written; the returned report lists them alongside the *IOError.
//
// After a file is written, the provenance and stored value of the items on
// the rewritten lines are updated, so later saves check against the new text.
func (e *Engine) Save(edits Edits) (*SaveReport, error) {
	pending, skipped, err := e.prepare(edits)
	if err != nil {
		return nil, err
	}

	written := make([]pendingFile, 0, len(pending))
	for _, p := range pending {
		if err := envfile.WriteLines(p.file.Path, p.lines); err != nil {
			return newReport(written, skipped), &IOError{Op: "write", Path: p.file.Path, Err: unwrapPathError(err)}
		}
		written = append(written, p)
		e.commit(p)
		e.logger.Info("wrote env file", "file", p.file.Path, "changes", len(p.changes))
	}

	return newReport(written, skipped), nil
}

// prepare re-reads every file that has a dirty edit and builds its new line
// list. It returns an error if any edit cannot be applied.
func (e *Engine) prepare(edits Edits) ([]pendingFile, []ItemRef, error) {
	for ref, v := range edits {
		if _, ok := e.index[ref]; !ok {
			return nil, nil, &UnknownItemError{Item: ref}
		}
		if err := envfile.ValidateValue(ref.String(), v.String()); err != nil {
			return nil, nil, err
		}
	}

	changed := e.Changed(edits)
	if len(changed) == 0 {
		return nil, nil, nil
	}

	byFile := make(map[string][]ItemRef)
	var skipped []ItemRef
	for _, ref := range changed {
		ent := e.entries[e.index[ref]]
		key := ent.Item.EnvVar.File
		if !e.hasFile(key) {
			if e.missing == MissingVariableSkip {
				e.logger.Warn("skipping item bound to an unknown env file key", "item", ref, "file", key)
				skipped = append(skipped, ref)
				continue
			}
			return nil, nil, &MissingVariableError{Item: ref, Key: key, Variable: ent.Item.EnvVar.Name}
		}
		byFile[key] = append(byFile[key], ref)
	}

	var pending []pendingFile
	for _, f := range e.files {
		refs := byFile[f.Key]
		if len(refs) == 0 {
			continue
		}

		p, fileSkipped, err := e.prepareFile(f, refs, edits)
		if err != nil {
			return nil, nil, err
		}
		skipped = append(skipped, fileSkipped...)
		if len(p.changes) > 0 {
			pending = append(pending, p)
		}
	}

	return pending, skipped, nil
}

// prepareFile applies the dirty edits of one file, in schema order, to a fresh
// read of the file.
func (e *Engine) prepareFile(f EnvFile, refs []ItemRef, edits Edits) (pendingFile, []ItemRef, error) {
	fresh, err := envfile.ReadLines(f.Path)
	if err != nil {
		return pendingFile{}, nil, &IOError{Op: "read", Path: f.Path, Err: unwrapPathError(err)}
	}

	p := pendingFile{file: f, lines: append([]string(nil), fresh...)}
	changeAt := make(map[int]int)    // line index -> index into p.changes
	appendAt := make(map[string]int) // variable -> index into p.changes
	var skipped []ItemRef

	for _, ref := range refs {
		ent := e.entries[e.index[ref]]
		name := ent.Item.EnvVar.Name
		value := edits[ref].As(ent.Item.Kind).String()

		if ent.Provenance == nil {
			switch e.missing {
			case MissingVariableSkip:
				e.logger.Warn("skipping item whose variable is not in its env file", "item", ref, "file", f.Path, "variable", name)
				skipped = append(skipped, ref)
				continue
			case MissingVariableAppend:
				p.appendVariable(appendAt, ref, name, value)
				e.logger.Debug("appending variable", "item", ref, "file", f.Path, "variable", name, "value", value)
				continue
			default:
				return pendingFile{}, nil, &MissingVariableError{Item: ref, Key: f.Key, Variable: name}
			}
		}

		idx := ent.Provenance.Line - 1
		if idx >= len(fresh) || fresh[idx] != ent.Provenance.Original {
			return pendingFile{}, nil, &StaleFileError{Path: f.Path, Key: f.Key, Variable: name, Line: ent.Provenance.Line}
		}

		rewritten, ok := envfile.ReplaceValue(p.lines[idx], name, value)
		if !ok {
			// The recorded line assigns this variable, so this only happens if
			// the schema was swapped under a loaded engine.
			return pendingFile{}, nil, &StaleFileError{Path: f.Path, Key: f.Key, Variable: name, Line: ent.Provenance.Line}
		}

		if ci, seen := changeAt[idx]; seen {
			if p.changes[ci].After != rewritten {
				e.logger.Warn("several items set the same variable differently, the later item wins",
					"variable", name, "file", f.Path, "line", idx+1, "item", ref)
			}
			p.changes[ci].After = rewritten
			p.changes[ci].Items = append(p.changes[ci].Items, ref)
		} else {
			changeAt[idx] = len(p.changes)
			p.changes = append(p.changes, LineChange{
				Line:     idx + 1,
				Variable: name,
				Items:    []ItemRef{ref},
				Before:   fresh[idx],
				After:    rewritten,
			})
		}
		p.lines[idx] = rewritten

		e.logger.Debug("rewriting line", "item", ref, "file", f.Path, "variable", name, "line", idx+1, "value", value)
	}

	// An append may have terminated a line rewritten earlier.
	for i := range p.changes {
		p.changes[i].After = p.lines[p.changes[i].Line-1]
	}

	return p, skipped, nil
}

// appendVariable adds NAME=value at the end of the file, or updates the line
// an earlier item already appended for the same variable.
func (p *pendingFile) appendVariable(appendAt map[string]int, ref ItemRef, name, value string) {
	line := name + "=" + envfile.EscapeValue(value) + lineTerminator(p.lines)

	if ci, seen := appendAt[name]; seen {
		c := &p.changes[ci]
		c.After = line
		c.Items = append(c.Items, ref)
		p.lines[c.Line-1] = line
		return
	}

	if n := len(p.lines); n > 0 && !strings.HasSuffix(p.lines[n-1], "\n") {
		p.lines[n-1] += lineTerminator(p.lines)
		p.terminated = n
	}
	p.lines = append(p.lines, line)
	appendAt[name] = len(p.changes)
	p.changes = append(p.changes, LineChange{
		Line:     len(p.lines),
		Variable: name,
		Items:    []ItemRef{ref},
		After:    line,
		Appended: true,
	})
}

// commit updates stored values and provenance for the lines a written file
// now holds.
func (e *Engine) commit(p pendingFile) {
	// Entries first bound during this commit follow later lines, matching
	// the last-assignment-wins rule of Load.
	bound := make(map[int]bool)
	for _, c := range p.changes {
		e.logger.Info("wrote config variable", "variable", c.Variable, "file", p.file.Path, "line", c.Line)
		a, ok := envfile.ParseLine(c.After)
		if !ok {
			continue
		}
		prov := &Provenance{Key: p.file.Key, Path: p.file.Path, Line: c.Line, Original: c.After}
		for i := range e.entries {
			ent := &e.entries[i]
			if ent.Item.EnvVar.File != p.file.Key || ent.Item.EnvVar.Name != c.Variable {
				continue
			}
			if ent.Provenance != nil && ent.Provenance.Line != c.Line && !bound[i] {
				continue
			}
			if ent.Provenance == nil {
				bound[i] = true
			}
			ent.Value = a.Value
			ent.OriginalValue = a.Value
			ent.Provenance = prov
		}
	}

	if p.terminated > 0 {
		e.retext(p.file.Key, p.terminated, p.lines[p.terminated-1])
	}
}

// retext records new text for a line whose assignment did not change, so
// items bound to it are not reported stale by the next save.
func (e *Engine) retext(key string, line int, text string) {
	var prov *Provenance
	for i := range e.entries {
		ent := &e.entries[i]
		if ent.Provenance == nil || ent.Provenance.Key != key || ent.Provenance.Line != line || ent.Provenance.Original == text {
			continue
		}
		if prov == nil {
			next := *ent.Provenance
			next.Original = text
			prov = &next
		}
		ent.Provenance = prov
	}
}

// lineTerminator returns the terminator used by the first terminated line,
// defaulting to "\n".
func lineTerminator(lines []string) string {
	for _, l := range lines {
		if strings.HasSuffix(l, "\r\n") {
			return "\r\n"
		}
		if strings.HasSuffix(l, "\n") {
			return "\n"
		}
	}
	return "\n"
}

func newReport(pending []pendingFile, skipped []ItemRef) *SaveReport {
	r := &SaveReport{Skipped: skipped}
	for _, p := range pending {
		r.Files = append(r.Files, FileChange{Key: p.file.Key, Path: p.file.Path, Changes: p.changes})
	}
	return r
}

// String summarises the report, one line per change.
func (r *SaveReport) String() string {
	var sb strings.Builder
	for _, f := range r.Files {
		for _, c := range f.Changes {
			verb := "updated"
			if c.Appended {
				verb = "appended"
			}
			fmt.Fprintf(&sb, "%s:%d: %s %s\n", f.Path, c.Line, verb, c.Variable)
		}
	}
	for _, ref := range r.Skipped {
		fmt.Fprintf(&sb, "skipped %s\n", ref)
	}
	return sb.String()
}
