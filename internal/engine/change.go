// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"envsync-cli/internal/schema"
)

// IsDirty reports whether candidate differs from the stored value of the item.
// Bool items compare as booleans, so a stored "True" equals a candidate true.
func (e *Engine) IsDirty(ref ItemRef, candidate schema.Value) (bool, error) {
	ent, err := e.Entry(ref)
	if err != nil {
		return false, err
	}
	return isDirty(ent, candidate), nil
}

// HasUnsavedChanges reports whether any edit differs from its stored value.
// Items without an edit are unchanged. Edits for unknown items are ignored.
func (e *Engine) HasUnsavedChanges(edits Edits) bool {
	for ref, v := range edits {
		if i, ok := e.index[ref]; ok && isDirty(e.entries[i], v) {
			return true
		}
	}
	return false
}

// Changed returns the references of the dirty edits in schema order.
func (e *Engine) Changed(edits Edits) []ItemRef {
	var out []ItemRef
	for _, ent := range e.entries {
		if v, ok := edits[ent.Ref]; ok && isDirty(ent, v) {
			out = append(out, ent.Ref)
		}
	}
	return out
}

func isDirty(ent Entry, candidate schema.Value) bool {
	return !candidate.As(ent.Item.Kind).Equal(ent.Item.Kind.Parse(ent.Value))
}
