// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"envsync-cli/internal/schema"
)

const (
	// MissingVariableFail fails the save with *MissingVariableError.
	MissingVariableFail MissingVariablePolicy = "error"
	// MissingVariableAppend appends NAME=value to the end of the env file.
	MissingVariableAppend MissingVariablePolicy = "append"
	// MissingVariableSkip leaves the file alone and logs a warning.
	MissingVariableSkip MissingVariablePolicy = "skip"
)

type (
	// MissingVariablePolicy decides what Save does with a changed item whose
	// variable was not found in its env file.
	MissingVariablePolicy string

	// EnvFile binds a logical file key used by the schema to a path on disk.
	EnvFile struct {
		Key  string
		Path string
	}

	// ItemRef identifies an item by group ID and item name.
	ItemRef struct {
		GroupID string
		Name    string
	}

	// Provenance records where an item's value was read from. It is never
	// modified after creation; a successful write replaces it.
	Provenance struct {
		// Key is the logical key of the env file.
		Key string
		// Path is the env file path.
		Path string
		// Line is the 1-based line number.
		Line int
		// Original is the verbatim line text, including its terminator.
		Original string
	}

	// Entry is the correlated state of one schema item.
	Entry struct {
		Ref  ItemRef
		Item schema.Item
		// Value is the stored value text: the value read from the env file,
		// or the schema default when the variable was not found.
		Value string
		// OriginalValue is the value as first read from the env file.
		OriginalValue string
		// Provenance is nil when the variable was not found.
		Provenance *Provenance
	}

	// Edits holds candidate values from an editing surface.
	Edits map[ItemRef]schema.Value

	// Engine correlates schema items with env file values and writes edits
	// back to the files.
	Engine struct {
		schema  *schema.Schema
		files   []EnvFile
		entries []Entry
		index   map[ItemRef]int
		logger  *log.Logger
		missing MissingVariablePolicy
	}

	// Option configures an Engine.
	Option func(*Engine)
)

// String returns "group/item".
func (r ItemRef) String() string {
	return r.GroupID + "/" + r.Name
}

// String returns the string representation of the MissingVariablePolicy.
func (p MissingVariablePolicy) String() string { return string(p) }

// IsValid returns whether the MissingVariablePolicy is one of the defined policies.
func (p MissingVariablePolicy) IsValid() (bool, []error) {
	switch p {
	case MissingVariableFail, MissingVariableAppend, MissingVariableSkip:
		return true, nil
	default:
		return false, []error{&InvalidMissingVariablePolicyError{Value: p}}
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMissingVariablePolicy sets how Save treats changed items that have no
// line in their env file. The default is MissingVariableFail.
func WithMissingVariablePolicy(p MissingVariablePolicy) Option {
	return func(e *Engine) {
		e.missing = p
	}
}

// New creates an engine for the schema and env files. Items start at their
// schema defaults; call Load to correlate them with the files.
func New(s *schema.Schema, files []EnvFile, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, errors.New("schema is required")
	}

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Key] {
			return nil, &DuplicateFileKeyError{Key: f.Key}
		}
		seen[f.Key] = true
	}

	e := &Engine{
		schema:  s,
		files:   append([]EnvFile(nil), files...),
		index:   make(map[ItemRef]int, s.ItemCount()),
		logger:  log.New(io.Discard),
		missing: MissingVariableFail,
	}
	for _, opt := range opts {
		opt(e)
	}
	if ok, errs := e.missing.IsValid(); !ok {
		return nil, errs[0]
	}

	for _, g := range s.Groups {
		for _, it := range g.Items {
			ref := ItemRef{GroupID: g.ID, Name: it.Name}
			e.index[ref] = len(e.entries)
			e.entries = append(e.entries, Entry{Ref: ref, Item: it})
		}
	}
	e.resetToDefaults()

	return e, nil
}

// Schema returns the schema the engine was created with.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// Files returns the configured env files in order.
func (e *Engine) Files() []EnvFile {
	return append([]EnvFile(nil), e.files...)
}

// Entries returns the correlated state of every item in schema order.
func (e *Engine) Entries() []Entry {
	return append([]Entry(nil), e.entries...)
}

// Entry returns the correlated state of one item.
func (e *Engine) Entry(ref ItemRef) (Entry, error) {
	i, ok := e.index[ref]
	if !ok {
		return Entry{}, &UnknownItemError{Item: ref}
	}
	return e.entries[i], nil
}

// GetItemValue returns the stored value of an item, typed by the item's kind.
func (e *Engine) GetItemValue(groupID, name string) (schema.Value, error) {
	ent, err := e.Entry(ItemRef{GroupID: groupID, Name: name})
	if err != nil {
		return schema.Value{}, err
	}
	return ent.Item.Kind.Parse(ent.Value), nil
}

// Values returns the stored value of every item, suitable as the starting
// state of an editing surface.
func (e *Engine) Values() Edits {
	out := make(Edits, len(e.entries))
	for _, ent := range e.entries {
		out[ent.Ref] = ent.Item.Kind.Parse(ent.Value)
	}
	return out
}

func (e *Engine) file(key string) (EnvFile, bool) {
	for _, f := range e.files {
		if f.Key == key {
			return f, true
		}
	}
	return EnvFile{}, false
}

func (e *Engine) resetToDefaults() {
	for i := range e.entries {
		def := e.entries[i].Item.Default.String()
		e.entries[i].Value = def
		e.entries[i].OriginalValue = def
		e.entries[i].Provenance = nil
	}
}
