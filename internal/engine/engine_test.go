// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"envsync-cli/internal/schema"
)

func stringItem(name, file, variable string) schema.Item {
	return schema.Item{
		Name:    name,
		Kind:    schema.KindString,
		EnvVar:  schema.EnvVar{File: file, Name: variable},
		Default: schema.StringValue(""),
	}
}

func boolItem(name, file, variable string) schema.Item {
	return schema.Item{
		Name:    name,
		Kind:    schema.KindBool,
		EnvVar:  schema.EnvVar{File: file, Name: variable},
		Default: schema.BoolValue(false),
	}
}

func writeEnv(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func readEnv(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func loadedEngine(t *testing.T, s *schema.Schema, files []EnvFile, opts ...Option) *Engine {
	t.Helper()

	e, err := New(s, files, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return e
}

func TestNew_DuplicateFileKey(t *testing.T) {
	t.Parallel()

	_, err := New(&schema.Schema{}, []EnvFile{{Key: "mc", Path: "a.env"}, {Key: "mc", Path: "b.env"}})
	if !errors.Is(err, ErrDuplicateFileKey) {
		t.Fatalf("expected ErrDuplicateFileKey, got %v", err)
	}
}

func TestNew_InvalidPolicy(t *testing.T) {
	t.Parallel()

	_, err := New(&schema.Schema{}, nil, WithMissingVariablePolicy("ignore"))
	if !errors.Is(err, ErrInvalidMissingVariablePolicy) {
		t.Fatalf("expected ErrInvalidMissingVariablePolicy, got %v", err)
	}
}

func TestNew_DefaultsBeforeLoad(t *testing.T) {
	t.Parallel()

	it := stringItem("Port", "app", "PORT")
	it.Default = schema.StringValue("8080")
	s := &schema.Schema{Groups: []schema.Group{{ID: "core", Items: []schema.Item{it}}}}

	e, err := New(s, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := e.GetItemValue("core", "Port")
	if err != nil {
		t.Fatalf("GetItemValue: %v", err)
	}
	if v.String() != "8080" {
		t.Errorf("value = %q, want schema default 8080", v.String())
	}
}

func TestGetItemValue_UnknownItem(t *testing.T) {
	t.Parallel()

	e, err := New(&schema.Schema{Groups: []schema.Group{{ID: "core"}}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = e.GetItemValue("core", "nope")
	if !errors.Is(err, ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
	var uie *UnknownItemError
	if !errors.As(err, &uie) || uie.Item != (ItemRef{GroupID: "core", Name: "nope"}) {
		t.Errorf("expected *UnknownItemError for core/nope, got %v", err)
	}
}

func TestIOError_MatchesCause(t *testing.T) {
	t.Parallel()

	err := error(&IOError{Op: "read", Path: "x.env", Err: fs.ErrNotExist})
	if !errors.Is(err, ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("IOError should match ErrIO and its cause: %v", err)
	}
}
