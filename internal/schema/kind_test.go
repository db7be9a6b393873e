// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"errors"
	"testing"
)

func TestKind_IsValid(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindString, KindBool} {
		if ok, errs := k.IsValid(); !ok {
			t.Errorf("%q should be valid: %v", k, errs)
		}
	}

	ok, errs := Kind("int").IsValid()
	if ok || len(errs) != 1 {
		t.Fatalf("expected one error for int, got %v", errs)
	}
	if !errors.Is(errs[0], ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", errs[0])
	}
}

func TestKind_Parse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		raw  string
		want string
	}{
		{KindString, " padded ", " padded "},
		{KindString, "", ""},
		{KindBool, "true", "true"},
		{KindBool, "TRUE", "true"},
		{KindBool, "True", "true"},
		{KindBool, "false", "false"},
		{KindBool, "yes", "false"},
		{KindBool, "", "false"},
	}

	for _, tt := range tests {
		got := tt.kind.Parse(tt.raw)
		if got.Kind() != tt.kind || got.String() != tt.want {
			t.Errorf("%s.Parse(%q) = %s %q, want %q", tt.kind, tt.raw, got.Kind(), got.String(), tt.want)
		}
	}
}

func TestValue_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", StringValue("x"), StringValue("x"), true},
		{"different string", StringValue("x"), StringValue("y"), false},
		{"string is case sensitive", StringValue("True"), StringValue("true"), false},
		{"bool vs stored capitalised text", BoolValue(true), StringValue("True"), true},
		{"bool vs stored lower text", BoolValue(false), StringValue("false"), true},
		{"bool vs junk text", BoolValue(false), StringValue("maybe"), true},
		{"bool differs", BoolValue(true), StringValue("false"), false},
		{"zero value is empty string", Value{}, StringValue(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValue_As(t *testing.T) {
	t.Parallel()

	if v := BoolValue(true).As(KindString); v.Kind() != KindString || v.String() != "true" {
		t.Errorf("bool->string = %s %q", v.Kind(), v.String())
	}
	if v := StringValue("TRUE").As(KindBool); v.Kind() != KindBool || !v.Bool() {
		t.Errorf("string->bool = %s %v", v.Kind(), v.Bool())
	}
}
