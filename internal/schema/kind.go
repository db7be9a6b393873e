// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// KindString is a free-form string item.
	KindString Kind = "string"
	// KindBool is a boolean item stored as "true" or "false".
	KindBool Kind = "bool"
)

// ErrInvalidKind is returned when a Kind value is not one of the defined kinds.
var ErrInvalidKind = errors.New("invalid item kind")

type (
	// Kind is the closed set of item types a schema may declare.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	// It wraps ErrInvalidKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value Kind
	}

	// Value is a typed item value. The zero Value is an empty string.
	Value struct {
		kind Kind
		str  string
		b    bool
	}
)

// Error implements the error interface.
func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid item kind %q (valid: string, bool)", e.Value)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// IsValid returns whether the Kind is one of the defined kinds.
func (k Kind) IsValid() (bool, []error) {
	switch k {
	case KindString, KindBool:
		return true, nil
	default:
		return false, []error{&InvalidKindError{Value: k}}
	}
}

// Parse interprets raw env file text as a value of this kind. Bool items are
// true only when raw is "true" in any letter case; anything else is false.
func (k Kind) Parse(raw string) Value {
	if k == KindBool {
		return BoolValue(strings.EqualFold(strings.TrimSpace(raw), "true"))
	}
	return StringValue(raw)
}

// StringValue returns a string-kind value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BoolValue returns a bool-kind value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindString
	}
	return v.kind
}

// String returns the text written to an env file for v.
func (v Value) String() string {
	if v.Kind() == KindBool {
		return strconv.FormatBool(v.b)
	}
	return v.str
}

// Bool returns the boolean value of v. A string value is true when it reads
// "true" in any letter case.
func (v Value) Bool() bool {
	if v.Kind() == KindBool {
		return v.b
	}
	return KindBool.Parse(v.str).b
}

// As converts v to kind k.
func (v Value) As(k Kind) Value {
	if v.Kind() == k {
		return v
	}
	return k.Parse(v.String())
}

// Equal reports whether v and other hold the same value once both are read
// as v's kind.
func (v Value) Equal(other Value) bool {
	other = other.As(v.Kind())
	if v.Kind() == KindBool {
		return v.b == other.b
	}
	return v.str == other.str
}
