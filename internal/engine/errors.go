// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrStaleFile is returned when an env file changed on disk after it was
	// read, at a line the engine is about to rewrite.
	ErrStaleFile = errors.New("env file modified since it was read")

	// ErrNoProvenance is returned when a changed item has no line to rewrite
	// because its variable was not found in its env file.
	ErrNoProvenance = errors.New("variable not present in env file")

	// ErrIO is returned when reading or writing an env file fails.
	ErrIO = errors.New("env file I/O failed")

	// ErrUnknownItem is returned for a group/item pair the schema does not define.
	ErrUnknownItem = errors.New("unknown schema item")

	// ErrDuplicateFileKey is returned when two env files share a logical key.
	ErrDuplicateFileKey = errors.New("duplicate env file key")

	// ErrInvalidMissingVariablePolicy is returned when a MissingVariablePolicy
	// value is not one of the defined policies.
	ErrInvalidMissingVariablePolicy = errors.New("invalid missing variable policy")
)

type (
	// StaleFileError names the file and variable whose line no longer matches
	// what was read. The file is not written.
	StaleFileError struct {
		Path     string
		Key      string
		Variable string
		Line     int
	}

	// MissingVariableError is returned for a changed item whose variable has no
	// line in its env file, under the MissingVariableFail policy.
	MissingVariableError struct {
		Item     ItemRef
		Key      string
		Variable string
	}

	// IOError wraps a failed read or write of an env file. It matches both
	// ErrIO and the underlying error with errors.Is().
	IOError struct {
		Op   string
		Path string
		Err  error
	}

	// UnknownItemError is returned when an ItemRef does not name a schema item.
	UnknownItemError struct {
		Item ItemRef
	}

	// DuplicateFileKeyError is returned by New for env files sharing a key.
	DuplicateFileKeyError struct {
		Key string
	}

	// InvalidMissingVariablePolicyError is returned when a
	// MissingVariablePolicy value is not recognized.
	InvalidMissingVariablePolicyError struct {
		Value MissingVariablePolicy
	}
)

// Error implements the error interface.
func (e *StaleFileError) Error() string {
	return fmt.Sprintf("env file '%s' has been modified since it was read (variable %s, line %d); reload to pick up the changes",
		e.Path, e.Variable, e.Line)
}

// Unwrap returns ErrStaleFile for errors.Is() compatibility.
func (e *StaleFileError) Unwrap() error { return ErrStaleFile }

// Error implements the error interface.
func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("cannot save %s: variable %s is not present in env file '%s'", e.Item, e.Variable, e.Key)
}

// Unwrap returns ErrNoProvenance for errors.Is() compatibility.
func (e *MissingVariableError) Unwrap() error { return ErrNoProvenance }

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s env file '%s': %v", e.Op, e.Path, e.Err)
}

// Unwrap returns ErrIO and the underlying error.
func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// Error implements the error interface.
func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %s", e.Item)
}

// Unwrap returns ErrUnknownItem for errors.Is() compatibility.
func (e *UnknownItemError) Unwrap() error { return ErrUnknownItem }

// Error implements the error interface.
func (e *DuplicateFileKeyError) Error() string {
	return fmt.Sprintf("env file key %q is used more than once", e.Key)
}

// Unwrap returns ErrDuplicateFileKey for errors.Is() compatibility.
func (e *DuplicateFileKeyError) Unwrap() error { return ErrDuplicateFileKey }

// Error implements the error interface.
func (e *InvalidMissingVariablePolicyError) Error() string {
	return fmt.Sprintf("invalid missing variable policy %q (valid: error, append, skip)", e.Value)
}

// Unwrap returns ErrInvalidMissingVariablePolicy for errors.Is() compatibility.
func (e *InvalidMissingVariablePolicyError) Unwrap() error { return ErrInvalidMissingVariablePolicy }

// unwrapPathError reduces err to the cause inside its *fs.PathError, since
// IOError already names the operation and path.
func unwrapPathError(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
