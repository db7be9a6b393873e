// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// Tests inject a mock through WithExecCommand.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine holds what docker and podman share: the binary, the way
	// commands are created, argument builders and the container operations.
	// Engine-specific probing (Available, Version) stays on the concrete types.
	BaseCLIEngine struct {
		name        string
		binaryPath  string
		execCommand ExecCommandFunc
	}
)

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.name = name
	}
}

// WithExecCommand replaces exec.CommandContext.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithBinaryPath overrides the binary found on PATH.
func WithBinaryPath(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.binaryPath = path
	}
}

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// InspectArgs constructs arguments that print the state of a container.
//
// Generated command: <binary> container inspect --format {{.State.Status}} <name>
func (e *BaseCLIEngine) InspectArgs(name string) []string {
	return []string{"container", "inspect", "--format", "{{.State.Status}}", name}
}

// RestartArgs constructs arguments for a container restart.
//
// Generated command: <binary> restart <name>
func (e *BaseCLIEngine) RestartArgs(name string) []string {
	return []string{"restart", name}
}

// Exists reports whether the container exists. A "no such container" answer
// from the CLI is not an error.
func (e *BaseCLIEngine) Exists(ctx context.Context, name string) (bool, error) {
	out, err := e.RunCommandCombined(ctx, e.InspectArgs(name)...)
	if err == nil {
		return true, nil
	}
	if isNoSuchContainer(out) {
		return false, nil
	}
	return false, fmt.Errorf("%s: inspect container '%s': %w", e.name, name, commandError(out, err))
}

// Restart restarts the container, reporting a missing container as
// *ContainerNotFoundError.
func (e *BaseCLIEngine) Restart(ctx context.Context, name string) error {
	out, err := e.RunCommandCombined(ctx, e.RestartArgs(name)...)
	if err == nil {
		return nil
	}
	if isNoSuchContainer(out) {
		return &ContainerNotFoundError{Engine: e.name, Name: name}
	}
	return fmt.Errorf("%s: restart container '%s': %w", e.name, name, commandError(out, err))
}

// RunCommandCombined executes a command and returns combined stdout/stderr.
func (e *BaseCLIEngine) RunCommandCombined(ctx context.Context, args ...string) ([]byte, error) {
	cmd := e.CreateCommand(ctx, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return out, nil
}

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}

	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// isNoSuchContainer matches the not-found messages of docker ("No such
// container") and podman ("no such container").
func isNoSuchContainer(out []byte) bool {
	return strings.Contains(strings.ToLower(string(out)), "no such container")
}

// commandError attaches the CLI's own message to a failed command.
func commandError(out []byte, err error) error {
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		return err
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s (exit code %d)", msg, exitErr.ExitCode())
	}
	return fmt.Errorf("%s: %w", msg, err)
}
