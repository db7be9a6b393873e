// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
)

const (
	EngineTypePodman EngineType = "podman"
	EngineTypeDocker EngineType = "docker"
)

var (
	// ErrNoEngineAvailable is returned when neither docker nor podman can be used.
	ErrNoEngineAvailable = errors.New("no container engine available")
	// ErrContainerNotFound is returned when a named container does not exist.
	ErrContainerNotFound = errors.New("container not found")
)

type (
	// Engine is the subset of a container CLI that service management needs.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available reports whether the engine CLI is installed and its daemon answers.
		Available() bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// Exists reports whether a container with the given name or ID exists.
		Exists(ctx context.Context, name string) (bool, error)
		// Restart restarts a container.
		Restart(ctx context.Context, name string) error
	}

	// EngineType identifies the container engine type.
	EngineType string

	// EngineNotAvailableError wraps ErrNoEngineAvailable.
	EngineNotAvailableError struct {
		Engine string
		Reason string
	}

	// ContainerNotFoundError wraps ErrContainerNotFound.
	ContainerNotFoundError struct {
		Engine string
		Name   string
	}
)

func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

func (e *EngineNotAvailableError) Unwrap() error { return ErrNoEngineAvailable }

func (e *ContainerNotFoundError) Error() string {
	return fmt.Sprintf("%s: no such container '%s'", e.Engine, e.Name)
}

func (e *ContainerNotFoundError) Unwrap() error { return ErrContainerNotFound }

// NewEngine returns the preferred engine, falling back to the other one when
// the preferred CLI is not available. opts are applied to both candidates.
func NewEngine(preferredType EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	var preferred, fallback Engine

	switch preferredType {
	case EngineTypePodman:
		preferred, fallback = NewPodmanEngine(opts...), NewDockerEngine(opts...)
	case EngineTypeDocker:
		preferred, fallback = NewDockerEngine(opts...), NewPodmanEngine(opts...)
	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}

	if preferred.Available() {
		return preferred, nil
	}
	if fallback.Available() {
		return fallback, nil
	}
	return nil, &EngineNotAvailableError{
		Engine: string(preferredType),
		Reason: fmt.Sprintf("%s is not installed or not accessible, and %s fallback is also not available", preferred.Name(), fallback.Name()),
	}
}
