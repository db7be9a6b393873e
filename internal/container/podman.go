// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PodmanEngine implements Engine with the podman CLI.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a podman engine. podman-remote is used when podman
// itself is not on PATH.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, err := exec.LookPath("podman")
	if err != nil {
		if path, err = exec.LookPath("podman-remote"); err != nil {
			path = ""
		}
	}
	allOpts := append([]BaseCLIEngineOption{WithName(string(EngineTypePodman))}, opts...)
	return &PodmanEngine{BaseCLIEngine: NewBaseCLIEngine(path, allOpts...)}
}

// Available reports whether podman is installed and responding.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	return e.RunCommandStatus(context.Background(), "version", "--format", "{{.Version}}") == nil
}

// Version returns the podman version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get podman version: %w", err)
	}
	return strings.TrimSpace(out), nil
}
