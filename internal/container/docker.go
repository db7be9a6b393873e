// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DockerEngine implements Engine with the docker CLI.
type DockerEngine struct {
	*BaseCLIEngine
}

// NewDockerEngine creates a docker engine. The binary is looked up on PATH
// unless WithBinaryPath is given.
func NewDockerEngine(opts ...BaseCLIEngineOption) *DockerEngine {
	path, err := exec.LookPath("docker")
	if err != nil {
		path = ""
	}
	allOpts := append([]BaseCLIEngineOption{WithName(string(EngineTypeDocker))}, opts...)
	return &DockerEngine{BaseCLIEngine: NewBaseCLIEngine(path, allOpts...)}
}

// Available reports whether docker is installed and the daemon answers.
func (e *DockerEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	return e.RunCommandStatus(context.Background(), "version", "--format", "{{.Server.Version}}") == nil
}

// Version returns the docker server version.
func (e *DockerEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get docker version: %w", err)
	}
	return strings.TrimSpace(out), nil
}
