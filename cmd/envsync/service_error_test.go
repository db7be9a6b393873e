// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"envsync-cli/internal/container"
	"envsync-cli/internal/engine"
	"envsync-cli/internal/issue"
	"envsync-cli/internal/pki"
)

func TestNewServiceError_PanicsOnNil(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("newServiceError(nil) did not panic")
		}
	}()
	_ = newServiceError(nil, 0, "")
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{
			name: "stale file",
			err:  fmt.Errorf("save: %w", &engine.StaleFileError{Path: "mc.env", Variable: "DFSP_ID", Line: 2}),
			want: issue.StaleFileId,
		},
		{
			name: "missing variable",
			err:  &engine.MissingVariableError{Variable: "PEER_ENDPOINT"},
			want: issue.MissingVariableId,
		},
		{
			name: "no container engine",
			err:  &container.EngineNotAvailableError{Engine: "docker", Reason: "not installed"},
			want: issue.ContainerEngineNotFoundId,
		},
		{
			name: "container not found",
			err:  &container.ContainerNotFoundError{Engine: "docker", Name: "itk-redis"},
			want: issue.ServiceRestartFailedId,
		},
		{
			name: "pki tool failed",
			err:  &pki.ToolFailedError{Operation: pki.OpJWSKeypair, ExitCode: 2},
			want: issue.PkiToolFailedId,
		},
		{
			name: "pki missing value",
			err:  &pki.MissingValueError{Item: pki.DFSPID},
			want: issue.PkiToolFailedId,
		},
		{
			name: "permission denied",
			err:  &engine.IOError{Op: "write", Path: "mc.env", Err: fs.ErrPermission},
			want: issue.PermissionDeniedId,
		},
		{
			name: "actionable error keeps its issue",
			err: issue.NewErrorContext().
				WithOperation("load schema").
				WithIssue(issue.SchemaParseErrorId).
				Wrap(fs.ErrPermission).
				BuildError(),
			want: issue.SchemaParseErrorId,
		},
		{
			name: "unclassified",
			err:  errors.New("boom"),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, styled := classifyError(tt.err, false)
			if got != tt.want {
				t.Errorf("classifyError() issue = %d, want %d", got, tt.want)
			}
			if !strings.Contains(styled, "Error:") || !strings.Contains(styled, tt.err.Error()) {
				t.Errorf("styled message = %q", styled)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "tool exit code", err: fmt.Errorf("wrapped: %w", &pki.ToolFailedError{ExitCode: 4}), want: 4},
		{name: "tool killed", err: &pki.ToolFailedError{ExitCode: -1}, want: 1},
		{name: "other", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	svcErr := newServiceError(errors.New("boom"), issue.StaleFileId, "styled\n")

	var quiet bytes.Buffer
	renderServiceError(&quiet, svcErr, "notty", false)
	if quiet.String() != "styled\n" {
		t.Errorf("non-verbose output = %q, want only the styled message", quiet.String())
	}

	var verbose bytes.Buffer
	renderServiceError(&verbose, svcErr, "notty", true)
	if !strings.HasPrefix(verbose.String(), "styled\n") || len(verbose.String()) <= len("styled\n") {
		t.Errorf("verbose output = %q, want the issue help after the message", verbose.String())
	}
}
