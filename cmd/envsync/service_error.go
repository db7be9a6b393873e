// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"envsync-cli/internal/container"
	"envsync-cli/internal/engine"
	"envsync-cli/internal/issue"
	"envsync-cli/internal/pki"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints the styled message, then the issue help section
// when verbose is set.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, stylePath string, verbose bool) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 || !verbose {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(stylePath)
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// classifyError maps an error to an issue catalog ID and a styled message.
// An ActionableError that already names an issue keeps it.
func classifyError(err error, verbose bool) (issue.Id, string) {
	var issueID issue.Id

	var ae *issue.ActionableError
	switch {
	case errors.As(err, &ae) && ae.Issue != 0:
		issueID = ae.Issue
	case errors.Is(err, engine.ErrStaleFile):
		issueID = issue.StaleFileId
	case errors.Is(err, engine.ErrNoProvenance):
		issueID = issue.MissingVariableId
	case errors.Is(err, container.ErrNoEngineAvailable):
		issueID = issue.ContainerEngineNotFoundId
	case errors.Is(err, container.ErrContainerNotFound):
		issueID = issue.ServiceRestartFailedId
	case errors.Is(err, pki.ErrToolFailed), errors.Is(err, pki.ErrMissingValue):
		issueID = issue.PkiToolFailedId
	case errors.Is(err, fs.ErrPermission):
		issueID = issue.PermissionDeniedId
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// exitCode returns the process exit code for err: the PKI tool's own exit
// code when it failed, 1 otherwise.
func exitCode(err error) int {
	var toolErr *pki.ToolFailedError
	if errors.As(err, &toolErr) && toolErr.ExitCode > 0 {
		return toolErr.ExitCode
	}
	return 1
}
