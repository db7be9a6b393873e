// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

const (
	// RestartStatusRestarted means the restart command succeeded.
	RestartStatusRestarted RestartStatus = "restarted"
	// RestartStatusNotFound means no container with that name exists.
	RestartStatusNotFound RestartStatus = "not found"
	// RestartStatusFailed means the container exists but could not be restarted.
	RestartStatusFailed RestartStatus = "failed"
)

type (
	// RestartStatus is the outcome of restarting one container.
	RestartStatus string

	// RestartResult is the outcome for one container.
	RestartResult struct {
		Container string
		Status    RestartStatus
		Err       error
	}

	// RestartReport lists one result per requested container, in order.
	RestartReport struct {
		Results []RestartResult
	}
)

// Failed returns the results that were not restarted.
func (r *RestartReport) Failed() []RestartResult {
	var failed []RestartResult
	for _, res := range r.Results {
		if res.Status != RestartStatusRestarted {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the errors of every failed result, or returns nil.
func (r *RestartReport) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Container, res.Err))
	}
	return errors.Join(errs...)
}

// RestartServices restarts each container in turn. A missing or failing
// container is recorded and the remaining ones are still restarted; only a
// canceled context stops early.
func RestartServices(ctx context.Context, engine Engine, containers []string, logger *log.Logger) (*RestartReport, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	report := &RestartReport{Results: make([]RestartResult, 0, len(containers))}
	for _, name := range containers {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("restart canceled: %w", err)
		}

		logger.Info("restarting container", "engine", engine.Name(), "container", name)

		exists, err := engine.Exists(ctx, name)
		if err != nil {
			logger.Error("inspect failed", "container", name, "err", err)
			report.Results = append(report.Results, RestartResult{Container: name, Status: RestartStatusFailed, Err: err})
			continue
		}
		if !exists {
			logger.Warn("container not found", "container", name)
			report.Results = append(report.Results, RestartResult{
				Container: name,
				Status:    RestartStatusNotFound,
				Err:       &ContainerNotFoundError{Engine: engine.Name(), Name: name},
			})
			continue
		}

		if err := engine.Restart(ctx, name); err != nil {
			status := RestartStatusFailed
			if errors.Is(err, ErrContainerNotFound) {
				status = RestartStatusNotFound
			}
			logger.Error("restart failed", "container", name, "err", err)
			report.Results = append(report.Results, RestartResult{Container: name, Status: status, Err: err})
			continue
		}

		logger.Debug("container restarted", "container", name)
		report.Results = append(report.Results, RestartResult{Container: name, Status: RestartStatusRestarted})
	}
	return report, nil
}
