package operations

import (
	"context"
	"log/slog"
	"time"
)

// logRunStart logs the start of a run
func (m *Manager) logRunStart(ctx context.Context, runID string, steps int) {
	m.logger.InfoContext(ctx, "run_start",
		slog.String("run_id", runID),
		slog.Int("step_count", steps))
}

// logRunComplete logs the completion of a run
func (m *Manager) logRunComplete(ctx context.Context, runID string, duration time.Duration, status string) {
	m.logger.InfoContext(ctx, "run_complete",
		slog.String("run_id", runID),
		slog.String("status", status),
		slog.Duration("duration", duration))
}

// logRunError logs a run error
func (m *Manager) logRunError(ctx context.Context, runID string, err error) {
	m.logger.ErrorContext(ctx, "run_error",
		slog.String("run_id", runID),
		slog.String("error", errorMessage(err)))
}

// logStepStart logs the start of a step
func (m *Manager) logStepStart(ctx context.Context, runID, stepID string) {
	m.logger.DebugContext(ctx, "step_start",
		slog.String("run_id", runID),
		slog.String("step", stepID))
}

// logStepComplete logs the completion of a step
func (m *Manager) logStepComplete(ctx context.Context, runID, stepID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

// logStepError logs a step error
func (m *Manager) logStepError(ctx context.Context, runID, stepID string, err error) {
	m.logger.ErrorContext(ctx, "step_error",
		slog.String("run_id", runID),
		slog.String("step", stepID),
		slog.String("error", errorMessage(err)))
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
