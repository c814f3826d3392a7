package operations

import (
	"context"
	"fmt"
	"log/slog"

	"fuelbreak/internal/infrastructure"
)

// Manager executes the registered steps of a run one after another
type Manager struct {
	registry *Registry
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a manager over the given registry. A nil tracer
// disables spans and step metrics.
func NewManager(registry *Registry, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil, nil)
	}
	return &Manager{
		registry: registry,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "operations"),
	}
}

// Execute runs every step in registration order. The first failing step
// stops the run and the remaining steps are marked skipped. Cancellation
// is checked between steps.
func (m *Manager) Execute(ctx context.Context, state *RunState) error {
	if state == nil {
		return NewFatalError("run state is nil", nil)
	}

	steps := m.registry.Steps()
	if len(steps) == 0 {
		return NewFatalError("no steps registered", nil)
	}
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceRun(ctx, state)
	defer span.End()

	state.Start()
	m.logRunStart(ctx, state.ID, len(steps))

	err := m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case IsCancellation(err):
		state.Cancel()
	default:
		state.Fail(err)
	}

	m.tracer.RecordRunCompletion(span, state, err)
	if err != nil {
		m.logRunError(ctx, state.ID, err)
		return err
	}
	m.logRunComplete(ctx, state.ID, state.Duration(), string(state.GetStatus()))
	return nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *RunState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "run_cancelled",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "run cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStep validates and runs a single step inside its own span
func (m *Manager) executeStep(ctx context.Context, state *RunState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state of step %s not found", step.ID()), nil)
	}

	ctx, span := m.tracer.TraceStep(ctx, state.ID, step)
	defer span.End()

	m.logStepStart(ctx, state.ID, step.ID())
	stepState.Start()

	var err error
	if verr := step.Validate(state); verr != nil {
		err = NewValidationError(step.ID(), verr.Error())
	} else if xerr := step.Execute(ctx, state); xerr != nil {
		err = NewExecutionError(step.ID(), xerr)
	}

	if err != nil {
		stepState.Fail(err)
		m.tracer.RecordStepCompletion(ctx, span, step.ID(), stepState.Duration(), err)
		m.logStepError(ctx, state.ID, step.ID(), err)
		return err
	}

	stepState.Complete("")
	m.tracer.RecordStepCompletion(ctx, span, step.ID(), stepState.Duration(), nil)
	m.logStepComplete(ctx, state.ID, step.ID(), stepState.Duration())
	return nil
}

func (m *Manager) skipRemaining(state *RunState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}
