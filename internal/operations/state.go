package operations

import (
	"log/slog"
	"sync"
	"time"

	"fuelbreak/internal/config"
	"fuelbreak/internal/dataprocessing"
	"fuelbreak/internal/infrastructure"
	"fuelbreak/internal/regression"
	"fuelbreak/internal/render"
	"fuelbreak/pkg/contracts/domain"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState carries one analysis run from input file to artifacts. Each
// step reads what earlier steps stored and fills in its own fields.
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Error     error      `json:"-"`

	Steps map[string]*StepState `json:"steps"`

	Config  *config.Config
	Paths   *config.Paths
	Style   render.Style
	Cutoff  time.Time
	Logger  *slog.Logger
	Metrics *infrastructure.AnalysisMetrics

	// Filled by the load and derive steps
	Raw   *domain.ObservationTable
	Table *domain.ObservationTable

	// Filled by the estimate step
	Models map[domain.Fuel]*regression.Model

	// Filled by the summarize step
	Description  *dataprocessing.Description
	Correlations map[domain.Period]*dataprocessing.CorrelationMatrix
	Tables       []*domain.Table

	Manifest *domain.Manifest
}

// NewRunState creates the state of a run with the given id
func NewRunState(id string, cfg *config.Config, paths *config.Paths) *RunState {
	return &RunState{
		ID:           id,
		Status:       RunStatusPending,
		StartTime:    time.Now(),
		Steps:        make(map[string]*StepState),
		Config:       cfg,
		Paths:        paths,
		Logger:       slog.Default(),
		Models:       make(map[domain.Fuel]*regression.Model),
		Correlations: make(map[domain.Period]*dataprocessing.CorrelationMatrix),
		Manifest:     &domain.Manifest{RunID: id, StartedAt: time.Now().UTC()},
	}
}

// Start marks the run as running
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusFailed
	s.Error = err
}

// Cancel marks the run as cancelled
func (s *RunState) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCancelled
}

// GetStage returns the state of a specific Step
func (s *RunState) GetStage(stepID string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Steps[stepID]
}

// SetStage updates the state of a specific Step
func (s *RunState) SetStage(stepID string, state *StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Steps[stepID] = state
}

// GetStatus returns the current run status
func (s *RunState) GetStatus() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the run
func (s *RunState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// HasFailures returns true if any Step has failed
func (s *RunState) HasFailures() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, step := range s.Steps {
		if step.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}
