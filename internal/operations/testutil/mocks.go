// Package testutil provides configurable steps and observers for pipeline
// tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"lblreport/internal/operations"
)

// MockStep is a configurable implementation of operations.Step
type MockStep struct {
	IDValue   string
	NameValue string

	// Configurable functions
	ExecuteFunc  func(ctx context.Context, state *operations.RunState) error
	ValidateFunc func(state *operations.RunState) error

	// Call tracking
	mu            sync.Mutex
	ExecuteCalls  int
	ValidateCalls int
	onExecute     func(id string)
}

// ID returns the step ID
func (m *MockStep) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStep) Name() string {
	return m.NameValue
}

// Execute runs the mock execute function
func (m *MockStep) Execute(ctx context.Context, state *operations.RunState) error {
	m.mu.Lock()
	m.ExecuteCalls++
	hook := m.onExecute
	m.mu.Unlock()

	if hook != nil {
		hook(m.IDValue)
	}
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate runs the mock validate function
func (m *MockStep) Validate(state *operations.RunState) error {
	m.mu.Lock()
	m.ValidateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// GetExecuteCalls returns the number of Execute calls
func (m *MockStep) GetExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// GetValidateCalls returns the number of Validate calls
func (m *MockStep) GetValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ValidateCalls
}

// Observation is one outcome reported to a RecordingObserver.
type Observation struct {
	StepID   string
	Status   operations.StepStatus
	Duration time.Duration
}

// RecordingObserver implements operations.StepObserver
type RecordingObserver struct {
	mu           sync.Mutex
	Observations []Observation
}

// ObserveStep records the outcome
func (o *RecordingObserver) ObserveStep(stepID string, status operations.StepStatus, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Observations = append(o.Observations, Observation{StepID: stepID, Status: status, Duration: duration})
}

// Statuses returns the recorded status per step ID.
func (o *RecordingObserver) Statuses() map[string]operations.StepStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]operations.StepStatus, len(o.Observations))
	for _, obs := range o.Observations {
		out[obs.StepID] = obs.Status
	}
	return out
}
