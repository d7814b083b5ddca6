package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"lblreport/internal/operations"
)

// TestDate is the report date used by pipeline fixtures.
var TestDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// CreateTestRunState creates a run state for TestDate
func CreateTestRunState(id string) *operations.RunState {
	return operations.NewRunState(id, TestDate)
}

// CreateSuccessfulStep creates a step that always succeeds
func CreateSuccessfulStep(id, name string) *MockStep {
	return &MockStep{IDValue: id, NameValue: name}
}

// CreateFailingStep creates a step that always fails with err
func CreateFailingStep(id, name string, err error) *MockStep {
	if err == nil {
		err = errors.New("step failed")
	}
	return &MockStep{
		IDValue:   id,
		NameValue: name,
		ExecuteFunc: func(ctx context.Context, state *operations.RunState) error {
			return err
		},
	}
}

// CreateValidationFailingStep creates a step whose Validate fails
func CreateValidationFailingStep(id, name string, validationErr error) *MockStep {
	return &MockStep{
		IDValue:   id,
		NameValue: name,
		ValidateFunc: func(state *operations.RunState) error {
			return validationErr
		},
	}
}

// CreateBlockingStep creates a step that waits for its context to end
func CreateBlockingStep(id, name string, started chan<- struct{}) *MockStep {
	return &MockStep{
		IDValue:   id,
		NameValue: name,
		ExecuteFunc: func(ctx context.Context, state *operations.RunState) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}
}

// ExecutionOrder records the order in which steps start.
type ExecutionOrder struct {
	mu  sync.Mutex
	ids []string
}

// Track makes every step report to the recorder when it executes.
func (o *ExecutionOrder) Track(steps ...*MockStep) {
	for _, s := range steps {
		s.mu.Lock()
		s.onExecute = o.record
		s.mu.Unlock()
	}
}

func (o *ExecutionOrder) record(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ids = append(o.ids, id)
}

// IDs returns the recorded step IDs
func (o *ExecutionOrder) IDs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.ids...)
}

// CreateTestRegistry registers steps in order
func CreateTestRegistry(steps ...operations.Step) (*operations.Registry, error) {
	r := operations.NewRegistry()
	for _, s := range steps {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}
