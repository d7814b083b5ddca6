package operations

import (
	"time"

	"lblreport/pkg/contracts/domain"
)

// RunStatus represents the overall status of a daily run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState carries the data handed from one step to the next. It is owned
// by a single goroutine for the whole run.
type RunState struct {
	ID        string     `json:"id"`
	Date      time.Time  `json:"date"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	Events         []domain.StatcastEvent `json:"-"`
	Weights        *domain.WobaWeights    `json:"weights,omitempty"`
	Classification *domain.Classification `json:"-"`
	Report         *domain.Report         `json:"report,omitempty"`
	Delivered      bool                   `json:"delivered"`

	Error error `json:"error,omitempty"`
}

// NewRunState creates the state for the run reporting on date.
func NewRunState(id string, date time.Time) *RunState {
	return &RunState{
		ID:     id,
		Date:   date,
		Status: RunStatusPending,
		Steps:  make(map[string]*StepState),
	}
}

// Start marks the run as running
func (r *RunState) Start(now time.Time) {
	r.Status = RunStatusRunning
	r.StartTime = now
}

// Complete marks the run as completed
func (r *RunState) Complete(now time.Time) {
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (r *RunState) Fail(now time.Time, err error) {
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// GetStep returns the state of a specific Step
func (r *RunState) GetStep(id string) *StepState {
	return r.Steps[id]
}
