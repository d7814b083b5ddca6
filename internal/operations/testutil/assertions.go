package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lblreport/internal/operations"
)

// AssertStepStatus checks the status of one step in state
func AssertStepStatus(t *testing.T, state *operations.RunState, stepID string, expected operations.StepStatus) {
	t.Helper()
	step := state.GetStep(stepID)
	if !assert.NotNil(t, step, "step %s not found", stepID) {
		return
	}
	assert.Equal(t, expected, step.Status, "step %s", stepID)
}

// AssertErrorKind checks the kind of a run error
func AssertErrorKind(t *testing.T, err error, expected operations.ErrorKind) {
	t.Helper()
	if !assert.Error(t, err) {
		return
	}
	assert.Equal(t, expected, operations.KindOf(err), "error: %v", err)
}
