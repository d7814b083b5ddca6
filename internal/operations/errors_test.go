package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *RunError
		want string
	}{
		{
			name: "with step and cause",
			err:  NewDataUnavailableError(StepIDFetch, "statcast data unavailable", errors.New("503 Service Unavailable")),
			want: "[data_unavailable] fetch: statcast data unavailable: 503 Service Unavailable",
		},
		{
			name: "without cause",
			err:  NewInvalidStateError(StepIDRender, "events were not classified"),
			want: "[invalid_state] render: events were not classified",
		},
		{
			name: "without step",
			err:  &RunError{Kind: ErrorKindDelivery, Message: "relay down"},
			want: "[delivery] relay down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *RunError
	assert.Equal(t, "unknown run error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestConstructorsSetKindAndStep(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *RunError
		kind ErrorKind
		step string
	}{
		{NewConfigurationError("bad", cause), ErrorKindConfiguration, StepIDConfig},
		{NewDataUnavailableError(StepIDFetch, "bad", cause), ErrorKindDataUnavailable, StepIDFetch},
		{NewRenderError(StepIDRender, "bad", cause), ErrorKindRender, StepIDRender},
		{NewDeliveryError(StepIDDeliver, "bad", cause), ErrorKindDelivery, StepIDDeliver},
		{NewCancellationError(StepIDFetch, context.Canceled), ErrorKindCancellation, StepIDFetch},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.step, tt.err.Step)
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestRunErrorIsAndAs(t *testing.T) {
	sentinel := errors.New("statcast export contains no rows")
	err := fmt.Errorf("run: %w", NewDataUnavailableError(StepIDFetch, "statcast data unavailable", sentinel))

	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, sentinel)
	assert.NotErrorIs(t, err, ErrDelivery)
	assert.NotErrorIs(t, err, ErrConfiguration)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StepIDFetch, runErr.Step)
	assert.Equal(t, ErrorKindDataUnavailable, KindOf(err))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestWithContext(t *testing.T) {
	err := NewRenderError(StepIDRender, "failed", nil).
		WithContext("path", "/tmp/report.pdf").
		WithContext("events", 3)

	assert.Equal(t, "/tmp/report.pdf", err.Context["path"])
	assert.Equal(t, 3, err.Context["events"])
}
