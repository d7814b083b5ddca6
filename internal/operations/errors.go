package operations

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal run error.
type ErrorKind string

const (
	ErrorKindConfiguration   ErrorKind = "configuration"
	ErrorKindDataUnavailable ErrorKind = "data_unavailable"
	ErrorKindRender          ErrorKind = "render"
	ErrorKindDelivery        ErrorKind = "delivery"
	ErrorKindCancellation    ErrorKind = "cancellation"
	ErrorKindInvalidState    ErrorKind = "invalid_state"
)

// RunError is the error type returned by every step of the daily run.
// All run errors are fatal; the daily schedule is the only retry.
type RunError struct {
	Kind    ErrorKind              `json:"kind"`
	Step    string                 `json:"step,omitempty"`
	Message string                 `json:"message"`
	Cause   error                  `json:"cause,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *RunError) Error() string {
	if e == nil {
		return "unknown run error"
	}
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches any RunError of the same kind, so callers can write
// errors.Is(err, operations.ErrDataUnavailable).
func (e *RunError) Is(target error) bool {
	t, ok := target.(*RunError)
	if !ok || e == nil {
		return false
	}
	return t.Kind == e.Kind && t.Step == "" && t.Message == ""
}

// WithContext attaches a key/value pair to the error and returns it.
func (e *RunError) WithContext(key string, value interface{}) *RunError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Kind sentinels for errors.Is.
var (
	ErrConfiguration   = &RunError{Kind: ErrorKindConfiguration}
	ErrDataUnavailable = &RunError{Kind: ErrorKindDataUnavailable}
	ErrRender          = &RunError{Kind: ErrorKindRender}
	ErrDelivery        = &RunError{Kind: ErrorKindDelivery}
	ErrCancelled       = &RunError{Kind: ErrorKindCancellation}
)

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, cause error) *RunError {
	return &RunError{
		Kind:    ErrorKindConfiguration,
		Step:    StepIDConfig,
		Message: message,
		Cause:   cause,
	}
}

// NewDataUnavailableError creates a new data-unavailable error
func NewDataUnavailableError(step, message string, cause error) *RunError {
	return &RunError{
		Kind:    ErrorKindDataUnavailable,
		Step:    step,
		Message: message,
		Cause:   cause,
	}
}

// NewRenderError creates a new render error
func NewRenderError(step, message string, cause error) *RunError {
	return &RunError{
		Kind:    ErrorKindRender,
		Step:    step,
		Message: message,
		Cause:   cause,
	}
}

// NewDeliveryError creates a new delivery error
func NewDeliveryError(step, message string, cause error) *RunError {
	return &RunError{
		Kind:    ErrorKindDelivery,
		Step:    step,
		Message: message,
		Cause:   cause,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string, cause error) *RunError {
	return &RunError{
		Kind:    ErrorKindCancellation,
		Step:    step,
		Message: "run was cancelled",
		Cause:   cause,
	}
}

// NewInvalidStateError reports a step started without its inputs.
func NewInvalidStateError(step, message string) *RunError {
	return &RunError{
		Kind:    ErrorKindInvalidState,
		Step:    step,
		Message: message,
	}
}

// KindOf returns the kind of a run error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var rErr *RunError
	if errors.As(err, &rErr) {
		return rErr.Kind
	}
	return ""
}
