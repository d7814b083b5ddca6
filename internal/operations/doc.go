// Package operations runs the steps of a daily report run.
//
// A Step is one unit of work with an ID, a Validate check on the shared
// RunState and an Execute method. The Registry keeps steps in registration
// order and the Pipeline executes them one after another:
//
//	registry := operations.NewRegistry()
//	registry.Register(fetch)
//	registry.Register(render)
//	err := operations.NewPipeline(registry, logger).Run(ctx, state)
//
// The first failing step ends the run; every later step is marked skipped.
// Failures are RunErrors carrying an ErrorKind (configuration,
// data_unavailable, render, delivery, cancellation, invalid_state) so
// callers can map them to exit codes and metrics. There are no retries:
// the next scheduled run is the retry.
//
// Each run and step gets an OpenTelemetry span, and a StepObserver, when
// set, receives every step outcome for metrics.
package operations
