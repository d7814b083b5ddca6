package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// StepObserver receives the outcome of every executed step.
type StepObserver interface {
	ObserveStep(stepID string, status StepStatus, duration time.Duration)
}

// Pipeline runs registered steps strictly one after another and stops at
// the first failure.
type Pipeline struct {
	registry *Registry
	tracer   *RunTracer
	observer StepObserver
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver reports step outcomes to o.
func WithObserver(o StepObserver) Option {
	return func(p *Pipeline) { p.observer = o }
}

// WithTracer wraps every step in a span.
func WithTracer(t *RunTracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline over the steps of registry.
func NewPipeline(registry *Registry, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		registry: registry,
		tracer:   NewRunTracer(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every step in registration order against state.
func (p *Pipeline) Run(ctx context.Context, state *RunState) error {
	steps := p.registry.List()
	ctx, span := p.tracer.TraceRun(ctx, state)
	defer span.End()

	state.Start(p.now())
	for _, step := range steps {
		state.Steps[step.ID()] = NewStepState(step.ID(), step.Name())
	}

	p.logger.InfoContext(ctx, "run_start",
		slog.String("run_id", state.ID),
		slog.String("date", state.Date.Format("2006-01-02")),
		slog.Int("step_count", len(steps)))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			runErr := NewCancellationError(step.ID(), err)
			p.skipRemaining(state, steps[i:], "run cancelled")
			return p.fail(ctx, span, state, runErr)
		}

		if err := p.executeStep(ctx, state, step, i+1, len(steps)); err != nil {
			p.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return p.fail(ctx, span, state, err)
		}
	}

	state.Complete(p.now())
	p.tracer.RecordRunCompletion(span, state, nil)
	p.logger.InfoContext(ctx, "run_completed",
		slog.String("run_id", state.ID),
		slog.Duration("duration", state.EndTime.Sub(state.StartTime)))
	return nil
}

func (p *Pipeline) executeStep(ctx context.Context, state *RunState, step Step, n, total int) error {
	stepState := state.GetStep(step.ID())
	ctx, span := p.tracer.TraceStep(ctx, state.ID, step)
	defer span.End()

	p.logger.InfoContext(ctx, "executing_step",
		slog.String("run_id", state.ID),
		slog.String("step", step.ID()),
		slog.Int("step_number", n),
		slog.Int("total_steps", total))

	stepState.Start(p.now())

	err := step.Validate(state)
	if err == nil {
		err = step.Execute(ctx, state)
	}
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		err = NewCancellationError(step.ID(), err)
	}

	if err != nil {
		stepState.Fail(p.now(), err)
		p.tracer.RecordStepCompletion(span, stepState)
		p.observe(stepState)
		p.logger.ErrorContext(ctx, "step_failed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("kind", string(KindOf(err))),
			slog.Duration("duration", stepState.Duration()),
			slog.String("error", err.Error()))
		return err
	}

	stepState.Complete(p.now())
	p.tracer.RecordStepCompletion(span, stepState)
	p.observe(stepState)
	p.logger.InfoContext(ctx, "step_completed",
		slog.String("run_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", stepState.Duration()))
	return nil
}

func (p *Pipeline) skipRemaining(state *RunState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.Status == StepStatusPending {
			s.Skip(reason)
			p.observe(s)
		}
	}
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, state *RunState, err error) error {
	state.Fail(p.now(), err)
	p.tracer.RecordRunCompletion(span, state, err)
	p.logger.ErrorContext(ctx, "run_failed",
		slog.String("run_id", state.ID),
		slog.String("kind", string(KindOf(err))),
		slog.String("error", err.Error()))
	return err
}

func (p *Pipeline) observe(s *StepState) {
	if p.observer != nil {
		p.observer.ObserveStep(s.ID, s.Status, s.Duration())
	}
}
