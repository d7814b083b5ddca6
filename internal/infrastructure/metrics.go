package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"lblreport/internal/operations"
	"lblreport/pkg/contracts/domain"
)

const metricsJob = "lbl_report"

// RunMetrics collects batch-job metrics for one run. A run does not live
// long enough to be scraped, so the registry is pushed to a Pushgateway.
type RunMetrics struct {
	registry *prometheus.Registry

	stepDuration  *prometheus.GaugeVec
	stepsTotal    *prometheus.CounterVec
	events        *prometheus.GaugeVec
	runDuration   prometheus.Gauge
	runFailures   *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
	reportBytes   prometheus.Gauge
	fetchedEvents prometheus.Gauge
}

// NewRunMetrics registers the run collectors on a private registry.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		stepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lbl_report_step_duration_seconds",
			Help: "Duration of each step of the last run.",
		}, []string{"step"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lbl_report_steps_total",
			Help: "Steps executed, by final status.",
		}, []string{"step", "status"}),
		events: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lbl_report_classified_events",
			Help: "Classified events in the last report, by category.",
		}, []string{"category"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lbl_report_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		runFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lbl_report_run_failures_total",
			Help: "Failed runs, by error kind.",
		}, []string{"kind"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lbl_report_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
		reportBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lbl_report_pdf_bytes",
			Help: "Size of the last rendered report.",
		}),
		fetchedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lbl_report_fetched_batted_balls",
			Help: "Batted balls fetched from Statcast for the report date.",
		}),
	}

	m.registry.MustRegister(
		m.stepDuration, m.stepsTotal, m.events, m.runDuration,
		m.runFailures, m.lastSuccess, m.reportBytes, m.fetchedEvents,
	)
	return m
}

// ObserveStep implements operations.StepObserver
func (m *RunMetrics) ObserveStep(stepID string, status operations.StepStatus, duration time.Duration) {
	m.stepsTotal.WithLabelValues(stepID, string(status)).Inc()
	if status != operations.StepStatusSkipped {
		m.stepDuration.WithLabelValues(stepID).Set(duration.Seconds())
	}
}

// ObserveRun records the outcome of a finished run.
func (m *RunMetrics) ObserveRun(state *operations.RunState) {
	if state.EndTime != nil {
		m.runDuration.Set(state.EndTime.Sub(state.StartTime).Seconds())
	}
	m.fetchedEvents.Set(float64(len(state.Events)))
	if state.Classification != nil {
		m.events.WithLabelValues(string(domain.CategoryActionItem)).Set(float64(len(state.Classification.ActionItems)))
		m.events.WithLabelValues(string(domain.CategoryFrontRowJoe)).Set(float64(len(state.Classification.FrontRowJoes)))
	}
	if state.Report != nil {
		m.reportBytes.Set(float64(state.Report.SizeBytes))
	}

	if state.Status == operations.RunStatusCompleted && state.EndTime != nil {
		m.lastSuccess.Set(float64(state.EndTime.Unix()))
		return
	}
	if state.Error != nil {
		kind := string(operations.KindOf(state.Error))
		if kind == "" {
			kind = "unknown"
		}
		m.runFailures.WithLabelValues(kind).Inc()
	}
}

// Gatherer exposes the registry, mainly for tests.
func (m *RunMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Push sends the collected metrics to the Pushgateway at url, grouped by
// the run's environment.
func (m *RunMetrics) Push(ctx context.Context, url, environment string) error {
	pusher := push.New(url, metricsJob).
		Gatherer(m.registry).
		Grouping("environment", environment)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
