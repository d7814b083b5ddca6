package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"


	"lblreport/internal/analytics"
	"lblreport/internal/config"
	"lblreport/internal/delivery"
	"lblreport/internal/exporter"
	"lblreport/internal/fangraphs"
	"lblreport/internal/infrastructure"
	"lblreport/internal/mlbapi"
	"lblreport/internal/operations"
	"lblreport/internal/report"
	"lblreport/internal/statcast"
	"lblreport/pkg/contracts/domain"
)

const (
	shutdownTimeout = 5 * time.Second
	pushTimeout     = 10 * time.Second
)

// EventFetcher returns the enriched batted balls of a date.
type EventFetcher interface {
	Fetch(ctx context.Context, date time.Time) (*statcast.Result, error)
}

// WeightsSource returns the wOBA weights that apply to a season.
type WeightsSource interface {
	Weights(ctx context.Context, season int) (*domain.WobaWeights, error)
}

// Application represents one configured report job
type Application struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	Metrics *infrastructure.RunMetrics

	rules  analytics.Rules
	roster analytics.Roster

	fetcher    EventFetcher
	weights    WeightsSource
	sender     delivery.Sender
	snapshots  *exporter.CSVWriter
	workbooks  *exporter.WorkbookWriter
	renderer   *report.Renderer
	dispatcher *delivery.Dispatcher

	now func() time.Time
}

// Option overrides a collaborator of the Application.
type Option func(*Application)

// WithFetcher replaces the Statcast fetcher.
func WithFetcher(f EventFetcher) Option {
	return func(a *Application) { a.fetcher = f }
}

// WithWeightsSource replaces the FanGraphs scraper.
func WithWeightsSource(w WeightsSource) Option {
	return func(a *Application) { a.weights = w }
}

// WithSender replaces the mail transport.
func WithSender(s delivery.Sender) Option {
	return func(a *Application) { a.sender = s }
}

// WithClock overrides time.Now for the report date, timestamps and subject.
func WithClock(now func() time.Time) Option {
	return func(a *Application) { a.now = now }
}

// New builds the application for cfg. Nothing touches the network here;
// errors are configuration errors.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := config.NewPaths(cfg.PathsConfig)
	if err != nil {
		return nil, operations.NewConfigurationError("failed to resolve paths", err)
	}

	rules := analytics.DefaultRules()
	if cfg.RulesFile != "" {
		rules, err = analytics.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, operations.NewConfigurationError("failed to load rules", err).
				WithContext("path", cfg.RulesFile)
		}
		logger.Info("Loaded classification rules", slog.String("path", cfg.RulesFile))
	}

	a := &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Metrics:   infrastructure.NewRunMetrics(),
		rules:     rules,
		roster:    analytics.NewRoster(cfg.LabeledPlayers, cfg.TrackedTeams),
		snapshots: exporter.NewCSVWriter(paths, logger),
		workbooks: exporter.NewWorkbookWriter(paths, logger),
		renderer:  report.NewRenderer(logger),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	if a.fetcher == nil {
		mlb := mlbapi.NewClient(cfg.MLBAPIURL, httpClient, cfg.MLBAPIRate, logger)
		savant := statcast.NewClient(cfg.StatcastURL, httpClient, logger)
		a.fetcher = statcast.NewFetcher(savant, mlb, mlb, logger)
	}

	if a.weights == nil {
		source, err := fangraphs.NewSource(cfg.WeightsRenderer, httpClient, cfg.HTTPTimeout, logger)
		if err != nil {
			return nil, operations.NewConfigurationError("invalid weights renderer", err)
		}
		a.weights = fangraphs.NewScraper(cfg.FangraphsURL, source, logger)
	}

	if a.sender == nil && cfg.SendEmail {
		sender, err := newSender(ctx, cfg, logger)
		if err != nil {
			return nil, operations.NewConfigurationError("failed to configure mail transport", err)
		}
		a.sender = sender
	}

	a.dispatcher = delivery.NewDispatcher(cfg.SendEmail, a.sender, cfg.SenderEmail, cfg.Recipients, logger).
		WithClock(a.now)

	return a, nil
}

func newSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (delivery.Sender, error) {
	switch cfg.Transport {
	case "ses":
		return delivery.NewSESSender(ctx, logger)
	case "", "smtp":
		return delivery.NewSMTPSender(delivery.SMTPConfig{
			Host:     cfg.SMTPServer,
			Port:     cfg.SMTPPort,
			TLSMode:  cfg.SMTPTLS,
			Username: cfg.SenderEmail,
			Password: cfg.SenderPassword,
			Timeout:  cfg.HTTPTimeout,
		}, nil, logger), nil
	default:
		return nil, fmt.Errorf("unsupported delivery transport: %s", cfg.Transport)
	}
}

// Steps returns the run's steps in execution order.
func (a *Application) Steps() []operations.Step {
	return []operations.Step{
		&configStep{app: a},
		&fetchStep{app: a},
		&classifyStep{app: a},
		&renderStep{app: a},
		&deliverStep{app: a},
	}
}

// Run executes one daily run and returns its final state. The returned
// error, if any, is an operations.RunError.
func (a *Application) Run(ctx context.Context) (*operations.RunState, error) {
	date, err := a.Config.ReportDate(a.now())
	if err != nil {
		return nil, operations.NewConfigurationError("invalid report date", err)
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	providers, err := infrastructure.InitializeOTel(a.Config.Telemetry, runID, a.Logger)
	if err != nil {
		return nil, operations.NewConfigurationError("failed to initialize tracing", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(sctx); err != nil {
			a.Logger.WarnContext(ctx, "Tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	registry := operations.NewRegistry()
	for _, step := range a.Steps() {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}

	pipeline := operations.NewPipeline(registry, a.Logger,
		operations.WithObserver(a.Metrics),
		operations.WithTracer(operations.NewRunTracer()),
		operations.WithClock(a.now),
	)

	state := operations.NewRunState(runID, date)
	runErr := pipeline.Run(ctx, state)

	a.Metrics.ObserveRun(state)
	a.pushMetrics(ctx)

	return state, runErr
}

// pushMetrics is best effort; a failed push never fails the run.
func (a *Application) pushMetrics(ctx context.Context) {
	url := a.Config.Telemetry.PushgatewayURL
	if url == "" {
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := a.Metrics.Push(pctx, url, a.Config.Telemetry.Environment); err != nil {
		a.Logger.WarnContext(ctx, "Metrics push failed", slog.String("error", err.Error()))
		return
	}
	a.Logger.DebugContext(ctx, "Metrics pushed", slog.String("url", url))
}
