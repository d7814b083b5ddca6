package app

import (
	"context"
	"log/slog"

	"lblreport/internal/analytics"
	"lblreport/internal/config"
	"lblreport/internal/files"
	"lblreport/internal/operations"
	"lblreport/internal/report"
)

// configStep re-validates the settings and prepares the working
// directories. It runs before anything is fetched.
type configStep struct {
	app *Application
}

func (s *configStep) ID() string   { return operations.StepIDConfig }
func (s *configStep) Name() string { return "Configuration" }

func (s *configStep) Validate(*operations.RunState) error { return nil }

func (s *configStep) Execute(ctx context.Context, state *operations.RunState) error {
	a := s.app
	if err := a.Config.Validate(); err != nil {
		return operations.NewConfigurationError("invalid configuration", err)
	}
	if err := a.Paths.EnsureDirectories(a.Logger); err != nil {
		return operations.NewConfigurationError("failed to prepare directories", err)
	}
	a.Paths.LogPathResolution(a.Logger)

	pruner := files.NewPruner(a.Paths.DataDir, a.Config.RetentionDays, a.Logger)
	if _, err := pruner.Prune(state.Date); err != nil {
		a.Logger.WarnContext(ctx, "Failed to prune working files", slog.String("error", err.Error()))
	}

	step := state.GetStep(s.ID())
	step.Metadata["players"] = len(a.Config.LabeledPlayers)
	step.Metadata["teams"] = len(a.Config.TrackedTeams)
	step.Metadata["send_email"] = a.Config.SendEmail

	a.Logger.InfoContext(ctx, "Configuration loaded",
		slog.String("date", state.Date.Format("2006-01-02")),
		slog.Int("players", len(a.Config.LabeledPlayers)),
		slog.Any("teams", a.Config.TrackedTeams),
		slog.Int("recipients", len(a.Config.Recipients)),
		slog.Bool("send_email", a.Config.SendEmail))
	return nil
}

// fetchStep downloads the batted balls and the season's weights.
type fetchStep struct {
	app *Application
}

func (s *fetchStep) ID() string   { return operations.StepIDFetch }
func (s *fetchStep) Name() string { return "Data Fetch" }

func (s *fetchStep) Validate(*operations.RunState) error { return nil }

func (s *fetchStep) Execute(ctx context.Context, state *operations.RunState) error {
	a := s.app

	res, err := a.fetcher.Fetch(ctx, state.Date)
	if err != nil {
		return operations.NewDataUnavailableError(s.ID(), "statcast data unavailable", err).
			WithContext("date", state.Date.Format("2006-01-02"))
	}
	state.Events = res.Events

	if _, err := a.snapshots.WriteSnapshot(state.Date, res.Events); err != nil {
		a.Logger.WarnContext(ctx, "Failed to write batted-ball snapshot", slog.String("error", err.Error()))
	}

	weights, err := a.weights.Weights(ctx, state.Date.Year())
	if err != nil {
		return operations.NewDataUnavailableError(s.ID(), "wOBA weights unavailable", err).
			WithContext("season", state.Date.Year())
	}
	state.Weights = weights

	step := state.GetStep(s.ID())
	step.Metadata["pitches"] = res.Pitches
	step.Metadata["batted_balls"] = len(res.Events)
	step.Metadata["season"] = weights.Season
	return nil
}

// classifyStep applies the report rules to the fetched events.
type classifyStep struct {
	app *Application
}

func (s *classifyStep) ID() string   { return operations.StepIDClassify }
func (s *classifyStep) Name() string { return "Classification" }

func (s *classifyStep) Validate(state *operations.RunState) error {
	if state.Weights == nil {
		return operations.NewInvalidStateError(s.ID(), "weights were not fetched")
	}
	return nil
}

func (s *classifyStep) Execute(ctx context.Context, state *operations.RunState) error {
	a := s.app

	c := analytics.Classify(state.Events, a.roster, *state.Weights, a.rules)
	state.Classification = &c

	a.Logger.InfoContext(ctx, "Classified batted balls",
		slog.Int("batted_balls", len(state.Events)),
		slog.Int("action_items", len(c.ActionItems)),
		slog.Int("front_row_joes", len(c.FrontRowJoes)))

	if _, err := a.workbooks.WriteWorkbook(state.Date, c, state.Weights); err != nil {
		a.Logger.WarnContext(ctx, "Failed to write events workbook", slog.String("error", err.Error()))
	}

	step := state.GetStep(s.ID())
	step.Metadata["action_items"] = len(c.ActionItems)
	step.Metadata["front_row_joes"] = len(c.FrontRowJoes)
	return nil
}

// renderStep writes the PDF to OUTPUT_DIR.
type renderStep struct {
	app *Application
}

func (s *renderStep) ID() string   { return operations.StepIDRender }
func (s *renderStep) Name() string { return "Report Rendering" }

func (s *renderStep) Validate(state *operations.RunState) error {
	if state.Classification == nil {
		return operations.NewInvalidStateError(s.ID(), "events were not classified")
	}
	return nil
}

func (s *renderStep) Execute(ctx context.Context, state *operations.RunState) error {
	a := s.app

	var logo *report.Logo
	if a.Paths.LogoPath != "" {
		l, err := report.LoadLogo(a.Paths.LogoPath)
		if err != nil {
			a.Logger.WarnContext(ctx, "Logo unavailable, rendering without it",
				slog.String("path", a.Paths.LogoPath),
				slog.Bool("exists", config.FileExists(a.Paths.LogoPath)),
				slog.String("error", err.Error()))
		} else {
			logo = l
		}
	}

	rep, err := a.renderer.WriteFile(a.Paths.ReportPath, report.Input{
		Date:           state.Date,
		GeneratedAt:    a.now(),
		Classification: *state.Classification,
		Definitions:    a.rules.Definitions(),
		Weights:        state.Weights,
		Logo:           logo,
	})
	if err != nil {
		return operations.NewRenderError(s.ID(), "failed to render report", err).
			WithContext("path", a.Paths.ReportPath)
	}
	state.Report = rep

	state.GetStep(s.ID()).Metadata["bytes"] = rep.SizeBytes
	return nil
}

// deliverStep emails the rendered report.
type deliverStep struct {
	app *Application
}

func (s *deliverStep) ID() string   { return operations.StepIDDeliver }
func (s *deliverStep) Name() string { return "Delivery" }

func (s *deliverStep) Validate(state *operations.RunState) error {
	if state.Report == nil {
		return operations.NewInvalidStateError(s.ID(), "no report to deliver")
	}
	return nil
}

func (s *deliverStep) Execute(ctx context.Context, state *operations.RunState) error {
	sent, err := s.app.dispatcher.Deliver(ctx, state.Report)
	if err != nil {
		return operations.NewDeliveryError(s.ID(), "failed to email report", err).
			WithContext("report", state.Report.Path)
	}
	state.Delivered = sent
	return nil
}
