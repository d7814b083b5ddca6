package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"lblreport/internal/config"
	"lblreport/internal/fangraphs"
	"lblreport/internal/infrastructure"
	"lblreport/internal/operations"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newWeightsCmd(stdout io.Writer) *cobra.Command {
	var season int

	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Print the wOBA weights used for a season",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := infrastructure.NewLogger(cmd.ErrOrStderr(), config.LoadLogging().Level)

			src, err := config.LoadSources()
			if err != nil {
				return operations.NewConfigurationError("failed to load configuration", err)
			}
			if season == 0 {
				date, err := (&config.Config{SourcesConfig: *src}).ReportDate(time.Now())
				if err != nil {
					return operations.NewConfigurationError("invalid report date", err)
				}
				season = date.Year()
			}

			client := &http.Client{Timeout: src.HTTPTimeout}
			source, err := fangraphs.NewSource(src.WeightsRenderer, client, src.HTTPTimeout, logger)
			if err != nil {
				return operations.NewConfigurationError("invalid weights renderer", err)
			}

			w, err := fangraphs.NewScraper(src.FangraphsURL, source, logger).Weights(ctx, season)
			if err != nil {
				return operations.NewDataUnavailableError(operations.StepIDFetch, "wOBA weights unavailable", err)
			}

			out, err := json.MarshalIndent(w, "", "  ")
			if err != nil {
				return err
			}
			logger.DebugContext(ctx, "Weights resolved", slog.Int("requested", season), slog.Int("season", w.Season))
			fmt.Fprintln(stdout, string(out))
			return nil
		},
	}

	cmd.Flags().IntVarP(&season, "season", "s", 0, "season year (default the report date's year)")
	return cmd
}
