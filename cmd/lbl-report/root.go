package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lblreport/internal/app"
	"lblreport/internal/config"
	"lblreport/internal/infrastructure"
	"lblreport/internal/operations"
)

const defaultEnvFile = ".env"

type rootOptions struct {
	envFile string
	date    string
	noSend  bool
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Build and email the Daily Longball Labs Report",
		Version:       config.AppVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return prepareEnv(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), stdout)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.envFile, "env-file", "e", "", "environment file (default .env when present)")
	cmd.PersistentFlags().StringVarP(&opts.date, "date", "d", "", "report date YYYY-MM-DD (default yesterday)")
	cmd.Flags().BoolVar(&opts.noSend, "no-send", false, "render the report without emailing it")

	cmd.AddCommand(newWeightsCmd(stdout), newVersionCmd(stdout))
	return cmd
}

// execute runs the CLI and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if kind := operations.KindOf(err); kind != "" {
			fmt.Fprintf(stderr, "%s: %s error: %v\n", config.AppName, kind, err)
		} else {
			fmt.Fprintf(stderr, "%s: %v\n", config.AppName, err)
		}
		return 1
	}
	return 0
}

// prepareEnv loads the env file and applies flag overrides. Variables
// already set in the environment win over the file.
func prepareEnv(opts *rootOptions) error {
	file := opts.envFile
	if file == "" {
		file = defaultEnvFile
	}
	if err := godotenv.Load(file); err != nil {
		if opts.envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return operations.NewConfigurationError("failed to load env file "+file, err)
		}
	}

	if opts.date != "" {
		if _, err := time.Parse("2006-01-02", opts.date); err != nil {
			return operations.NewConfigurationError("invalid --date", err)
		}
		if err := os.Setenv("DATA_DATE", opts.date); err != nil {
			return err
		}
	}
	if opts.noSend {
		if err := os.Setenv("SEND_EMAIL", "false"); err != nil {
			return err
		}
	}
	return nil
}

func runReport(ctx context.Context, stdout io.Writer) error {
	logger, err := infrastructure.InitializeLogger(config.LoadLogging())
	if err != nil {
		return operations.NewConfigurationError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	cfg, err := config.Load()
	if err != nil {
		runErr := operations.NewConfigurationError("failed to load configuration", err)
		logger.ErrorContext(ctx, "run_failed",
			slog.String("kind", string(runErr.Kind)),
			slog.String("error", err.Error()))
		return runErr
	}

	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "run_failed",
			slog.String("kind", string(operations.KindOf(err))),
			slog.String("error", err.Error()))
		return err
	}

	state, err := application.Run(ctx)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Daily report finished",
		slog.String("run_id", state.ID),
		slog.String("report", state.Report.Path),
		slog.Int("events", state.Report.Events),
		slog.Bool("delivered", state.Delivered))
	fmt.Fprintln(stdout, state.Report.Path)
	return nil
}
