package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lblreport/pkg/contracts/domain"
)

// Paths contains all the file system locations of a run.
// This is the single source of truth for file paths in the application.
type Paths struct {
	DataDir   string
	OutputDir string
	LogsDir   string
	LogoPath  string

	// ReportPath is <OUTPUT_DIR>/daily_lbl_report.pdf
	ReportPath string
}

// NewPaths resolves the configured locations against the working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	abs := func(p string) (string, error) {
		if p == "" || filepath.IsAbs(p) {
			return p, nil
		}
		return filepath.Abs(p)
	}

	dataDir, err := abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DATA_DIR: %w", err)
	}
	outputDir, err := abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve OUTPUT_DIR: %w", err)
	}
	logsDir, err := abs(cfg.LogsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve LOGS_DIR: %w", err)
	}
	logoPath, err := abs(cfg.LogoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve LOGO_PATH: %w", err)
	}

	return &Paths{
		DataDir:    dataDir,
		OutputDir:  outputDir,
		LogsDir:    logsDir,
		LogoPath:   logoPath,
		ReportPath: filepath.Join(outputDir, domain.ReportFileName),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{p.DataDir, p.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetStatcastSnapshotPath returns the batted-ball snapshot CSV kept for a date
func (p *Paths) GetStatcastSnapshotPath(date time.Time) string {
	return filepath.Join(p.DataDir, fmt.Sprintf("statcast_%s.csv", date.Format("2006-01-02")))
}

// GetEventsWorkbookPath returns the classified-events workbook for a date
func (p *Paths) GetEventsWorkbookPath(date time.Time) string {
	return filepath.Join(p.DataDir, fmt.Sprintf("daily_lbl_events_%s.xlsx", date.Format("2006-01-02")))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved locations for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("data", p.DataDir),
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("report", p.ReportPath),
			slog.String("logo", p.LogoPath),
			slog.Bool("logo_exists", FileExists(p.LogoPath)),
		))
}
