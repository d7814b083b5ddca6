package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lblreport/internal/config"
	"lblreport/pkg/contracts/domain"
)

// SnapshotHeaders are the columns of the batted-ball snapshot: the
// de-duplicated hit_into_play rows of the day with play IDs and batter names
// attached. Names follow the Savant export so the file reads back with the
// same tooling.
var SnapshotHeaders = []string{
	"game_date", "game_pk", "batter", "batter_name", "pitcher", "events",
	"description", "launch_speed", "launch_angle", "hit_location",
	"hit_distance_sc", "inning", "inning_topbot", "at_bat_number",
	"pitch_number", "home_team", "away_team", "play_id",
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger.With(slog.String("component", "exporter"))}
}

// WriteSnapshot writes the batted balls of date to the snapshot file and
// returns its path.
func (w *CSVWriter) WriteSnapshot(date time.Time, events []domain.StatcastEvent) (string, error) {
	path := w.paths.GetStatcastSnapshotPath(date)

	stream, err := w.CreateStreamWriter(path, SnapshotHeaders)
	if err != nil {
		return "", err
	}
	for i, ev := range events {
		if err := stream.WriteRecord(snapshotRow(ev)); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("failed to finish snapshot: %w", err)
	}

	w.logger.Info("Wrote batted-ball snapshot",
		slog.String("path", path),
		slog.Int("record_count", len(events)))
	return path, nil
}

func snapshotRow(ev domain.StatcastEvent) []string {
	return []string{
		ev.GameDate.Format("2006-01-02"),
		formatInt(ev.GamePK),
		formatInt(ev.Batter),
		ev.BatterName,
		formatInt(ev.Pitcher),
		ev.Event,
		ev.Description,
		formatOptionalFloat(ev.LaunchSpeed),
		formatOptionalFloat(ev.LaunchAngle),
		formatOptionalInt(ev.HitLocation),
		formatOptionalFloat(ev.HitDistance),
		formatInt(int64(ev.Inning)),
		string(ev.InningTopBot),
		formatInt(int64(ev.AtBatNumber)),
		formatInt(int64(ev.PitchNumber)),
		ev.HomeTeam,
		ev.AwayTeam,
		ev.PlayID,
	}
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer at filePath.
// Relative paths resolve against DATA_DIR.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.paths.DataDir, filePath)
}
