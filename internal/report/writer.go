package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lblreport/pkg/contracts/domain"
)

// WriteFile renders in to path. The document goes to a temporary file in
// the same directory first and is renamed into place only when complete,
// so a failed render leaves any previous report untouched.
func (r *Renderer) WriteFile(path string, in Input) (*domain.Report, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary report: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	hash := sha256.New()
	counter := &countingWriter{}
	if err := r.Render(io.MultiWriter(tmp, hash, counter), in); err != nil {
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("failed to flush report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return nil, fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("failed to publish report: %w", err)
	}
	committed = true

	r.logger.Info("Report written",
		slog.String("path", path),
		slog.Int64("bytes", counter.n),
		slog.Int("events", in.Classification.Total()))

	return &domain.Report{
		Path:      path,
		Date:      truncateDay(in.Date),
		SizeBytes: counter.n,
		SHA256:    hex.EncodeToString(hash.Sum(nil)),
		Events:    in.Classification.Total(),
	}, nil
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
