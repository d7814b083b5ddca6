package files

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

// Pruner deletes working files outside the retention window
type Pruner struct {
	discovery *Discovery
	keepDays  int
	logger    *slog.Logger
}

// NewPruner keeps keepDays days of files in dir. Zero disables pruning.
func NewPruner(dir string, keepDays int, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		discovery: NewDiscovery(dir),
		keepDays:  keepDays,
		logger:    logger.With(slog.String("component", "files")),
	}
}

// Prune removes files dated more than keepDays before date and returns
// their paths. Files that vanish concurrently are not an error.
func (p *Pruner) Prune(date time.Time) ([]string, error) {
	if p.keepDays <= 0 {
		return nil, nil
	}

	found, err := p.discovery.FindWorkingFiles()
	if err != nil {
		return nil, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := day.AddDate(0, 0, -p.keepDays)

	var removed []string
	var errs []error
	for _, f := range FilterOlderThan(found, cutoff) {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", f.Name, err))
			continue
		}
		removed = append(removed, f.Path)
	}

	if len(removed) > 0 {
		p.logger.Info("Pruned working files",
			slog.Int("removed", len(removed)),
			slog.String("cutoff", cutoff.Format("2006-01-02")))
	}
	return removed, errors.Join(errs...)
}
