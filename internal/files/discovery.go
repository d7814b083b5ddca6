package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// FileInfo represents a dated working file
type FileInfo struct {
	Path string
	Name string
	Size int64
	Date time.Time
}

// datedName matches statcast_2024-06-01.csv, daily_lbl_events_2024-06-01.xlsx
// and the like.
var datedName = regexp.MustCompile(`_(\d{4}-\d{2}-\d{2})\.(csv|xlsx)$`)

// Discovery finds working files in one directory
type Discovery struct {
	dir string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(dir string) *Discovery {
	return &Discovery{dir: dir}
}

// FindWorkingFiles lists the dated working files, oldest first. A missing
// directory holds no files.
func (d *Discovery) FindWorkingFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := datedName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		date, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path: filepath.Join(d.dir, entry.Name()),
			Name: entry.Name(),
			Size: info.Size(),
			Date: date,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].Date.Equal(files[j].Date) {
			return files[i].Date.Before(files[j].Date)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// FilterOlderThan keeps the files dated strictly before cutoff.
func FilterOlderThan(files []FileInfo, cutoff time.Time) []FileInfo {
	var old []FileInfo
	for _, f := range files {
		if f.Date.Before(cutoff) {
			old = append(old, f)
		}
	}
	return old
}
