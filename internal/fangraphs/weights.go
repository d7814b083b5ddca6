// Package fangraphs reads the season wOBA linear weights from the FanGraphs
// "guts" constants page.
package fangraphs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"

	"lblreport/pkg/contracts/domain"
)

var (
	// ErrTableNotFound is returned when the page has no weights table.
	ErrTableNotFound = errors.New("wOBA weights table not found")
	// ErrWeightsNotFound is returned when no row covers the requested season.
	ErrWeightsNotFound = errors.New("no wOBA weights for season")
)

// column positions used when the header cannot be mapped by name
var fallbackColumns = map[string]int{
	"season": 0,
	"wbb":    3,
	"whbp":   4,
	"w1b":    5,
	"w2b":    6,
	"w3b":    7,
	"whr":    8,
}

var validate = validator.New()

// ParseTable extracts every season row of the guts table in html.
func ParseTable(html string) ([]domain.WobaWeights, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse weights page: %w", err)
	}

	table, header := findTable(doc)
	if table == nil {
		return nil, ErrTableNotFound
	}
	cols := mapColumns(header)

	var rows []domain.WobaWeights
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		texts := make([]string, cells.Length())
		cells.Each(func(i int, td *goquery.Selection) {
			texts[i] = strings.TrimSpace(td.Text())
		})
		if w, ok := parseRow(texts, cols); ok {
			rows = append(rows, w)
		}
	})

	if len(rows) == 0 {
		return nil, ErrTableNotFound
	}
	return rows, nil
}

// SelectSeason returns the row for season, or the latest earlier season
// when the current one is not published yet.
func SelectSeason(rows []domain.WobaWeights, season int) (*domain.WobaWeights, error) {
	var best *domain.WobaWeights
	for i := range rows {
		r := rows[i]
		if r.Season > season {
			continue
		}
		if best == nil || r.Season > best.Season {
			best = &r
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w %d", ErrWeightsNotFound, season)
	}
	if err := validate.Struct(best); err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrWeightsNotFound, best.Season, err)
	}
	return best, nil
}

// findTable locates the table whose header row names the weights. The page
// layout and CSS classes change often; the header labels do not.
func findTable(doc *goquery.Document) (*goquery.Selection, []string) {
	var (
		found  *goquery.Selection
		header []string
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cells := table.Find("thead th")
		if cells.Length() == 0 {
			cells = table.Find("tr").First().Find("th, td")
		}
		labels := make([]string, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			labels = append(labels, normalizeHeader(c.Text()))
		})
		if contains(labels, "season") && contains(labels, "whr") {
			found = table
			header = labels
			return false
		}
		return true
	})
	return found, header
}

func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(fallbackColumns))
	for name, pos := range fallbackColumns {
		cols[name] = pos
		for i, label := range header {
			if label == name {
				cols[name] = i
				break
			}
		}
	}
	return cols
}

func parseRow(cells []string, cols map[string]int) (domain.WobaWeights, bool) {
	get := func(name string) (float64, bool) {
		i := cols[name]
		if i >= len(cells) {
			return 0, false
		}
		v, err := strconv.ParseFloat(cells[i], 64)
		return v, err == nil
	}

	var (
		w  domain.WobaWeights
		ok = true
	)
	season, sok := get("season")
	w.Season = int(season)
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"wbb", &w.Walk},
		{"whbp", &w.HBP},
		{"w1b", &w.Single},
		{"w2b", &w.Double},
		{"w3b", &w.Triple},
		{"whr", &w.HomeRun},
	} {
		v, vok := get(f.name)
		*f.dst = v
		ok = ok && vok
	}
	return w, ok && sok && w.Season > 0
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Scraper fetches the guts page and selects a season row.
type Scraper struct {
	url    string
	source PageSource
	logger *slog.Logger
}

// NewScraper creates a scraper for the page at url.
func NewScraper(url string, source PageSource, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		url:    url,
		source: source,
		logger: logger.With(slog.String("component", "fangraphs")),
	}
}

// Weights returns the weights that apply to season.
func (s *Scraper) Weights(ctx context.Context, season int) (*domain.WobaWeights, error) {
	html, err := s.source.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}

	rows, err := ParseTable(html)
	if err != nil {
		return nil, err
	}

	w, err := SelectSeason(rows, season)
	if err != nil {
		return nil, err
	}

	if w.Season != season {
		s.logger.WarnContext(ctx, "Weights for report season not published, using earlier season",
			slog.Int("season", season),
			slog.Int("used_season", w.Season))
	}
	s.logger.InfoContext(ctx, "Loaded wOBA weights",
		slog.Int("season", w.Season),
		slog.Float64("w1b", w.Single),
		slog.Float64("whr", w.HomeRun))
	return w, nil
}
