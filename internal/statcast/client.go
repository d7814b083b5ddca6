package statcast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrUnexpectedStatus is wrapped when Savant answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("unexpected status from Baseball Savant")

// ErrExportTooLarge is returned instead of a truncated export.
var ErrExportTooLarge = errors.New("statcast export exceeds size limit")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// maxExportBytes caps the size of a single day's export.
const maxExportBytes = 64 << 20

// Client downloads the statcast_search CSV export.
type Client struct {
	searchURL  string
	httpClient *http.Client
	logger     *slog.Logger
	maxBytes   int64
}

// NewClient creates a Savant client for searchURL, normally
// https://baseballsavant.mlb.com/statcast_search/csv.
func NewClient(searchURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		searchURL:  searchURL,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "statcast")),
		maxBytes:   maxExportBytes,
	}
}

// Download returns the raw CSV export of every pitch thrown on date.
func (c *Client) Download(ctx context.Context, date time.Time) ([]byte, error) {
	endpoint, err := c.queryURL(date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("statcast request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read statcast export: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrExportTooLarge, c.maxBytes)
	}
	body = bytes.TrimPrefix(body, utf8BOM)

	c.logger.InfoContext(ctx, "Downloaded statcast export",
		slog.String("date", date.Format("2006-01-02")),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *Client) queryURL(date time.Time) (string, error) {
	u, err := url.Parse(c.searchURL)
	if err != nil {
		return "", fmt.Errorf("invalid statcast URL %q: %w", c.searchURL, err)
	}

	day := date.Format("2006-01-02")
	q := u.Query()
	q.Set("all", "true")
	q.Set("type", "details")
	q.Set("player_type", "pitcher")
	q.Set("hfGT", "R|PO|S|")
	q.Set("game_date_gt", day)
	q.Set("game_date_lt", day)
	q.Set("min_pitches", "0")
	q.Set("min_results", "0")
	q.Set("group_by", "name")
	q.Set("sort_col", "pitches")
	q.Set("sort_order", "desc")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
