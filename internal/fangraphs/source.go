package fangraphs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// ErrUnexpectedStatus is wrapped when the page answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("unexpected status from FanGraphs")

// ErrPageTooLarge is returned instead of a truncated page.
var ErrPageTooLarge = errors.New("weights page exceeds size limit")

const maxPageBytes = 16 << 20

// PageSource returns the HTML of a page.
type PageSource interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPSource fetches pages with a plain GET.
type HTTPSource struct {
	Client *http.Client

	// MaxBytes caps the page size; zero means 16 MiB.
	MaxBytes int64
}

// Fetch implements PageSource
func (s HTTPSource) Fetch(ctx context.Context, url string) (string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; lbl-report)")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("weights request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = maxPageBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read weights page: %w", err)
	}
	if int64(len(body)) > limit {
		return "", fmt.Errorf("%w: more than %d bytes", ErrPageTooLarge, limit)
	}
	return string(body), nil
}

// ChromeSource renders pages in headless Chrome. The guts page builds its
// table client-side, so a plain GET can come back without it.
type ChromeSource struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// Fetch implements PageSource
func (s ChromeSource) Fetch(ctx context.Context, url string) (string, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	start := time.Now()
	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("table", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	logger.InfoContext(ctx, "Rendered weights page",
		slog.String("url", url),
		slog.Int("bytes", len(html)),
		slog.Duration("elapsed", time.Since(start)))
	return html, nil
}

// NewSource picks the page source for a WEIGHTS_RENDERER value.
func NewSource(renderer string, client *http.Client, timeout time.Duration, logger *slog.Logger) (PageSource, error) {
	switch strings.ToLower(renderer) {
	case "", "http":
		return HTTPSource{Client: client}, nil
	case "chrome":
		return ChromeSource{Timeout: timeout, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown weights renderer %q", renderer)
	}
}
