// Package mlbapi is a small client for the public MLB Stats API. It covers
// the two lookups the daily report needs: the pitch-level play IDs of a
// game and the display names of batters.
package mlbapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"lblreport/pkg/contracts/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnexpectedStatus is wrapped when the API answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("unexpected status from MLB Stats API")

// peopleBatchSize bounds the personIds list of one request.
const peopleBatchSize = 100

// Client talks to the MLB Stats API. Requests are issued one at a time and
// paced by a token bucket.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a client for baseURL (for example
// https://statsapi.mlb.com/api/v1). rps limits the request rate.
func NewClient(baseURL string, httpClient *http.Client, rps float64, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger.With(slog.String("component", "mlbapi")),
	}
}

type playByPlayResponse struct {
	AllPlays []struct {
		About struct {
			AtBatIndex int    `json:"atBatIndex"`
			HalfInning string `json:"halfInning"`
			Inning     int    `json:"inning"`
		} `json:"about"`
		Matchup struct {
			Batter  struct{ ID int64 `json:"id"` } `json:"batter"`
			Pitcher struct{ ID int64 `json:"id"` } `json:"pitcher"`
		} `json:"matchup"`
		PlayEvents []struct {
			IsPitch     bool   `json:"isPitch"`
			PlayID      string `json:"playId"`
			PitchNumber int    `json:"pitchNumber"`
		} `json:"playEvents"`
	} `json:"allPlays"`
}

// PlayIDs returns the play ID of every pitch of a game, keyed the same way
// as Statcast rows. At-bat numbers are 1-based like Statcast's.
func (c *Client) PlayIDs(ctx context.Context, gamePK int64) (map[domain.PitchKey]string, error) {
	var resp playByPlayResponse
	endpoint := fmt.Sprintf("%s/game/%d/playByPlay", c.baseURL, gamePK)
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("play-by-play for game %d: %w", gamePK, err)
	}

	ids := make(map[domain.PitchKey]string)
	for _, play := range resp.AllPlays {
		half := HalfInning(play.About.HalfInning)
		for _, ev := range play.PlayEvents {
			if !ev.IsPitch || ev.PlayID == "" {
				continue
			}
			key := domain.PitchKey{
				GamePK:       gamePK,
				Inning:       play.About.Inning,
				InningTopBot: half,
				PitchNumber:  ev.PitchNumber,
				AtBatNumber:  play.About.AtBatIndex + 1,
				Batter:       play.Matchup.Batter.ID,
				Pitcher:      play.Matchup.Pitcher.ID,
			}
			ids[key] = ev.PlayID
		}
	}

	c.logger.DebugContext(ctx, "Fetched play IDs",
		slog.Int64("game_pk", gamePK),
		slog.Int("pitches", len(ids)))
	return ids, nil
}

type peopleResponse struct {
	People []struct {
		ID        int64  `json:"id"`
		FullName  string `json:"fullName"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"people"`
}

// PeopleNames resolves player IDs to "First Last" display names. IDs the
// API does not know are absent from the result.
func (c *Client) PeopleNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	unique := uniqueIDs(ids)
	names := make(map[int64]string, len(unique))

	for start := 0; start < len(unique); start += peopleBatchSize {
		end := start + peopleBatchSize
		if end > len(unique) {
			end = len(unique)
		}

		parts := make([]string, 0, end-start)
		for _, id := range unique[start:end] {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		query := url.Values{"personIds": {strings.Join(parts, ",")}}

		var resp peopleResponse
		if err := c.getJSON(ctx, c.baseURL+"/people?"+query.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("people lookup: %w", err)
		}
		for _, p := range resp.People {
			name := strings.TrimSpace(p.FirstName + " " + p.LastName)
			if name == "" {
				name = p.FullName
			}
			names[p.ID] = name
		}
	}

	return names, nil
}

// HalfInning maps the API's "top"/"bottom" to Statcast's "Top"/"Bot".
func HalfInning(s string) domain.HalfInning {
	switch strings.ToLower(s) {
	case "top":
		return domain.HalfInningTop
	case "bottom", "bot":
		return domain.HalfInningBottom
	default:
		return domain.HalfInning(s)
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
