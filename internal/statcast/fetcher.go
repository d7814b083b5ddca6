package statcast

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"lblreport/pkg/contracts/domain"
)

// PlayIDSource resolves the play IDs of one game.
type PlayIDSource interface {
	PlayIDs(ctx context.Context, gamePK int64) (map[domain.PitchKey]string, error)
}

// NameSource resolves player IDs to display names.
type NameSource interface {
	PeopleNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// Result is the outcome of a fetch for one date.
type Result struct {
	// Pitches is the number of rows in the export.
	Pitches int
	// Events are the de-duplicated batted balls with play IDs and names.
	Events []domain.StatcastEvent
}

// Fetcher assembles the day's batted balls from Savant and the MLB API.
type Fetcher struct {
	client *Client
	plays  PlayIDSource
	names  NameSource
	logger *slog.Logger
}

// NewFetcher wires a Savant client to the MLB lookups.
func NewFetcher(client *Client, plays PlayIDSource, names NameSource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: client,
		plays:  plays,
		names:  names,
		logger: logger.With(slog.String("component", "statcast")),
	}
}

// Fetch downloads and enriches the batted balls of date. Games are looked up
// one after another.
func (f *Fetcher) Fetch(ctx context.Context, date time.Time) (*Result, error) {
	raw, err := f.client.Download(ctx, date)
	if err != nil {
		return nil, err
	}

	pitches, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	events := BattedBalls(pitches)
	f.logger.InfoContext(ctx, "Parsed statcast export",
		slog.Int("pitches", len(pitches)),
		slog.Int("batted_balls", len(events)))

	if err := f.attachPlayIDs(ctx, events); err != nil {
		return nil, err
	}
	if err := f.attachNames(ctx, events); err != nil {
		return nil, err
	}

	return &Result{Pitches: len(pitches), Events: events}, nil
}

func (f *Fetcher) attachPlayIDs(ctx context.Context, events []domain.StatcastEvent) error {
	games := make(map[int64]struct{})
	for _, ev := range events {
		games[ev.GamePK] = struct{}{}
	}
	gamePKs := make([]int64, 0, len(games))
	for pk := range games {
		gamePKs = append(gamePKs, pk)
	}
	sort.Slice(gamePKs, func(i, j int) bool { return gamePKs[i] < gamePKs[j] })

	ids := make(map[domain.PitchKey]string)
	for _, pk := range gamePKs {
		if err := ctx.Err(); err != nil {
			return err
		}
		gameIDs, err := f.plays.PlayIDs(ctx, pk)
		if err != nil {
			return err
		}
		for k, v := range gameIDs {
			ids[k] = v
		}
	}

	unmatched := 0
	for i := range events {
		if id, ok := ids[events[i].Key()]; ok {
			events[i].PlayID = id
		} else {
			unmatched++
		}
	}

	if unmatched > 0 {
		f.logger.WarnContext(ctx, "Batted balls without play ID",
			slog.Int("unmatched", unmatched),
			slog.Int("games", len(gamePKs)))
	}
	return nil
}

func (f *Fetcher) attachNames(ctx context.Context, events []domain.StatcastEvent) error {
	if len(events) == 0 {
		return nil
	}

	batters := make([]int64, 0, len(events))
	for _, ev := range events {
		batters = append(batters, ev.Batter)
	}

	names, err := f.names.PeopleNames(ctx, batters)
	if err != nil {
		return err
	}

	missing := 0
	for i := range events {
		name, ok := names[events[i].Batter]
		if !ok {
			missing++
			name = fmt.Sprintf("#%d", events[i].Batter)
		}
		events[i].BatterName = name
	}
	if missing > 0 {
		f.logger.WarnContext(ctx, "Batters without a known name", slog.Int("missing", missing))
	}
	return nil
}
