package statcast

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cast"

	"lblreport/pkg/contracts/domain"
)

// DescriptionHitIntoPlay marks pitches that ended in a batted ball.
const DescriptionHitIntoPlay = "hit_into_play"

var (
	// ErrNoData is returned when the export holds no pitches at all.
	ErrNoData = errors.New("statcast export contains no rows")
	// ErrMalformedExport is returned when the payload is not the expected CSV.
	ErrMalformedExport = errors.New("malformed statcast export")
)

// requiredColumns are the export columns the report depends on.
var requiredColumns = []string{
	"game_date", "game_pk", "batter", "pitcher", "events", "description",
	"launch_speed", "launch_angle", "hit_location", "hit_distance_sc",
	"inning", "inning_topbot", "at_bat_number", "pitch_number",
	"home_team", "away_team",
}

// Parse reads a Savant CSV export. Every row becomes an event; filtering
// happens later.
func Parse(r io.Reader) ([]domain.StatcastEvent, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedExport, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.Trim(strings.TrimSpace(name), "\"")] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrMalformedExport, strings.Join(missing, ", "))
	}

	var events []domain.StatcastEvent
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedExport, line, err)
		}

		ev, err := parseRow(row{cols: cols, record: record})
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedExport, line, err)
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		return nil, ErrNoData
	}
	return events, nil
}

// row gives typed access to one CSV record by column name.
type row struct {
	cols   map[string]int
	record []string
}

func (r row) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	v := strings.TrimSpace(r.record[i])
	if v == "null" || v == "NA" {
		return ""
	}
	return v
}

func (r row) int64Value(name string) (int64, error) {
	v := r.str(name)
	if v == "" {
		return 0, fmt.Errorf("%s is empty", name)
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		n = int64(f)
	}
	return n, nil
}

func (r row) intValue(name string) (int, error) {
	n, err := r.int64Value(name)
	return int(n), err
}

func (r row) optionalFloat(name string) (*float64, error) {
	v := r.str(name)
	if v == "" {
		return nil, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &f, nil
}

func (r row) optionalInt(name string) (*int, error) {
	if r.str(name) == "" {
		return nil, nil
	}
	n, err := r.intValue(name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseRow(r row) (domain.StatcastEvent, error) {
	var (
		ev  domain.StatcastEvent
		err error
	)

	if ev.GameDate, err = time.Parse("2006-01-02", r.str("game_date")); err != nil {
		return ev, fmt.Errorf("game_date: %w", err)
	}
	if ev.GamePK, err = r.int64Value("game_pk"); err != nil {
		return ev, err
	}
	if ev.Batter, err = r.int64Value("batter"); err != nil {
		return ev, err
	}
	if ev.Pitcher, err = r.int64Value("pitcher"); err != nil {
		return ev, err
	}
	if ev.Inning, err = r.intValue("inning"); err != nil {
		return ev, err
	}
	if ev.AtBatNumber, err = r.intValue("at_bat_number"); err != nil {
		return ev, err
	}
	if ev.PitchNumber, err = r.intValue("pitch_number"); err != nil {
		return ev, err
	}
	if ev.LaunchSpeed, err = r.optionalFloat("launch_speed"); err != nil {
		return ev, err
	}
	if ev.LaunchAngle, err = r.optionalFloat("launch_angle"); err != nil {
		return ev, err
	}
	if ev.HitDistance, err = r.optionalFloat("hit_distance_sc"); err != nil {
		return ev, err
	}
	if ev.HitLocation, err = r.optionalInt("hit_location"); err != nil {
		return ev, err
	}

	ev.Event = r.str("events")
	ev.Description = r.str("description")
	ev.InningTopBot = domain.HalfInning(r.str("inning_topbot"))
	ev.HomeTeam = r.str("home_team")
	ev.AwayTeam = r.str("away_team")
	return ev, nil
}

// BattedBalls keeps pitches put into play, dropping repeated pitches. The
// first occurrence of a pitch key wins.
func BattedBalls(events []domain.StatcastEvent) []domain.StatcastEvent {
	seen := make(map[domain.PitchKey]struct{}, len(events))
	out := make([]domain.StatcastEvent, 0, len(events)/4)
	for _, ev := range events {
		if ev.Description != DescriptionHitIntoPlay {
			continue
		}
		key := ev.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ev)
	}
	return out
}
