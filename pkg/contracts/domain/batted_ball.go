package domain

import (
	"fmt"
	"time"
)

// HalfInning identifies which team is batting.
type HalfInning string

const (
	HalfInningTop    HalfInning = "Top"
	HalfInningBottom HalfInning = "Bot"
)

// StatcastEvent is a single batted ball as exported by Baseball Savant,
// enriched with the MLB play ID and the batter's display name.
type StatcastEvent struct {
	GameDate     time.Time  `json:"game_date" validate:"required"`
	GamePK       int64      `json:"game_pk" validate:"required"`
	Batter       int64      `json:"batter" validate:"required"`
	BatterName   string     `json:"batter_name"`
	Pitcher      int64      `json:"pitcher"`
	Event        string     `json:"events"`
	Description  string     `json:"description"`
	LaunchSpeed  *float64   `json:"launch_speed,omitempty"`
	LaunchAngle  *float64   `json:"launch_angle,omitempty"`
	HitLocation  *int       `json:"hit_location,omitempty"`
	HitDistance  *float64   `json:"hit_distance_sc,omitempty"`
	Inning       int        `json:"inning"`
	InningTopBot HalfInning `json:"inning_topbot"`
	AtBatNumber  int        `json:"at_bat_number"`
	PitchNumber  int        `json:"pitch_number"`
	HomeTeam     string     `json:"home_team"`
	AwayTeam     string     `json:"away_team"`
	PlayID       string     `json:"play_id,omitempty"`
}

// BattingTeam returns the abbreviation of the team at bat.
func (e StatcastEvent) BattingTeam() string {
	if e.InningTopBot == HalfInningTop {
		return e.AwayTeam
	}
	if e.InningTopBot == HalfInningBottom {
		return e.HomeTeam
	}
	return ""
}

// PitchKey identifies a pitch across the Statcast export and the MLB
// play-by-play feed.
type PitchKey struct {
	GamePK       int64
	Inning       int
	InningTopBot HalfInning
	PitchNumber  int
	AtBatNumber  int
	Batter       int64
	Pitcher      int64
}

// Key returns the join key of the event.
func (e StatcastEvent) Key() PitchKey {
	return PitchKey{
		GamePK:       e.GamePK,
		Inning:       e.Inning,
		InningTopBot: e.InningTopBot,
		PitchNumber:  e.PitchNumber,
		AtBatNumber:  e.AtBatNumber,
		Batter:       e.Batter,
		Pitcher:      e.Pitcher,
	}
}

func (k PitchKey) String() string {
	return fmt.Sprintf("%d/%d%s/ab%d/p%d/%d-%d",
		k.GamePK, k.Inning, k.InningTopBot, k.AtBatNumber, k.PitchNumber, k.Batter, k.Pitcher)
}
