package analytics

import (
	"sort"

	"lblreport/pkg/contracts/domain"
)

// Roster is the set of clients whose batted balls are Front Row Joe
// candidates: individual players plus whole teams.
type Roster struct {
	Players map[int64]struct{}
	Teams   map[string]struct{}
}

// NewRoster builds a roster from player IDs and team abbreviations.
func NewRoster(players []int64, teams []string) Roster {
	r := Roster{
		Players: make(map[int64]struct{}, len(players)),
		Teams:   make(map[string]struct{}, len(teams)),
	}
	for _, id := range players {
		r.Players[id] = struct{}{}
	}
	for _, t := range teams {
		r.Teams[t] = struct{}{}
	}
	return r
}

// Tracks reports whether the batter of ev is a client.
func (r Roster) Tracks(ev domain.StatcastEvent) bool {
	if _, ok := r.Players[ev.Batter]; ok {
		return true
	}
	if team := ev.BattingTeam(); team != "" {
		if _, ok := r.Teams[team]; ok {
			return true
		}
	}
	return false
}

// Classify labels events. An event lands in at most one collection.
// Events without hit location or distance never qualify.
func Classify(events []domain.StatcastEvent, roster Roster, weights domain.WobaWeights, rules Rules) domain.Classification {
	out := domain.Classification{
		ActionItems:  []domain.ClassifiedEvent{},
		FrontRowJoes: []domain.ClassifiedEvent{},
	}

	frjEvents := eventSet(rules.FrontRowJoe.Events)
	aiEvents := eventSet(rules.ActionItem.Events)

	for _, ev := range events {
		if ev.HitLocation == nil || ev.HitDistance == nil {
			continue
		}
		loc, dist := *ev.HitLocation, *ev.HitDistance

		if roster.Tracks(ev) {
			if _, ok := frjEvents[ev.Event]; ok && withinAtMost(loc, dist, rules.FrontRowJoe) {
				out.FrontRowJoes = append(out.FrontRowJoes, classified(ev, domain.CategoryFrontRowJoe, weights))
			}
			continue
		}

		if _, ok := aiEvents[ev.Event]; ok && withinAtLeast(loc, dist, rules.ActionItem) {
			out.ActionItems = append(out.ActionItems, classified(ev, domain.CategoryActionItem, weights))
		}
	}

	sortEvents(out.ActionItems)
	sortEvents(out.FrontRowJoes)
	return out
}

func withinAtMost(loc int, dist float64, rs RuleSet) bool {
	switch loc {
	case LeftField, RightField:
		return dist <= rs.CornerDistance
	case CenterField:
		return dist <= rs.CenterDistance
	}
	return false
}

func withinAtLeast(loc int, dist float64, rs RuleSet) bool {
	switch loc {
	case LeftField, RightField:
		return dist >= rs.CornerDistance
	case CenterField:
		return dist >= rs.CenterDistance
	}
	return false
}

func classified(ev domain.StatcastEvent, cat domain.Category, weights domain.WobaWeights) domain.ClassifiedEvent {
	value := weights.ValueOf(ev.Event)
	return domain.ClassifiedEvent{
		StatcastEvent: ev,
		Category:      cat,
		Field:         FieldLabel(*ev.HitLocation),
		WobaValue:     value,
		WobaSwing:     weights.HomeRun - value,
	}
}

// FieldLabel names an outfield hit location.
func FieldLabel(loc int) string {
	switch loc {
	case LeftField:
		return "LF"
	case CenterField:
		return "CF"
	case RightField:
		return "RF"
	default:
		return ""
	}
}

func eventSet(events []string) map[string]struct{} {
	set := make(map[string]struct{}, len(events))
	for _, e := range events {
		set[e] = struct{}{}
	}
	return set
}

// sortEvents orders by distance (longest first), then play ID, then the
// pitch key for events without a play ID.
func sortEvents(events []domain.ClassifiedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if *a.HitDistance != *b.HitDistance {
			return *a.HitDistance > *b.HitDistance
		}
		if a.PlayID != b.PlayID {
			return a.PlayID < b.PlayID
		}
		if a.GamePK != b.GamePK {
			return a.GamePK < b.GamePK
		}
		if a.AtBatNumber != b.AtBatNumber {
			return a.AtBatNumber < b.AtBatNumber
		}
		if a.PitchNumber != b.PitchNumber {
			return a.PitchNumber < b.PitchNumber
		}
		return a.Batter < b.Batter
	})
}
