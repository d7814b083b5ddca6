package domain

import "fmt"

// Category labels a classified batted ball.
type Category string

const (
	CategoryActionItem  Category = "action_item"
	CategoryFrontRowJoe Category = "front_row_joe"
)

// SavantVideoURL is the public clip page for a play ID.
const SavantVideoURL = "https://baseballsavant.mlb.com/sporty-videos?playId="

// ClassifiedEvent is a batted ball that matched one of the report rules.
type ClassifiedEvent struct {
	StatcastEvent
	Category  Category `json:"category"`
	Field     string   `json:"field"`
	WobaValue float64  `json:"woba_value"`
	WobaSwing float64  `json:"woba_swing"`
}

// VideoURL returns the clip link, or "" when the play ID is unknown.
func (c ClassifiedEvent) VideoURL() string {
	if c.PlayID == "" {
		return ""
	}
	return SavantVideoURL + c.PlayID
}

// Classification holds the two report collections. Both slices are always
// non-nil so an empty day renders as an explicit empty state.
type Classification struct {
	ActionItems  []ClassifiedEvent `json:"action_items"`
	FrontRowJoes []ClassifiedEvent `json:"front_row_joes"`
}

// Empty reports whether neither collection has events.
func (c Classification) Empty() bool {
	return len(c.ActionItems) == 0 && len(c.FrontRowJoes) == 0
}

// Total returns the number of classified events.
func (c Classification) Total() int {
	return len(c.ActionItems) + len(c.FrontRowJoes)
}

// FormatOptionalFloat renders a nullable metric rounded to one decimal.
func FormatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}
