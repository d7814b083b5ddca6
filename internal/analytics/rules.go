package analytics

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// Spray-chart positions of the outfield.
const (
	LeftField   = 7
	CenterField = 8
	RightField  = 9
)

// ErrInvalidRules is wrapped by every rules validation failure.
var ErrInvalidRules = errors.New("invalid classification rules")

// RuleSet is the event filter and distance limits of one category.
type RuleSet struct {
	Events []string `yaml:"events"`
	// CornerDistance applies to hit locations 7 (LF) and 9 (RF).
	CornerDistance float64 `yaml:"corner_distance"`
	// CenterDistance applies to hit location 8 (CF).
	CenterDistance float64 `yaml:"center_distance"`
}

// Rules configures the classifier. Front Row Joes must be at most the
// distances, Action Items at least.
type Rules struct {
	FrontRowJoe RuleSet `yaml:"front_row_joe"`
	ActionItem  RuleSet `yaml:"action_item"`
}

// DefaultRules returns the thresholds the report has always used.
func DefaultRules() Rules {
	return Rules{
		FrontRowJoe: RuleSet{
			Events:         []string{"home_run"},
			CornerDistance: 350,
			CenterDistance: 380,
		},
		ActionItem: RuleSet{
			Events: []string{
				"single", "double", "triple", "field_out",
				"sacrifice_fly", "sac_fly_double_play", "field_error",
			},
			CornerDistance: 365,
			CenterDistance: 380,
		},
	}
}

// LoadRules reads YAML overrides from path on top of DefaultRules. An empty
// path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML overrides on top of DefaultRules.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()
	if err := yaml.UnmarshalStrict(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate rejects empty event sets and non-positive distances.
func (r Rules) Validate() error {
	var problems []string
	check := func(name string, rs RuleSet) {
		if len(rs.Events) == 0 {
			problems = append(problems, name+".events is empty")
		}
		if rs.CornerDistance <= 0 {
			problems = append(problems, name+".corner_distance must be positive")
		}
		if rs.CenterDistance <= 0 {
			problems = append(problems, name+".center_distance must be positive")
		}
	}
	check("front_row_joe", r.FrontRowJoe)
	check("action_item", r.ActionItem)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRules, strings.Join(problems, "; "))
	}
	return nil
}

// Definition is a term explained on the report's definitions page.
type Definition struct {
	Term string
	Text string
}

// Definitions describes the active rules in plain words.
func (r Rules) Definitions() []Definition {
	return []Definition{
		{
			Term: "Action Item",
			Text: fmt.Sprintf("A non-client batted ball (%s) to LF/RF traveling at least %.0f ft, or to CF traveling at least %.0f ft.",
				eventList(r.ActionItem.Events), r.ActionItem.CornerDistance, r.ActionItem.CenterDistance),
		},
		{
			Term: "Front Row Joe",
			Text: fmt.Sprintf("A client batted ball (%s) to LF/RF traveling at most %.0f ft, or to CF traveling at most %.0f ft.",
				eventList(r.FrontRowJoe.Events), r.FrontRowJoe.CornerDistance, r.FrontRowJoe.CenterDistance),
		},
	}
}

func eventList(events []string) string {
	sorted := append([]string(nil), events...)
	sort.Strings(sorted)
	return strings.ReplaceAll(strings.Join(sorted, ", "), "_", " ")
}
