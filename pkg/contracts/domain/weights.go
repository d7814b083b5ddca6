package domain

// WobaWeights is one season row of the FanGraphs guts table.
type WobaWeights struct {
	Season  int     `json:"season" validate:"required"`
	Walk    float64 `json:"walk" validate:"gt=0"`
	HBP     float64 `json:"hbp" validate:"gt=0"`
	Single  float64 `json:"single" validate:"gt=0"`
	Double  float64 `json:"double" validate:"gt=0"`
	Triple  float64 `json:"triple" validate:"gt=0"`
	HomeRun float64 `json:"home_run" validate:"gt=0"`
}

// ValueOf returns the linear weight credited to a Statcast event. Outs and
// unknown events are worth nothing.
func (w WobaWeights) ValueOf(event string) float64 {
	switch event {
	case "single":
		return w.Single
	case "double":
		return w.Double
	case "triple":
		return w.Triple
	case "home_run":
		return w.HomeRun
	case "walk":
		return w.Walk
	case "hit_by_pitch", "hbp":
		return w.HBP
	default:
		return 0
	}
}
