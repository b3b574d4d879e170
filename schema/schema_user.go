package schema

import "time"

// UserStats is the on-demand statistics bundle for one user.
// Slices are aligned with Days, oldest first.
type UserStats struct {
	Query             string     `json:"query"`
	User              string     `json:"user"`
	Found             bool       `json:"found"`
	GeneratedAt       time.Time  `json:"generated_at"`
	Days              []string   `json:"days"`
	DailySpeed        []float64  `json:"daily_speed"`
	DailyRanges       []int64    `json:"daily_ranges"`
	RangesAvg         []*float64 `json:"ranges_avg"`
	OverallDailySpeed []float64  `json:"overall_daily_speed"`
	OverallSpeedAvg   []*float64 `json:"overall_speed_avg"`
	OverallAvgSpeed   float64    `json:"overall_avg_speed"`
	ContributingUsers int        `json:"contributing_users"`
}
