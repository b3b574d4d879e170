package schema

// Hero is one entry of the daily heroes ranking.
type Hero struct {
	Rank       int     `json:"rank"`
	User       string  `json:"user"`
	RangeDelta int64   `json:"range_delta"`
	Speed      float64 `json:"speed"`
}

// SpeedRocket is the highest instantaneous speed seen in the window.
type SpeedRocket struct {
	User  string  `json:"user"`
	Speed float64 `json:"speed"`
}

// ShootingStar is a user that sustained a high speed for long enough in the window.
type ShootingStar struct {
	User              string  `json:"user"`
	FinalSpeed        float64 `json:"final_speed"`
	QualifyingSeconds int64   `json:"qualifying_seconds"`
}

// Approach is a not-yet-reached milestone the user is close to.
type Approach struct {
	User      string         `json:"user"`
	Level     MilestoneLevel `json:"level"`
	Remaining int64          `json:"remaining"`
}

// UserTotal is a user's latest cumulative ranges.
type UserTotal struct {
	User   string `json:"user"`
	Ranges int64  `json:"ranges"`
}
