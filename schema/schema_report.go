package schema

import "time"

// Report is the immutable snapshot produced once per run and handed to the notifier.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Timezone    string          `json:"timezone"`
	Sections    []ReportSection `json:"sections"`
	Parts       []string        `json:"parts"` // Rendered text split to the transport limit
	Charts      []ChartSeries   `json:"charts"`
	Events      []Event         `json:"events"`
	Summary     ReportSummary   `json:"summary"`
}

// ReportSection is one titled block of report text.
type ReportSection struct {
	Key     string   `json:"key"`
	Heading string   `json:"heading,omitempty"`
	Lines   []string `json:"lines"`
}

// Section returns the section with the given key.
func (r Report) Section(key string) (ReportSection, bool) {
	for _, s := range r.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return ReportSection{}, false
}

// EventsOf returns the events of one kind in report order.
func (r Report) EventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// ChartSeries is everything a renderer needs to draw one chart.
type ChartSeries struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	XLabel string      `json:"x_label"`
	YLabel string      `json:"y_label"`
	Lines  []ChartLine `json:"lines"`
}

// ChartLine is one plotted line or bar set.
type ChartLine struct {
	Label  string       `json:"label"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is a chart value on a time axis (Timestamp) or a categorical axis (Label).
// A nil Value means not available and must not be drawn as zero.
type ChartPoint struct {
	Timestamp int64    `json:"t,omitempty"`
	Label     string   `json:"label,omitempty"`
	Value     *float64 `json:"v"`
}

// Event is a detected award or milestone notification.
// For approaching events Ranges is the distance left to the threshold.
type Event struct {
	Kind      EventKind `json:"kind"`
	User      string    `json:"user,omitempty"`
	Rank      int       `json:"rank,omitempty"`
	Milestone string    `json:"milestone,omitempty"`
	Threshold int64     `json:"threshold,omitempty"`
	Ranges    int64     `json:"ranges,omitempty"`
	Speed     float64   `json:"speed,omitempty"`
	Seconds   int64     `json:"seconds,omitempty"`
	Message   string    `json:"message"`
}

// ReportSummary carries the headline numbers behind the text.
// Nil pointers mean the value was not available.
type ReportSummary struct {
	Completion          float64    `json:"completion"`
	ChangeSinceDay      *float64   `json:"change_since_day"`
	ChangeSinceWeek     *float64   `json:"change_since_week"`
	ChangeSinceMonth    *float64   `json:"change_since_month"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
	PoolSpeed           float64    `json:"pool_speed"`
	SpeedToday          float64    `json:"speed_today"`
	SpeedChangePct      *float64   `json:"speed_change_pct"`
	MaxSpeed            float64    `json:"max_speed_30d"`
	AvgSpeed            float64    `json:"avg_speed_30d"`
	TotalRanges         float64    `json:"total_ranges"`
	Users               int        `json:"users"`
	BestSpeed           float64    `json:"all_time_best_speed"`
	BestSpeedHolder     string     `json:"all_time_best_speed_holder,omitempty"`
}
