// Package schema has the data models and typed constants shared by all parts of hunterstats.
package schema

// TimePoint is a single sample of a global metric (completion %, pool speed, total ranges).
type TimePoint struct {
	Timestamp int64   `json:"t"` // Epoch seconds
	Value     float64 `json:"v"`
}

// Unix returns the sample time in epoch seconds.
func (p TimePoint) Unix() int64 { return p.Timestamp }

// UserPoint is a single sample of one user's contribution.
type UserPoint struct {
	Timestamp int64   `json:"t"`      // Epoch seconds
	Ranges    int64   `json:"ranges"` // Cumulative ranges submitted so far
	Speed     float64 `json:"speed"`  // Instantaneous speed in BKeys/s
}

// Unix returns the sample time in epoch seconds.
func (p UserPoint) Unix() int64 { return p.Timestamp }

// ScalarSeries holds the history of one global metric plus its latest observed value.
type ScalarSeries struct {
	Current float64     `json:"current"`
	History []TimePoint `json:"history"`

	// Only populated on the primary pool's speed record.
	BestSpeed       float64 `json:"all_time_best_speed,omitempty"`
	BestSpeedHolder string  `json:"all_time_best_speed_holder,omitempty"`
}

// UserSeriesCollection maps a canonical user name to that user's samples.
type UserSeriesCollection struct {
	Data map[string][]UserPoint `json:"data"`
}

// Users returns the number of users in the collection.
func (c UserSeriesCollection) Users() int { return len(c.Data) }
