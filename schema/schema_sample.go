package schema

// UserReading is one user's reading in a collector sample.
type UserReading struct {
	Ranges int64   `json:"ranges"`
	Speed  float64 `json:"speed"`
}

// CollectorSample is one collection cycle's readings for a pool.
// Nil fields were not observed this cycle.
type CollectorSample struct {
	Pool        string                 `json:"pool"`
	Timestamp   int64                  `json:"timestamp,omitempty"` // Zero means now
	Completion  *float64               `json:"completion,omitempty"`
	Speed       *float64               `json:"speed,omitempty"`
	TotalRanges *float64               `json:"total_ranges,omitempty"`
	Users       map[string]UserReading `json:"users,omitempty"`
}

// IngestResult reports what happened to a collector sample.
type IngestResult struct {
	Pool     string   `json:"pool"`
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Warnings []string `json:"warnings,omitempty"`
}
