package schema

import "time"

// StateStatus represents the status of the state store.
type StateStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     string           `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalEvents   int              `json:"total_events"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunSummary is recorded when a run finishes.
type RunSummary struct {
	EventsEmitted int `json:"events_emitted"`
	UsersSeen     int `json:"users_seen"`
}

// RunRecord represents a row from the hunterstats_runs table.
type RunRecord struct {
	RunID         string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	EventsEmitted int32
	UsersSeen     int32
	ConfigParams  *string
}

// RunEventRecord represents a row from the hunterstats_run_events table.
type RunEventRecord struct {
	RunID      string
	Kind       string
	UserName   string
	Milestone  string
	Value      float64
	RecordedAt time.Time
}
