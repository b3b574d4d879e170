// Package parquet provides data structures and functions for exporting hunterstats
// chart series and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/hunterstats/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single report run with metadata.
// This struct maps to the hunterstats_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	EventsEmitted int32 `parquet:"events_emitted,snappy"`
	UsersSeen     int32 `parquet:"users_seen,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunEvent is one event emitted by a run.
// This struct maps to the hunterstats_run_events database table.
type RunEvent struct {
	RunID      string    `parquet:"run_id,snappy"`
	Kind       string    `parquet:"kind,snappy,dict"`
	UserName   string    `parquet:"user_name,snappy"`
	Milestone  string    `parquet:"milestone,snappy,dict"`
	Value      float64   `parquet:"value,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// ChartPoint is one flattened point of a report chart.
// Time-axis charts fill Timestamp, categorical charts fill Category.
type ChartPoint struct {
	ChartID   string     `parquet:"chart_id,snappy,dict"`
	Title     string     `parquet:"title,snappy,dict"`
	Line      string     `parquet:"line,snappy,dict"`
	Timestamp *time.Time `parquet:"timestamp,optional,snappy"`
	Category  *string    `parquet:"category,optional,snappy"`
	Value     *float64   `parquet:"value,optional,snappy"`
}

// UserDay is one civil day of a user's statistics.
type UserDay struct {
	User              string   `parquet:"user,snappy,dict"`
	Day               string   `parquet:"day,snappy"`
	DailySpeed        float64  `parquet:"daily_speed,snappy"`
	DailyRanges       int64    `parquet:"daily_ranges,snappy"`
	RangesAvg         *float64 `parquet:"ranges_avg_7d,optional,snappy"`
	OverallDailySpeed float64  `parquet:"overall_daily_speed,snappy"`
	OverallSpeedAvg   *float64 `parquet:"overall_speed_avg_7d,optional,snappy"`
}

// writeParquet writes rows to a Parquet file. The schema is derived from the struct tags of T.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer; a failure here leaves an unreadable file.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunEventsParquet writes run events to a Parquet file.
func WriteRunEventsParquet(data []RunEvent, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteChartPointsParquet writes flattened chart points to a Parquet file.
func WriteChartPointsParquet(data []ChartPoint, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteUserDaysParquet writes per-day user statistics to a Parquet file.
func WriteUserDaysParquet(data []UserDay, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts store records to Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	out := make([]Run, 0, len(records))
	for _, r := range records {
		out = append(out, Run{
			RunID:         r.RunID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			EventsEmitted: r.EventsEmitted,
			UsersSeen:     r.UsersSeen,
			ConfigParams:  r.ConfigParams,
		})
	}
	return out
}

// ConvertRunEventRecords converts store event records to Parquet rows.
func ConvertRunEventRecords(records []schema.RunEventRecord) []RunEvent {
	out := make([]RunEvent, 0, len(records))
	for _, r := range records {
		out = append(out, RunEvent(r))
	}
	return out
}

// FlattenCharts turns chart bundles into one row per point, in chart order.
func FlattenCharts(charts []schema.ChartSeries) []ChartPoint {
	var out []ChartPoint
	for _, c := range charts {
		for _, line := range c.Lines {
			for _, p := range line.Points {
				row := ChartPoint{ChartID: c.ID, Title: c.Title, Line: line.Label, Value: p.Value}
				if p.Label != "" {
					label := p.Label
					row.Category = &label
				} else {
					ts := time.Unix(p.Timestamp, 0).UTC()
					row.Timestamp = &ts
				}
				out = append(out, row)
			}
		}
	}
	return out
}

// ConvertUserStats turns a user's statistics into one row per day.
func ConvertUserStats(stats schema.UserStats) []UserDay {
	out := make([]UserDay, 0, len(stats.Days))
	for i, day := range stats.Days {
		out = append(out, UserDay{
			User:              stats.User,
			Day:               day,
			DailySpeed:        at(stats.DailySpeed, i),
			DailyRanges:       at(stats.DailyRanges, i),
			RangesAvg:         at(stats.RangesAvg, i),
			OverallDailySpeed: at(stats.OverallDailySpeed, i),
			OverallSpeedAvg:   at(stats.OverallSpeedAvg, i),
		})
	}
	return out
}

func at[T any](values []T, i int) T {
	var zero T
	if i < len(values) {
		return values[i]
	}
	return zero
}
