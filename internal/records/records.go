// Package records encodes and decodes the whole-object records kept in the state store.
//
// Every decoder validates at the load boundary. A malformed top-level shape yields an empty
// record and one issue. A malformed history entry is skipped and reported as an issue.
// Callers log the issues and carry on with whatever decoded cleanly.
package records

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/schema"
)

// Version is stored with every record written by this package.
const Version = 1

// AchievementsKey is the state store key of the AchievementState record.
const AchievementsKey = "achievements"

// CompletionKey returns the key of a pool's completion series.
func CompletionKey(pool string) string { return "pool/" + pool + "/completion" }

// SpeedKey returns the key of a pool's speed series.
func SpeedKey(pool string) string { return "pool/" + pool + "/speed" }

// TotalRangesKey returns the key of a pool's total ranges series.
func TotalRangesKey(pool string) string { return "pool/" + pool + "/total_ranges" }

// RangesKey returns the key of a pool's per-user ranges collection.
func RangesKey(pool string) string { return "pool/" + pool + "/ranges" }

// ErrInvalidSample is returned when a collector sample cannot be decoded at all.
var ErrInvalidSample = errors.New("invalid collector sample")

// Issue describes a part of a record that could not be decoded.
type Issue struct {
	Key    string
	Index  int // -1 for the whole record
	User   string
	Reason string
}

func (i Issue) Error() string {
	switch {
	case i.Index < 0:
		return fmt.Sprintf("%s: %s", i.Key, i.Reason)
	case i.User != "":
		return fmt.Sprintf("%s: user %q entry %d: %s", i.Key, i.User, i.Index, i.Reason)
	default:
		return fmt.Sprintf("%s: entry %d: %s", i.Key, i.Index, i.Reason)
	}
}

type rawScalar struct {
	Current         *float64          `json:"current"`
	History         []json.RawMessage `json:"history"`
	BestSpeed       float64           `json:"all_time_best_speed"`
	BestSpeedHolder string            `json:"all_time_best_speed_holder"`
}

// DecodeScalar decodes a ScalarSeries record.
func DecodeScalar(key string, data []byte) (schema.ScalarSeries, []Issue) {
	var raw rawScalar
	if err := json.Unmarshal(data, &raw); err != nil {
		return schema.ScalarSeries{}, []Issue{{Key: key, Index: -1, Reason: err.Error()}}
	}

	rec := schema.ScalarSeries{BestSpeed: raw.BestSpeed, BestSpeedHolder: raw.BestSpeedHolder}
	if raw.Current != nil {
		rec.Current = *raw.Current
	}

	var issues []Issue
	for i, entry := range raw.History {
		nums, err := numbers(entry, 2)
		if err != nil {
			issues = append(issues, Issue{Key: key, Index: i, Reason: err.Error()})
			continue
		}
		rec.History = append(rec.History, schema.TimePoint{Timestamp: int64(nums[0]), Value: nums[1]})
	}
	return rec, issues
}

// DecodeUsers decodes a UserSeriesCollection record.
func DecodeUsers(key string, data []byte) (schema.UserSeriesCollection, []Issue) {
	var raw struct {
		Data map[string][]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return schema.UserSeriesCollection{Data: map[string][]schema.UserPoint{}}, []Issue{{Key: key, Index: -1, Reason: err.Error()}}
	}

	rec := schema.UserSeriesCollection{Data: make(map[string][]schema.UserPoint, len(raw.Data))}
	var issues []Issue
	for user, entries := range raw.Data {
		if user == "" {
			issues = append(issues, Issue{Key: key, Index: -1, Reason: "empty user name"})
			continue
		}
		var points []schema.UserPoint
		for i, entry := range entries {
			nums, err := numbers(entry, 3)
			if err == nil && nums[1] != math.Trunc(nums[1]) {
				err = fmt.Errorf("ranges %v is not an integer", nums[1])
			}
			if err != nil {
				issues = append(issues, Issue{Key: key, Index: i, User: user, Reason: err.Error()})
				continue
			}
			points = append(points, schema.UserPoint{Timestamp: int64(nums[0]), Ranges: int64(nums[1]), Speed: nums[2]})
		}
		if len(points) > 0 {
			rec.Data[user] = points
		}
	}
	// Issues come out of map iteration; sort so logs are stable.
	slices.SortFunc(issues, func(a, b Issue) int {
		if c := cmp.Compare(a.User, b.User); c != 0 {
			return c
		}
		return a.Index - b.Index
	})
	return rec, issues
}

// DecodeAchievements decodes an AchievementState record.
func DecodeAchievements(key string, data []byte) (schema.AchievementState, []Issue) {
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return schema.AchievementState{}, []Issue{{Key: key, Index: -1, Reason: err.Error()}}
	}

	state := make(schema.AchievementState, len(raw))
	var issues []Issue
	for user, thresholds := range raw {
		for i, entry := range thresholds {
			var th float64
			if err := json.Unmarshal(entry, &th); err != nil || th < 1 || th != math.Trunc(th) {
				issues = append(issues, Issue{Key: key, Index: i, User: user, Reason: fmt.Sprintf("invalid threshold %s", entry)})
				continue
			}
			state = state.With(user, int64(th))
		}
	}
	slices.SortFunc(issues, func(a, b Issue) int {
		if c := cmp.Compare(a.User, b.User); c != 0 {
			return c
		}
		return a.Index - b.Index
	})
	return state, issues
}

// EncodeScalar encodes a ScalarSeries with its history in chronological order.
func EncodeScalar(rec schema.ScalarSeries) ([]byte, error) {
	history := series.Sorted(rec.History)
	out := struct {
		Current         float64  `json:"current"`
		History         [][2]any `json:"history"`
		BestSpeed       float64  `json:"all_time_best_speed,omitempty"`
		BestSpeedHolder string   `json:"all_time_best_speed_holder,omitempty"`
	}{
		Current:         rec.Current,
		History:         make([][2]any, 0, len(history)),
		BestSpeed:       rec.BestSpeed,
		BestSpeedHolder: rec.BestSpeedHolder,
	}
	for _, p := range history {
		out.History = append(out.History, [2]any{p.Timestamp, p.Value})
	}
	return json.Marshal(out)
}

// EncodeUsers encodes a UserSeriesCollection with each user's samples in chronological order.
func EncodeUsers(rec schema.UserSeriesCollection) ([]byte, error) {
	data := make(map[string][][3]any, len(rec.Data))
	for user, points := range rec.Data {
		entries := make([][3]any, 0, len(points))
		for _, p := range series.Sorted(points) {
			entries = append(entries, [3]any{p.Timestamp, p.Ranges, p.Speed})
		}
		data[user] = entries
	}
	return json.Marshal(map[string]any{"data": data})
}

// EncodeAchievements encodes an AchievementState with thresholds as sorted lists.
func EncodeAchievements(state schema.AchievementState) ([]byte, error) {
	out := make(map[string][]int64, len(state))
	for user := range state {
		out[user] = state.Thresholds(user)
	}
	return json.Marshal(out)
}

// DecodeSample decodes a collector sample. Users may be given as {"ranges": r, "speed": s}
// or as [r, s]. Readings that cannot be decoded are dropped and reported as issues.
func DecodeSample(data []byte) (schema.CollectorSample, []Issue, error) {
	var raw struct {
		Pool        string                     `json:"pool"`
		Timestamp   float64                    `json:"timestamp"`
		Completion  *float64                   `json:"completion"`
		Speed       *float64                   `json:"speed"`
		TotalRanges *float64                   `json:"total_ranges"`
		Users       map[string]json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return schema.CollectorSample{}, nil, fmt.Errorf("%w: %w", ErrInvalidSample, err)
	}
	if raw.Pool == "" {
		return schema.CollectorSample{}, nil, fmt.Errorf("%w: pool is required", ErrInvalidSample)
	}

	sample := schema.CollectorSample{
		Pool:        raw.Pool,
		Timestamp:   int64(raw.Timestamp),
		Completion:  raw.Completion,
		Speed:       raw.Speed,
		TotalRanges: raw.TotalRanges,
	}
	var issues []Issue
	for user, msg := range raw.Users {
		reading, err := decodeReading(msg)
		if err != nil {
			issues = append(issues, Issue{Key: "users", Index: 0, User: user, Reason: err.Error()})
			continue
		}
		if sample.Users == nil {
			sample.Users = make(map[string]schema.UserReading)
		}
		sample.Users[user] = reading
	}
	slices.SortFunc(issues, func(a, b Issue) int { return cmp.Compare(a.User, b.User) })
	return sample, issues, nil
}

func decodeReading(msg json.RawMessage) (schema.UserReading, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		nums, err := numbers(trimmed, 2)
		if err != nil {
			return schema.UserReading{}, err
		}
		if nums[0] != math.Trunc(nums[0]) {
			return schema.UserReading{}, fmt.Errorf("ranges %v is not an integer", nums[0])
		}
		return schema.UserReading{Ranges: int64(nums[0]), Speed: nums[1]}, nil
	}

	var obj struct {
		Ranges *float64 `json:"ranges"`
		Speed  *float64 `json:"speed"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return schema.UserReading{}, err
	}
	if obj.Ranges == nil || obj.Speed == nil {
		return schema.UserReading{}, fmt.Errorf("reading needs ranges and speed")
	}
	if *obj.Ranges != math.Trunc(*obj.Ranges) {
		return schema.UserReading{}, fmt.Errorf("ranges %v is not an integer", *obj.Ranges)
	}
	return schema.UserReading{Ranges: int64(*obj.Ranges), Speed: *obj.Speed}, nil
}

// numbers decodes a JSON array of exactly n finite numbers.
func numbers(entry json.RawMessage, n int) ([]float64, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(entry, &parts); err != nil {
		return nil, fmt.Errorf("expected an array: %w", err)
	}
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d elements, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, part := range parts {
		if bytes.Equal(bytes.TrimSpace(part), []byte("null")) {
			return nil, fmt.Errorf("element %d is null", i)
		}
		if err := json.Unmarshal(part, &out[i]); err != nil {
			return nil, fmt.Errorf("element %d is not a number: %s", i, part)
		}
	}
	return out, nil
}

