package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/huangsam/hunterstats/internal/records"
	"github.com/huangsam/hunterstats/schema"
)

// ErrUnknownPool is returned when a sample names a pool that is not configured.
var ErrUnknownPool = errors.New("unknown pool")

// Ingest applies one collector sample. Each supplied value becomes a point on its
// series; malformed values are rejected one by one and the rest are still applied.
// Touched records are pruned to retention and written back whole.
func (e *Engine) Ingest(ctx context.Context, sample schema.CollectorSample) (schema.IngestResult, error) {
	result := schema.IngestResult{Pool: sample.Pool}
	if !slices.Contains(e.cfg.Pools, sample.Pool) {
		return result, fmt.Errorf("%w '%s'. configured pools are %v", ErrUnknownPool, sample.Pool, e.cfg.Pools)
	}
	if err := e.guard.Acquire(); err != nil {
		return result, err
	}
	defer e.guard.Release()
	if err := ctx.Err(); err != nil {
		return result, err
	}

	now := e.now()
	ts := sample.Timestamp
	if ts == 0 {
		ts = now.Unix()
	}
	reject := func(format string, args ...any) {
		result.Rejected++
		result.Warnings = append(result.Warnings, fmt.Sprintf(format, args...))
	}

	state := e.state()
	snap := newSnapshot()
	var touched []string

	scalars := []struct {
		name  string
		key   string
		value *float64
	}{
		{"completion", records.CompletionKey(sample.Pool), sample.Completion},
		{"speed", records.SpeedKey(sample.Pool), sample.Speed},
		{"total_ranges", records.TotalRangesKey(sample.Pool), sample.TotalRanges},
	}
	for _, s := range scalars {
		if s.value == nil {
			continue
		}
		v := *s.value
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			reject("%s: invalid value %v", s.name, v)
			continue
		}
		snap.loadScalar(state, s.key)
		snap.series.Append(s.key, schema.TimePoint{Timestamp: ts, Value: v})
		snap.series.SetCurrent(s.key, v)
		touched = append(touched, s.key)
		result.Accepted++
	}

	usersKey := records.RangesKey(sample.Pool)
	usersTouched := false
	if len(sample.Users) > 0 && sample.Pool != e.cfg.PrimaryPool {
		reject("users: per-user readings are only tracked for the primary pool '%s'", e.cfg.PrimaryPool)
	} else if len(sample.Users) > 0 {
		snap.loadUsers(state, usersKey)
		canonical := make(map[string]string)
		for name := range snap.series.Users(usersKey).Data {
			canonical[strings.ToLower(name)] = name
		}
		seen := make(map[string]string, len(sample.Users))
		for _, name := range slices.Sorted(maps.Keys(sample.Users)) {
			reading := sample.Users[name]
			user := strings.TrimSpace(name)
			norm := strings.ToLower(user)
			if known, ok := canonical[norm]; ok {
				user = known
			}
			first, dup := seen[norm]
			switch {
			case user == "":
				reject("users: empty user name")
			case dup:
				reject("users: %s duplicates %s", strings.TrimSpace(name), first)
			case reading.Ranges < 0:
				reject("users: %s has negative ranges %d", user, reading.Ranges)
			case math.IsNaN(reading.Speed) || math.IsInf(reading.Speed, 0) || reading.Speed < 0:
				reject("users: %s has invalid speed %v", user, reading.Speed)
			default:
				snap.series.AppendUser(usersKey, user, schema.UserPoint{Timestamp: ts, Ranges: reading.Ranges, Speed: reading.Speed})
				canonical[norm] = user
				seen[norm] = user
				usersTouched = true
				result.Accepted++
			}
		}
	}

	snap.series.Prune(now, e.cfg.RetentionDays)
	for _, key := range touched {
		if err := snap.saveScalar(state, key, now); err != nil {
			return result, fmt.Errorf("failed to persist %s: %w", key, err)
		}
	}
	if usersTouched {
		if err := snap.saveUsers(state, usersKey, now); err != nil {
			return result, fmt.Errorf("failed to persist %s: %w", usersKey, err)
		}
	}
	return result, nil
}

// IngestJSON decodes and applies a collector sample. Readings that fail to
// decode count as rejected.
func (e *Engine) IngestJSON(ctx context.Context, data []byte) (schema.IngestResult, error) {
	sample, issues, err := records.DecodeSample(data)
	if err != nil {
		return schema.IngestResult{}, err
	}
	result, err := e.Ingest(ctx, sample)
	if err != nil {
		return result, err
	}
	warnings := make([]string, 0, len(issues)+len(result.Warnings))
	for _, issue := range issues {
		warnings = append(warnings, issue.Error())
	}
	result.Rejected += len(issues)
	result.Warnings = append(warnings, result.Warnings...)
	if len(result.Warnings) == 0 {
		result.Warnings = nil
	}
	return result, nil
}
