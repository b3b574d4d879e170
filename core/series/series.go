// Package series stores timestamped samples and regularizes them into fixed-width buckets.
package series

import (
	"cmp"
	"slices"
	"time"

	"github.com/huangsam/hunterstats/schema"
)

// SecondsPerDay is the length of a retention day.
const SecondsPerDay = 86400

// Timestamped is implemented by every sample type.
type Timestamped interface {
	Unix() int64
}

// Sorted returns a chronologically ordered copy. Equal timestamps keep input order.
func Sorted[T Timestamped](points []T) []T {
	out := slices.Clone(points)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(a.Unix(), b.Unix())
	})
	return out
}

// Cutoff returns the earliest timestamp that survives a prune of maxAgeDays.
func Cutoff(now time.Time, maxAgeDays int) int64 {
	return now.Unix() - int64(maxAgeDays)*SecondsPerDay
}

// Prune returns the points with timestamp >= cutoff, keeping their order.
func Prune[T Timestamped](points []T, cutoff int64) []T {
	return slices.DeleteFunc(slices.Clone(points), func(p T) bool {
		return p.Unix() < cutoff
	})
}

// Between returns the points with from <= timestamp < to, keeping their order.
func Between[T Timestamped](points []T, from, to int64) []T {
	var out []T
	for _, p := range points {
		if ts := p.Unix(); ts >= from && ts < to {
			out = append(out, p)
		}
	}
	return out
}

// Since returns the points with timestamp >= from, keeping their order.
func Since[T Timestamped](points []T, from int64) []T {
	return Prune(points, from)
}

// SpeedPoints projects user samples onto their speed values.
func SpeedPoints(points []schema.UserPoint) []schema.TimePoint {
	out := make([]schema.TimePoint, 0, len(points))
	for _, p := range points {
		out = append(out, schema.TimePoint{Timestamp: p.Timestamp, Value: p.Speed})
	}
	return out
}

// Values returns the sample values in order.
func Values(points []schema.TimePoint) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		out = append(out, p.Value)
	}
	return out
}
