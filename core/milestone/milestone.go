// Package milestone tracks permanent per-user milestone achievements and proximity alerts.
package milestone

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/schema"
)

// ApproachingRatio is how close, relative to a threshold, a user must be to get an alert.
const ApproachingRatio = 0.10

// Tracker evaluates users against an ordered, descending list of levels.
type Tracker struct {
	levels []schema.MilestoneLevel
}

// NewTracker returns a tracker over levels. Nil levels use schema.Milestones.
// Levels are sorted by descending threshold.
func NewTracker(levels []schema.MilestoneLevel) Tracker {
	if levels == nil {
		levels = schema.Milestones
	}
	sorted := slices.Clone(levels)
	slices.SortStableFunc(sorted, func(a, b schema.MilestoneLevel) int {
		return cmp.Compare(b.Threshold, a.Threshold)
	})
	return Tracker{levels: sorted}
}

// Levels returns the tracker levels in descending threshold order.
func (t Tracker) Levels() []schema.MilestoneLevel {
	return slices.Clone(t.levels)
}

// Apply emits one achieved event for every threshold the user has reached but not yet been
// notified about, highest first, and returns the state with those thresholds added.
// The input state is left untouched.
func (t Tracker) Apply(state schema.AchievementState, user string, cumulative int64) (schema.AchievementState, []schema.Event) {
	var events []schema.Event
	for _, level := range t.levels {
		if cumulative < level.Threshold || state.Has(user, level.Threshold) {
			continue
		}
		state = state.With(user, level.Threshold)
		events = append(events, schema.Event{
			Kind:      schema.MilestoneAchieved,
			User:      user,
			Milestone: level.Name,
			Threshold: level.Threshold,
			Ranges:    cumulative,
		})
	}
	return state, events
}

// ApplyAll runs Apply for the latest cumulative ranges of every user, in name order.
func (t Tracker) ApplyAll(state schema.AchievementState, users schema.UserSeriesCollection) (schema.AchievementState, []schema.Event) {
	var events []schema.Event
	for _, user := range slices.Sorted(maps.Keys(users.Data)) {
		latest, ok := Latest(users.Data[user])
		if !ok {
			continue
		}
		var evs []schema.Event
		state, evs = t.Apply(state, user, latest)
		events = append(events, evs...)
	}
	return state, events
}

// Approaching lists every unreached threshold within ApproachingRatio of the user's total.
// It carries no state and repeats on every call.
func (t Tracker) Approaching(user string, cumulative int64) []schema.Approach {
	var out []schema.Approach
	for _, level := range t.levels {
		if cumulative >= level.Threshold {
			continue
		}
		remaining := level.Threshold - cumulative
		if float64(remaining) <= ApproachingRatio*float64(level.Threshold) {
			out = append(out, schema.Approach{User: user, Level: level, Remaining: remaining})
		}
	}
	return out
}

// ApproachingAll runs Approaching for the latest cumulative ranges of every user, in name order.
func (t Tracker) ApproachingAll(users schema.UserSeriesCollection) []schema.Approach {
	var out []schema.Approach
	for _, user := range slices.Sorted(maps.Keys(users.Data)) {
		if latest, ok := Latest(users.Data[user]); ok {
			out = append(out, t.Approaching(user, latest)...)
		}
	}
	return out
}

// HighestEmoji returns the emoji of the highest level reached, or "" when none is.
func (t Tracker) HighestEmoji(cumulative int64) string {
	for _, level := range t.levels {
		if cumulative >= level.Threshold {
			return level.Emoji
		}
	}
	return ""
}

// Explanation describes the range covered by each level, highest first.
func (t Tracker) Explanation() []string {
	lines := make([]string, 0, len(t.levels))
	for i, level := range t.levels {
		if i == 0 {
			lines = append(lines, fmt.Sprintf("• %s - %s+ ranges %s", level.Name, Thousands(level.Threshold), level.Emoji))
			continue
		}
		upper := t.levels[i-1].Threshold - 1
		lines = append(lines, fmt.Sprintf("• %s - %s to %s ranges %s",
			level.Name, Thousands(level.Threshold), Thousands(upper), level.Emoji))
	}
	return lines
}

// TopUsers returns up to n users ordered by latest cumulative ranges, ties by name.
func TopUsers(users schema.UserSeriesCollection, n int) []schema.UserTotal {
	var totals []schema.UserTotal
	for _, user := range slices.Sorted(maps.Keys(users.Data)) {
		if latest, ok := Latest(users.Data[user]); ok {
			totals = append(totals, schema.UserTotal{User: user, Ranges: latest})
		}
	}
	slices.SortStableFunc(totals, func(a, b schema.UserTotal) int {
		return cmp.Compare(b.Ranges, a.Ranges)
	})
	if n >= 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// Latest returns the cumulative ranges of the chronologically last sample.
func Latest(points []schema.UserPoint) (int64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	sorted := series.Sorted(points)
	return sorted[len(sorted)-1].Ranges, true
}

// Thousands formats n with comma separators.
func Thousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := n < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
