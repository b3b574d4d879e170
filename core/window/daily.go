package window

import (
	"math"

	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/schema"
)

// DayValue is the value attributed to one civil day.
type DayValue struct {
	Label   string
	Value   float64
	HasData bool
}

// LastValuePerDay returns, oldest first, the last sample of each of the last days civil days.
// When today has no sample the current value is used. Other empty days are zero with HasData unset.
// An empty history yields no days.
func LastValuePerDay(cal Calendar, history []schema.TimePoint, days int, current float64) []DayValue {
	if len(history) == 0 || days <= 0 {
		return nil
	}
	sorted := series.Sorted(history)

	out := make([]DayValue, days)
	for d := range days {
		dv := DayValue{Label: cal.DayLabel(d)}
		for _, p := range sorted {
			if cal.InDay(p.Timestamp, d) {
				dv.Value, dv.HasData = p.Value, true
			}
		}
		if !dv.HasData && d == 0 {
			dv.Value, dv.HasData = current, true
		}
		out[days-1-d] = dv
	}
	return out
}

// ValueAtBoundary returns the sample nearest in time to the civil boundary daysAgo.
// The earlier sample wins ties on distance.
func ValueAtBoundary(cal Calendar, history []schema.TimePoint, daysAgo int) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}
	sorted := series.Sorted(history)
	target := cal.DayBoundary(daysAgo)
	best := sorted[0]
	bestDiff := absDiff(best.Timestamp, target)
	for _, p := range sorted[1:] {
		if diff := absDiff(p.Timestamp, target); diff < bestDiff {
			best, bestDiff = p, diff
		}
	}
	return best.Value, true
}

// AverageForDay returns the mean of the samples in the civil day daysAgo.
func AverageForDay(cal Calendar, history []schema.TimePoint, daysAgo int) (float64, bool) {
	var sum float64
	var n int
	for _, p := range history {
		if cal.InDay(p.Timestamp, daysAgo) {
			sum += p.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Change returns now minus past, or false when past is not available.
func Change(now float64, past float64, ok bool) (float64, bool) {
	if !ok {
		return 0, false
	}
	return now - past, true
}

// PercentChange returns the relative change from past to now in percent.
// A missing or zero past value is not available.
func PercentChange(now float64, past float64, ok bool) (float64, bool) {
	if !ok || past == 0 {
		return 0, false
	}
	return (now - past) / past * 100, true
}

// DailyIncrease turns per-day values into per-day increases. The first day is zero and a day
// after an empty or zero day is zero. When the second entry exceeds goal it is dropped,
// since the oldest day is usually partial.
func DailyIncrease(days []DayValue, goal float64) []DayValue {
	if len(days) < 2 {
		return nil
	}
	out := make([]DayValue, 0, len(days))
	for i, d := range days {
		inc := DayValue{Label: d.Label, HasData: d.HasData}
		if i > 0 && days[i-1].Value != 0 {
			inc.Value = d.Value - days[i-1].Value
		}
		out = append(out, inc)
	}
	if len(out) > 1 && out[1].Value > goal {
		out = append(out[:1], out[2:]...)
	}
	return out
}

// ActiveUsersPerDay counts, oldest first, the users with at least one sample in each of the
// days complete civil days before today.
func ActiveUsersPerDay(cal Calendar, users schema.UserSeriesCollection, days int) []DayValue {
	out := make([]DayValue, 0, days)
	for d := days; d >= 1; d-- {
		count := 0
		for _, points := range users.Data {
			for _, p := range points {
				if cal.InDay(p.Timestamp, d) {
					count++
					break
				}
			}
		}
		out = append(out, DayValue{Label: cal.DayLabel(d), Value: float64(count), HasData: true})
	}
	return out
}

// MaxAndMean returns the maximum and mean of the sample values, zero when empty.
func MaxAndMean(points []schema.TimePoint) (float64, float64) {
	if len(points) == 0 {
		return 0, 0
	}
	maxV, sum := math.Inf(-1), 0.0
	for _, p := range points {
		maxV = math.Max(maxV, p.Value)
		sum += p.Value
	}
	return maxV, sum / float64(len(points))
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
