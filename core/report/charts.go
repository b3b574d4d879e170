package report

import (
	"fmt"
	"math"

	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/core/window"
	"github.com/huangsam/hunterstats/schema"
)

// Chart identifiers in the order the notifier sends them.
const (
	ChartPoolSpeed      = "pool_speed"
	ChartCompletion     = "completion"
	ChartDailyIncrease  = "daily_increase"
	ChartActiveUsers    = "active_users"
	ChartPoolSpeeds     = "pool_speeds"
	ChartHeroPrefix     = "hero_"
	ChartPoolCompletion = "pool_completion"
)

// Resampling and smoothing parameters per chart.
const (
	speedInterval          = 600
	speedSMAWindow         = 600
	completionInterval     = 3600
	completionStep         = 0.1
	poolCompletionInterval = 1800
	statDays               = 30
	poolDays               = 7
	heroDays               = 1
)

// PoolHistory is one pool's history for the multi-pool charts.
type PoolHistory struct {
	Name    string
	History []schema.TimePoint
}

func ptr(v float64) *float64 { return &v }

func timeLine(label string, points []schema.TimePoint) schema.ChartLine {
	line := schema.ChartLine{Label: label, Points: make([]schema.ChartPoint, 0, len(points))}
	for _, p := range points {
		line.Points = append(line.Points, schema.ChartPoint{Timestamp: p.Timestamp, Value: ptr(p.Value)})
	}
	return line
}

func dayLine(label string, days []window.DayValue) schema.ChartLine {
	line := schema.ChartLine{Label: label, Points: make([]schema.ChartPoint, 0, len(days))}
	for _, d := range days {
		line.Points = append(line.Points, schema.ChartPoint{Label: d.Label, Value: ptr(d.Value)})
	}
	return line
}

// PoolSpeedChart is the primary pool speed on a 10 minute grid with its causal SMA.
func PoolSpeedChart(history []schema.TimePoint) (schema.ChartSeries, bool) {
	if len(history) < 2 {
		return schema.ChartSeries{}, false
	}
	resampled := series.Resample(history, speedInterval, schema.AggLast)
	sma := window.Causal(series.Values(resampled), speedSMAWindow)
	smoothed := make([]schema.TimePoint, len(resampled))
	for i, p := range resampled {
		smoothed[i] = schema.TimePoint{Timestamp: p.Timestamp, Value: sma[i]}
	}
	return schema.ChartSeries{
		ID:     ChartPoolSpeed,
		Title:  "🏊‍♂️ Pool Speed History (SMA600)",
		XLabel: "Time",
		YLabel: "BKeys/s",
		Lines:  []schema.ChartLine{timeLine("Pool speed", resampled), timeLine("SMA600", smoothed)},
	}, true
}

// CompletionChart is the completion history in hourly steps, quantized to 0.1%.
func CompletionChart(puzzle string, history []schema.TimePoint) (schema.ChartSeries, bool) {
	if len(history) < 2 {
		return schema.ChartSeries{}, false
	}
	resampled := series.Resample(history, completionInterval, schema.AggLast)
	for i := range resampled {
		resampled[i].Value = math.Round(resampled[i].Value/completionStep) * completionStep
	}
	return schema.ChartSeries{
		ID:     ChartCompletion,
		Title:  fmt.Sprintf("🧩 %s Completion History (Hourly Steps)", puzzle),
		XLabel: "Time",
		YLabel: "Completion (%)",
		Lines:  []schema.ChartLine{timeLine("Completion", resampled)},
	}, true
}

// DailyIncreaseChart is the per-day completion increase over the last 30 civil days
// with a constant goal line.
func DailyIncreaseChart(cal window.Calendar, history []schema.TimePoint, current, goal float64) (schema.ChartSeries, bool) {
	days := window.LastValuePerDay(cal, history, statDays, current)
	increases := window.DailyIncrease(days, goal)
	if len(increases) == 0 {
		return schema.ChartSeries{}, false
	}
	goals := make([]window.DayValue, len(increases))
	for i, d := range increases {
		goals[i] = window.DayValue{Label: d.Label, Value: goal, HasData: true}
	}
	return schema.ChartSeries{
		ID:     ChartDailyIncrease,
		Title:  "📈 Daily Percentage Increase of Puzzle Completion (Last 30 Days)",
		XLabel: "Day",
		YLabel: "Increase (%)",
		Lines:  []schema.ChartLine{dayLine("Daily increase", increases), dayLine("Goal", goals)},
	}, true
}

// ActiveUsersChart counts the users with samples on each of the last 30 complete civil days.
func ActiveUsersChart(cal window.Calendar, users schema.UserSeriesCollection) schema.ChartSeries {
	return schema.ChartSeries{
		ID:     ChartActiveUsers,
		Title:  "👥 Active Users Over Last 30 Days",
		XLabel: "Day",
		YLabel: "Users",
		Lines:  []schema.ChartLine{dayLine("Active users", window.ActiveUsersPerDay(cal, users, statDays))},
	}
}

// PoolSpeedsChart overlays every pool's speed over the last 7 days.
func PoolSpeedsChart(now int64, pools []PoolHistory) (schema.ChartSeries, bool) {
	chart := schema.ChartSeries{
		ID:     ChartPoolSpeeds,
		Title:  "🌐 Multi-Pool Speed (Last 7 Days)",
		XLabel: "Time",
		YLabel: "BKeys/s",
	}
	for _, pool := range pools {
		recent := series.Since(pool.History, now-poolDays*series.SecondsPerDay)
		if len(recent) == 0 {
			continue
		}
		chart.Lines = append(chart.Lines, timeLine(pool.Name, series.Resample(recent, speedInterval, schema.AggLast)))
	}
	return chart, len(chart.Lines) > 0
}

// HeroChart is one hero's speed over the last day.
func HeroChart(now int64, hero schema.Hero, points []schema.UserPoint) (schema.ChartSeries, bool) {
	recent := series.Since(series.SpeedPoints(points), now-heroDays*series.SecondsPerDay)
	if len(recent) == 0 {
		return schema.ChartSeries{}, false
	}
	return schema.ChartSeries{
		ID:     fmt.Sprintf("%s%d", ChartHeroPrefix, hero.Rank),
		Title:  fmt.Sprintf("Unstoppable Daily Hero %d: %s (Last 24h)", hero.Rank, hero.User),
		XLabel: "Time",
		YLabel: "BK/s",
		Lines:  []schema.ChartLine{timeLine(hero.User, series.Resample(recent, speedInterval, schema.AggLast))},
	}, true
}

// PoolCompletionChart compares each pool's latest completion over the last 7 days.
func PoolCompletionChart(now int64, pools []PoolHistory) (schema.ChartSeries, bool) {
	line := schema.ChartLine{Label: "Completion"}
	for _, pool := range pools {
		recent := series.Since(pool.History, now-poolDays*series.SecondsPerDay)
		latest, ok := series.Latest(series.Resample(recent, poolCompletionInterval, schema.AggLast))
		if !ok {
			continue
		}
		line.Points = append(line.Points, schema.ChartPoint{Label: pool.Name, Value: ptr(latest.Value)})
	}
	if len(line.Points) == 0 {
		return schema.ChartSeries{}, false
	}
	return schema.ChartSeries{
		ID:     ChartPoolCompletion,
		Title:  "Multi-Pool Completion",
		XLabel: "Pool",
		YLabel: "Completion (%)",
		Lines:  []schema.ChartLine{line},
	}, true
}
