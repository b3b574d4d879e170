// Package report assembles the daily report from the derived statistics, events, and milestones.
//
// Assemble is pure: it performs no I/O and returns the same report for the same input.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/huangsam/hunterstats/core/events"
	"github.com/huangsam/hunterstats/core/milestone"
	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/core/window"
	"github.com/huangsam/hunterstats/schema"
)

// Section keys in report order.
const (
	SectionHeader       = "header"
	SectionCompletion   = "completion"
	SectionPoolSpeed    = "pool_speed"
	SectionHeroes       = "heroes"
	SectionSpeedRocket  = "speed_rocket"
	SectionShootingStar = "shooting_star"
	SectionMilestones   = "milestones"
	SectionApproaching  = "approaching"
	SectionExplanation  = "explanation"
	SectionTopUsers     = "top_users"
	SectionGlobal       = "global"
	SectionAllTimeBest  = "all_time_best"
)

// SectionKeys lists every section key in report order.
var SectionKeys = []string{
	SectionHeader, SectionCompletion, SectionPoolSpeed, SectionHeroes, SectionSpeedRocket,
	SectionShootingStar, SectionMilestones, SectionApproaching, SectionExplanation,
	SectionTopUsers, SectionGlobal, SectionAllTimeBest,
}

const (
	noData       = "No data available"
	headerLayout = "Monday January 02, 2006"
	etaLayout    = "2006-01-02 15:04:05"
)

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// Options are the tunables of a report.
type Options struct {
	Title            string
	PuzzleName       string
	EventWindow      time.Duration
	CompletionTarget float64
	ProjectionPoints int
	DailyGoal        float64
	TopUsers         int
	TopHeroes        int
	MessageLimit     int
	RetentionDays    int
}

// DefaultOptions returns the options of the daily report.
func DefaultOptions() Options {
	return Options{
		Title:            "BTC Hunters Stats",
		PuzzleName:       "Puzzle 67",
		EventWindow:      events.DefaultWindow,
		CompletionTarget: 50,
		ProjectionPoints: 5,
		DailyGoal:        0.07,
		TopUsers:         10,
		TopHeroes:        3,
		MessageLimit:     DefaultMessageLimit,
		RetentionDays:    30,
	}
}

// Input is everything a report is computed from. It is read, never modified.
type Input struct {
	Now          time.Time
	Location     *time.Location
	Completion   schema.ScalarSeries // Primary pool, including the sample taken for this run
	Speed        schema.ScalarSeries
	TotalRanges  schema.ScalarSeries
	Users        schema.UserSeriesCollection
	Achievements schema.AchievementState
	PoolSpeeds   []PoolHistory
	Completions  []PoolHistory
	Options      Options
}

// Result is the assembled report plus the state changes it implies.
type Result struct {
	Report              schema.Report
	Achievements        schema.AchievementState
	AchievementsChanged bool
	NewBest             *schema.SpeedRocket // Set when the speed rocket beat the all-time best
}

// Assemble computes the report for one run.
func Assemble(in Input) Result {
	opts := in.Options
	cal := window.NewCalendar(in.Location, in.Now)
	picker := NewPicker(cal)
	tracker := milestone.NewTracker(nil)

	completionHist := series.Sorted(in.Completion.History)
	speedHist := series.Sorted(in.Speed.History)

	var (
		summary  schema.ReportSummary
		evts     []schema.Event
		sections []schema.ReportSection
	)

	sections = append(sections, schema.ReportSection{
		Key:     SectionHeader,
		Heading: fmt.Sprintf("🌟 %s 🌟", opts.Title),
		Lines:   []string{in.Now.In(cal.Location).Format(headerLayout)},
	})

	// Completion
	summary.Completion = in.Completion.Current
	days := window.LastValuePerDay(cal, completionHist, statDays, in.Completion.Current)
	var yesterday window.DayValue
	if len(days) >= 2 {
		yesterday = days[len(days)-2]
	}
	summary.ChangeSinceDay = optional(window.Change(in.Completion.Current, yesterday.Value, yesterday.HasData))
	weekAgo, weekOK := window.ValueAtBoundary(cal, completionHist, 7)
	summary.ChangeSinceWeek = optional(window.Change(in.Completion.Current, weekAgo, weekOK))
	monthAgo, monthOK := window.ValueAtBoundary(cal, completionHist, statDays)
	summary.ChangeSinceMonth = optional(window.Change(in.Completion.Current, monthAgo, monthOK))

	eta := "Not available"
	if t, ok := window.EstimateCompletionTime(completionHist, in.Completion.Current, in.Now, opts.CompletionTarget, opts.ProjectionPoints); ok {
		summary.EstimatedCompletion = &t
		eta = t.In(cal.Location).Format(etaLayout)
	}
	sections = append(sections, schema.ReportSection{
		Key:     SectionCompletion,
		Heading: fmt.Sprintf("🧩 %s Completion:", opts.PuzzleName),
		Lines: []string{
			fmt.Sprintf("%.4f%% - %s", in.Completion.Current, picker.Pick(CommentCompletion)),
			"📈 Change since yesterday: " + percentOrNoData(summary.ChangeSinceDay),
			"📅 Change since last week: " + percentOrNoData(summary.ChangeSinceWeek),
			"📆 Change since last month: " + percentOrNoData(summary.ChangeSinceMonth),
			fmt.Sprintf("⏳ Estimated %g%% completion: %s", opts.CompletionTarget, eta),
		},
	})

	// Pool speed
	summary.PoolSpeed = in.Speed.Current
	if last, ok := series.Latest(speedHist); ok {
		summary.PoolSpeed = last.Value
	}
	summary.SpeedToday = summary.PoolSpeed
	if avg, ok := window.AverageForDay(cal, speedHist, 0); ok {
		summary.SpeedToday = avg
	}
	yAvg, yOK := window.AverageForDay(cal, speedHist, 1)
	summary.SpeedChangePct = optional(window.PercentChange(summary.SpeedToday, yAvg, yOK))
	diff := "(No data available)"
	if summary.SpeedChangePct != nil {
		direction := "increase"
		if *summary.SpeedChangePct < 0 {
			direction = "decrease"
		}
		diff = fmt.Sprintf("(%.2f%% %s compared to yesterday)", *summary.SpeedChangePct, direction)
	}
	sections = append(sections, schema.ReportSection{
		Key:     SectionPoolSpeed,
		Heading: "🏊‍♂️ Pool Speed:",
		Lines: []string{fmt.Sprintf("%.2f BKeys/s %s %s %s",
			summary.PoolSpeed, speedEmoji(summary.PoolSpeed), picker.Pick(CommentSpeed), diff)},
	})

	// Daily heroes
	heroes := events.DailyHeroes(in.Users, in.Now, opts.EventWindow)
	if opts.TopHeroes >= 0 && len(heroes) > opts.TopHeroes {
		heroes = heroes[:opts.TopHeroes]
	}
	heroSection := schema.ReportSection{Key: SectionHeroes, Heading: fmt.Sprintf("🏅 Daily Heroes (Top %d):", opts.TopHeroes)}
	for _, h := range heroes {
		medal, ok := medals[h.Rank]
		if !ok {
			medal = "⭐"
		}
		line := fmt.Sprintf("%d. %s - +%d ranges, %.2f BK/s %s", h.Rank, h.User, h.RangeDelta, h.Speed, medal)
		heroSection.Lines = append(heroSection.Lines, line)
		evts = append(evts, schema.Event{
			Kind: schema.DailyHeroEvent, User: h.User, Rank: h.Rank, Ranges: h.RangeDelta, Speed: h.Speed, Message: line,
		})
	}
	if len(heroes) > 0 {
		heroSection.Lines = append(heroSection.Lines, "", "Incredible daily heroes! Keep driving the puzzle forward!")
	} else {
		heroSection.Lines = []string{"🚫 No daily heroes..."}
	}
	sections = append(sections, heroSection)

	// Speed rocket
	summary.BestSpeed, summary.BestSpeedHolder = in.Speed.BestSpeed, in.Speed.BestSpeedHolder
	var newBest *schema.SpeedRocket
	rocketSection := schema.ReportSection{Key: SectionSpeedRocket, Heading: "🚀 Speed Rocket:"}
	if rocket, ok := events.SpeedRocket(in.Users, in.Now, opts.EventWindow); ok {
		msg := picker.Pick(CommentSpeedRocket, "{user}", rocket.User)
		rocketSection.Lines = []string{
			fmt.Sprintf("%s achieved the highest speed today: %.2f BK/s!", rocket.User, rocket.Speed),
			msg,
		}
		evts = append(evts, schema.Event{Kind: schema.SpeedRocketEvent, User: rocket.User, Speed: rocket.Speed, Message: msg})
		if rocket.Speed > in.Speed.BestSpeed {
			newBest = &rocket
			summary.BestSpeed, summary.BestSpeedHolder = rocket.Speed, rocket.User
			evts = append(evts, schema.Event{
				Kind: schema.AllTimeBestEvent, User: rocket.User, Speed: rocket.Speed,
				Message: fmt.Sprintf("New all-time top speed: %.2f BKeys/s by %s", rocket.Speed, rocket.User),
			})
		}
	} else {
		rocketSection.Lines = []string{"No speed rocket today..."}
	}
	sections = append(sections, rocketSection)

	// Shooting star
	starSection := schema.ReportSection{Key: SectionShootingStar, Heading: "💫 Shooting Star:"}
	if star, ok := events.ShootingStar(in.Users, in.Now, opts.EventWindow); ok {
		msg := picker.Pick(CommentShootingStar, "{user}", star.User)
		starSection.Lines = []string{
			fmt.Sprintf("%s maintained >=%g BK/s for %d+ hours!", star.User, events.StarGateSpeed, events.StarMinimumSeconds/3600),
			msg,
		}
		evts = append(evts, schema.Event{
			Kind: schema.ShootingStarEvent, User: star.User, Speed: star.FinalSpeed, Seconds: star.QualifyingSeconds, Message: msg,
		})
	} else {
		starSection.Lines = []string{"No shooting star today..."}
	}
	sections = append(sections, starSection)

	// Milestones
	state, achieved := tracker.ApplyAll(in.Achievements, in.Users)
	achievedSection := schema.ReportSection{Key: SectionMilestones, Heading: "🎯 Milestones Achieved (Last 24 Hours):"}
	for _, e := range achieved {
		level := levelOf(tracker, e.Threshold)
		e.Message = picker.Pick(CommentAchieved,
			"{user}", e.User, "{milestone}", milestone.Thousands(e.Threshold), "{emoji}", level.Emoji)
		achievedSection.Lines = append(achievedSection.Lines, "✅ "+e.Message)
		evts = append(evts, e)
	}
	if len(achieved) == 0 {
		achievedSection.Lines = []string{picker.Pick(CommentNoMilestones)}
	}
	sections = append(sections, achievedSection)

	approachSection := schema.ReportSection{Key: SectionApproaching, Heading: "⚠️ Approaching Milestones:"}
	for i, a := range tracker.ApproachingAll(in.Users) {
		msg := picker.Pick(CommentApproaching,
			"{user}", a.User, "{milestone}", a.Level.Name, "{remaining}", milestone.Thousands(a.Remaining))
		approachSection.Lines = append(approachSection.Lines, fmt.Sprintf("%d. %s", i+1, msg))
		evts = append(evts, schema.Event{
			Kind: schema.MilestoneApproaching, User: a.User, Milestone: a.Level.Name,
			Threshold: a.Level.Threshold, Ranges: a.Remaining, Message: msg,
		})
	}
	if len(approachSection.Lines) == 0 {
		approachSection.Lines = []string{"No approaching milestones today..."}
	}
	sections = append(sections, approachSection)

	sections = append(sections, schema.ReportSection{
		Key: SectionExplanation, Heading: "📜 Milestone Explanation:", Lines: tracker.Explanation(),
	})

	// Top users
	topSection := schema.ReportSection{Key: SectionTopUsers, Heading: fmt.Sprintf("🥇 Top %d Users:", opts.TopUsers)}
	for i, u := range milestone.TopUsers(in.Users, opts.TopUsers) {
		name := u.User
		if emoji := tracker.HighestEmoji(u.Ranges); emoji != "" {
			name += " " + emoji
		}
		topSection.Lines = append(topSection.Lines, fmt.Sprintf("%d. %s - %s ranges", i+1, name, milestone.Thousands(u.Ranges)))
	}
	if len(topSection.Lines) == 0 {
		topSection.Lines = []string{"🚫 " + noData + "."}
	}
	sections = append(sections, topSection)

	// Global statistics
	summary.TotalRanges = in.TotalRanges.Current
	summary.Users = in.Users.Users()
	summary.MaxSpeed, summary.AvgSpeed = window.MaxAndMean(series.Since(speedHist, series.Cutoff(in.Now, opts.RetentionDays)))
	sections = append(sections, schema.ReportSection{
		Key:     SectionGlobal,
		Heading: fmt.Sprintf("📊 Global Statistics (Last %d Days):", opts.RetentionDays),
		Lines: []string{
			"• Total Pool Ranges: " + milestone.Thousands(int64(math.Round(summary.TotalRanges))),
			fmt.Sprintf("• %d Day Top Speed Spike: %.2f BKeys/s", opts.RetentionDays, summary.MaxSpeed),
			fmt.Sprintf("• Avg Speed (BKeys/s) over Last %d Days: %.2f", opts.RetentionDays, summary.AvgSpeed),
		},
	})

	if summary.BestSpeedHolder != "" && summary.BestSpeed > 0 {
		sections = append(sections, schema.ReportSection{
			Key:     SectionAllTimeBest,
			Heading: "🏆 All-Time Top Speed:",
			Lines:   []string{fmt.Sprintf("%.2f BKeys/s by %s", summary.BestSpeed, summary.BestSpeedHolder)},
		})
	}

	rep := schema.Report{
		GeneratedAt: in.Now,
		Timezone:    cal.Location.String(),
		Sections:    sections,
		Charts:      buildCharts(cal, in, completionHist, speedHist, heroes),
		Events:      evts,
		Summary:     summary,
	}
	rep.Parts = ChunkText(RenderHTML(sections), opts.MessageLimit)

	return Result{
		Report:              rep,
		Achievements:        state,
		AchievementsChanged: !state.Equal(in.Achievements),
		NewBest:             newBest,
	}
}

func buildCharts(cal window.Calendar, in Input, completionHist, speedHist []schema.TimePoint, heroes []schema.Hero) []schema.ChartSeries {
	now := in.Now.Unix()
	var charts []schema.ChartSeries
	add := func(c schema.ChartSeries, ok bool) {
		if ok {
			charts = append(charts, c)
		}
	}
	add(PoolSpeedChart(speedHist))
	add(CompletionChart(in.Options.PuzzleName, completionHist))
	add(DailyIncreaseChart(cal, completionHist, in.Completion.Current, in.Options.DailyGoal))
	add(ActiveUsersChart(cal, in.Users), true)
	add(PoolSpeedsChart(now, in.PoolSpeeds))
	for _, h := range heroes {
		add(HeroChart(now, h, in.Users.Data[h.User]))
	}
	add(PoolCompletionChart(now, in.Completions))
	return charts
}

func levelOf(t milestone.Tracker, threshold int64) schema.MilestoneLevel {
	for _, l := range t.Levels() {
		if l.Threshold == threshold {
			return l
		}
	}
	return schema.MilestoneLevel{}
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func percentOrNoData(v *float64) string {
	if v == nil {
		return noData
	}
	return fmt.Sprintf("%.4f%%", *v)
}

func speedEmoji(speed float64) string {
	switch {
	case speed < 500:
		return "🐢"
	case speed < 1000:
		return "⚡"
	default:
		return "🚀🚀🚀"
	}
}
