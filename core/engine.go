package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/hunterstats/core/events"
	"github.com/huangsam/hunterstats/core/report"
	"github.com/huangsam/hunterstats/core/window"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/records"
	"github.com/huangsam/hunterstats/schema"
)

// Engine runs the hunterstats cycles against the configured stores.
type Engine struct {
	cfg   *contract.Config
	mgr   contract.StoreManager
	guard *RunGuard
	now   func() time.Time
}

var _ contract.StatsService = (*Engine)(nil) // Compile-time check

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithGuard shares a run guard between engines.
func WithGuard(g *RunGuard) Option {
	return func(e *Engine) { e.guard = g }
}

// NewEngine creates an engine. The run guard defaults to the configured lock file.
func NewEngine(cfg *contract.Config, mgr contract.StoreManager, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, mgr: mgr, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.guard == nil {
		e.guard = NewRunGuard(cfg.LockFile)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() *contract.Config { return e.cfg }

func (e *Engine) state() contract.StateStore {
	if e.mgr == nil {
		return nil
	}
	return e.mgr.GetStateStore()
}

func (e *Engine) runs() contract.RunStore {
	if e.mgr == nil {
		return nil
	}
	return e.mgr.GetRunStore()
}

// location falls back to UTC for hand-built configs.
func (e *Engine) location() *time.Location {
	if e.cfg.Location == nil {
		return time.UTC
	}
	return e.cfg.Location
}

func (e *Engine) options() report.Options {
	return report.Options{
		Title:            e.cfg.Title,
		PuzzleName:       e.cfg.PuzzleName,
		EventWindow:      e.cfg.EventWindow,
		CompletionTarget: e.cfg.CompletionTarget,
		ProjectionPoints: e.cfg.ProjectionPoints,
		DailyGoal:        e.cfg.DailyGoal,
		TopUsers:         e.cfg.TopUsers,
		TopHeroes:        e.cfg.TopHeroes,
		MessageLimit:     e.cfg.MessageLimit,
		RetentionDays:    e.cfg.RetentionDays,
	}
}

// RunDaily executes one daily cycle and returns the assembled report.
// With persist set, the cycle holds the run guard and writes the updated
// completion history, achievements, and all-time best back to the state store.
// Write failures are logged and swallowed.
func (e *Engine) RunDaily(ctx context.Context, persist bool) (report.Result, error) {
	if persist {
		if err := e.guard.Acquire(); err != nil {
			return report.Result{}, err
		}
		defer e.guard.Release()
	}
	if err := ctx.Err(); err != nil {
		return report.Result{}, err
	}

	start := e.now()
	state := e.state()
	primary := e.cfg.PrimaryPool
	snap := loadSnapshot(state, e.cfg.Pools, primary)
	snap.series.Prune(start, e.cfg.RetentionDays)

	completionKey := records.CompletionKey(primary)
	if snap.loaded[completionKey] {
		current := snap.series.Scalar(completionKey).Current
		snap.series.Append(completionKey, schema.TimePoint{Timestamp: start.Unix(), Value: current})
	}

	in := report.Input{
		Now:          start,
		Location:     e.location(),
		Completion:   snap.series.Scalar(completionKey),
		Speed:        snap.series.Scalar(records.SpeedKey(primary)),
		TotalRanges:  snap.series.Scalar(records.TotalRangesKey(primary)),
		Users:        snap.series.Users(records.RangesKey(primary)),
		Achievements: snap.achievements,
		Options:      e.options(),
	}
	for _, pool := range e.cfg.Pools {
		in.PoolSpeeds = append(in.PoolSpeeds, report.PoolHistory{Name: pool, History: snap.series.History(records.SpeedKey(pool))})
		in.Completions = append(in.Completions, report.PoolHistory{Name: pool, History: snap.series.History(records.CompletionKey(pool))})
	}
	res := report.Assemble(in)
	slog.Debug("Assembled report", "sections", len(res.Report.Sections), "events", len(res.Report.Events), "charts", len(res.Report.Charts))

	if !persist {
		return res, nil
	}

	if snap.loaded[completionKey] {
		if err := snap.saveScalar(state, completionKey, start); err != nil {
			contract.LogWarn("failed to persist completion history", err)
		}
	}
	if res.AchievementsChanged {
		if err := saveAchievements(state, res.Achievements, start); err != nil {
			contract.LogWarn("failed to persist achievements", err)
		}
	}
	if res.NewBest != nil {
		speedKey := records.SpeedKey(primary)
		snap.series.SetBest(speedKey, res.NewBest.Speed, res.NewBest.User)
		if err := snap.saveScalar(state, speedKey, start); err != nil {
			contract.LogWarn("failed to persist all-time best speed", err)
		}
	}
	e.trackRun(start, res.Report)
	return res, nil
}

// Preview assembles the report without touching persisted state.
func (e *Engine) Preview(ctx context.Context) (schema.Report, error) {
	res, err := e.RunDaily(ctx, false)
	if err != nil {
		return schema.Report{}, err
	}
	return res.Report, nil
}

// trackRun records the run and its events in the run store.
func (e *Engine) trackRun(start time.Time, rep schema.Report) {
	runs := e.runs()
	if runs == nil {
		return
	}
	params := map[string]any{
		"pools":          e.cfg.Pools,
		"primary_pool":   e.cfg.PrimaryPool,
		"timezone":       e.location().String(),
		"retention_days": e.cfg.RetentionDays,
		"event_window":   e.cfg.EventWindow.String(),
	}
	runID, err := runs.BeginRun(start, params)
	if err != nil {
		contract.LogWarn("failed to begin run tracking", err)
		return
	}
	if err := runs.RecordEvents(runID, rep.Events, e.now()); err != nil {
		contract.LogWarn("failed to record run events", err)
	}
	summary := schema.RunSummary{EventsEmitted: len(rep.Events), UsersSeen: rep.Summary.Users}
	if err := runs.EndRun(runID, e.now(), summary); err != nil {
		contract.LogWarn("failed to end run tracking", err)
	}
}

// loadUsers returns the primary pool's per-user series pruned to retention.
func (e *Engine) loadUsers(now time.Time) schema.UserSeriesCollection {
	snap := newSnapshot()
	key := records.RangesKey(e.cfg.PrimaryPool)
	snap.loadUsers(e.state(), key)
	snap.series.Prune(now, e.cfg.RetentionDays)
	return snap.series.Users(key)
}

// UserStats computes the per-user statistics for the user matching query.
func (e *Engine) UserStats(ctx context.Context, query string) (schema.UserStats, error) {
	if err := ctx.Err(); err != nil {
		return schema.UserStats{}, err
	}
	now := e.now()
	users := e.loadUsers(now)
	names := make([]string, 0, len(users.Data))
	for name := range users.Data {
		names = append(names, name)
	}
	cal := window.NewCalendar(e.location(), now)
	return report.BuildUserStats(cal, users, report.NewNameIndex(names), query, e.cfg.RetentionDays), nil
}

// Heroes returns the current daily heroes. A non-positive limit uses the configured top-heroes.
func (e *Engine) Heroes(ctx context.Context, limit int) ([]schema.Hero, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.cfg.TopHeroes
	}
	now := e.now()
	heroes := events.DailyHeroes(e.loadUsers(now), now, e.cfg.EventWindow)
	if len(heroes) > limit {
		heroes = heroes[:limit]
	}
	return heroes, nil
}

// StateStatus reports on the state store.
func (e *Engine) StateStatus() (schema.StateStatus, error) {
	state := e.state()
	if state == nil {
		return schema.StateStatus{}, fmt.Errorf("state store is not initialized")
	}
	return state.GetStatus()
}
