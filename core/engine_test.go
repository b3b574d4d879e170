package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/iocache"
	"github.com/huangsam/hunterstats/internal/records"
	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		Timezone:         "UTC",
		Location:         time.UTC,
		Retention:        30 * 24 * time.Hour,
		RetentionDays:    30,
		EventWindow:      24 * time.Hour,
		CompletionTarget: contract.DefaultCompletionTarget,
		ProjectionPoints: contract.DefaultProjectionPoints,
		DailyGoal:        contract.DefaultDailyGoal,
		TopUsers:         contract.DefaultTopUsers,
		TopHeroes:        contract.DefaultTopHeroes,
		MessageLimit:     contract.DefaultMessageLimit,
		Title:            contract.DefaultTitle,
		PuzzleName:       contract.DefaultPuzzleName,
		Pools:            []string{"Hunters", "TTD"},
		PrimaryPool:      "Hunters",
		LockFile:         filepath.Join(t.TempDir(), "hunterstats.lock"),
	}
}

func newFileStore(t *testing.T) *iocache.FileStateStore {
	t.Helper()
	store, err := iocache.NewFileStateStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestEngine(t *testing.T, state contract.StateStore, runs contract.RunStore) *Engine {
	t.Helper()
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetStateStore").Return(state).Maybe()
	mgr.On("GetRunStore").Return(runs).Maybe()
	return NewEngine(testConfig(t), mgr, WithClock(func() time.Time { return testNow }))
}

func ptr(v float64) *float64 { return &v }

func hoursAgo(h int) int64 { return testNow.Add(-time.Duration(h) * time.Hour).Unix() }

func ingestUsers(t *testing.T, e *Engine, ts int64, users map[string]schema.UserReading) {
	t.Helper()
	_, err := e.Ingest(context.Background(), schema.CollectorSample{Pool: "Hunters", Timestamp: ts, Users: users})
	require.NoError(t, err)
}

func readScalar(t *testing.T, store contract.StateStore, key string) schema.ScalarSeries {
	t.Helper()
	data, version, _, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, records.Version, version)
	rec, issues := records.DecodeScalar(key, data)
	require.Empty(t, issues)
	return rec
}

func TestRunDailyEmptyState(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)

	res, err := e.RunDaily(context.Background(), true)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Report.Sections)
	assert.NotEmpty(t, res.Report.Parts)
	assert.False(t, res.AchievementsChanged)
	assert.Nil(t, res.NewBest)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys, "an empty state must stay empty")
}

func TestRunDailyAwardsMilestonesOnce(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	ingestUsers(t, e, hoursAgo(2), map[string]schema.UserReading{"alice": {Ranges: 900, Speed: 40}})
	ingestUsers(t, e, hoursAgo(1), map[string]schema.UserReading{"alice": {Ranges: 1500, Speed: 60}})

	first, err := e.RunDaily(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, first.AchievementsChanged)
	achieved := first.Report.EventsOf(schema.MilestoneAchieved)
	require.Len(t, achieved, 2)
	assert.Equal(t, "Bronze", achieved[0].Milestone)
	assert.Equal(t, "Copper", achieved[1].Milestone)

	second, err := e.RunDaily(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, second.AchievementsChanged)
	assert.Empty(t, second.Report.EventsOf(schema.MilestoneAchieved))

	data, _, _, err := store.Get(records.AchievementsKey)
	require.NoError(t, err)
	state, issues := records.DecodeAchievements(records.AchievementsKey, data)
	assert.Empty(t, issues)
	assert.Equal(t, []int64{1, 1001}, state.Thresholds("alice"))
}

func TestRunDailyAppendsCompletionPoint(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()
	_, err := e.Ingest(ctx, schema.CollectorSample{Pool: "Hunters", Timestamp: hoursAgo(2), Completion: ptr(12.5)})
	require.NoError(t, err)
	key := records.CompletionKey("Hunters")

	_, err = e.RunDaily(ctx, false)
	require.NoError(t, err)
	assert.Len(t, readScalar(t, store, key).History, 1, "a preview must not persist")

	res, err := e.RunDaily(ctx, true)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, res.Report.Summary.Completion, 1e-9)

	rec := readScalar(t, store, key)
	require.Len(t, rec.History, 2)
	assert.Equal(t, schema.TimePoint{Timestamp: testNow.Unix(), Value: 12.5}, rec.History[1])
	assert.InDelta(t, 12.5, rec.Current, 1e-9)
}

func TestRunDailyRecordsNewBestSpeed(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	ingestUsers(t, e, hoursAgo(3), map[string]schema.UserReading{"alice": {Ranges: 10, Speed: 80}, "bob": {Ranges: 5, Speed: 20}})
	ingestUsers(t, e, hoursAgo(1), map[string]schema.UserReading{"alice": {Ranges: 20, Speed: 150}, "bob": {Ranges: 9, Speed: 30}})

	first, err := e.RunDaily(context.Background(), true)
	require.NoError(t, err)
	require.NotNil(t, first.NewBest)
	assert.Equal(t, "alice", first.NewBest.User)
	assert.Len(t, first.Report.EventsOf(schema.AllTimeBestEvent), 1)

	rec := readScalar(t, store, records.SpeedKey("Hunters"))
	assert.Equal(t, "alice", rec.BestSpeedHolder)
	assert.InDelta(t, 150.0, rec.BestSpeed, 1e-9)

	second, err := e.RunDaily(context.Background(), true)
	require.NoError(t, err)
	assert.Nil(t, second.NewBest, "matching the best is not a new best")
	assert.Empty(t, second.Report.EventsOf(schema.AllTimeBestEvent))
}

func TestPreviewNeverWrites(t *testing.T) {
	state := &iocache.MockStateStore{}
	state.On("Get", mock.Anything).Return(nil, 0, int64(0), contract.ErrStateNotFound)
	runs := &iocache.MockRunStore{}
	e := newTestEngine(t, state, runs)

	rep, err := e.Preview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testNow, rep.GeneratedAt)

	state.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	runs.AssertNotCalled(t, "BeginRun", mock.Anything, mock.Anything)
}

func TestRunDailyToleratesStoreFailures(t *testing.T) {
	state := &iocache.MockStateStore{}
	state.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("connection reset"))
	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", testNow, mock.Anything).Return("", errors.New("db down"))
	e := newTestEngine(t, state, runs)

	res, err := e.RunDaily(context.Background(), true)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Report.Sections)
	runs.AssertNotCalled(t, "RecordEvents", mock.Anything, mock.Anything, mock.Anything)
	runs.AssertExpectations(t)
}

func TestRunDailyTracksRun(t *testing.T) {
	store := newFileStore(t)
	runs := &iocache.MockRunStore{}
	e := newTestEngine(t, store, runs)
	ingestUsers(t, e, hoursAgo(2), map[string]schema.UserReading{"alice": {Ranges: 900, Speed: 40}})
	ingestUsers(t, e, hoursAgo(1), map[string]schema.UserReading{"alice": {Ranges: 1500, Speed: 60}})

	runs.On("BeginRun", testNow, mock.Anything).Return("run-1", nil).Once()
	runs.On("RecordEvents", "run-1", mock.Anything, testNow).Return(nil).Once()
	runs.On("EndRun", "run-1", testNow, mock.AnythingOfType("schema.RunSummary")).Return(errors.New("write failed")).Once()

	res, err := e.RunDaily(context.Background(), true)
	require.NoError(t, err)
	runs.AssertExpectations(t)

	summary := runs.Calls[2].Arguments.Get(2).(schema.RunSummary)
	assert.Equal(t, len(res.Report.Events), summary.EventsEmitted)
	assert.Equal(t, 1, summary.UsersSeen)
}

func TestRunDailyRespectsGuard(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	require.NoError(t, e.guard.Acquire())

	_, err := e.RunDaily(context.Background(), true)
	assert.ErrorIs(t, err, ErrRunInProgress)

	_, err = e.Ingest(context.Background(), schema.CollectorSample{Pool: "Hunters", Speed: ptr(1)})
	assert.ErrorIs(t, err, ErrRunInProgress)

	_, err = e.Preview(context.Background())
	assert.NoError(t, err, "previews do not take the guard")

	e.guard.Release()
	_, err = e.RunDaily(context.Background(), true)
	assert.NoError(t, err)
}

func TestRunDailyCanceledContext(t *testing.T) {
	e := newTestEngine(t, newFileStore(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.RunDaily(ctx, true)
	assert.ErrorIs(t, err, context.Canceled)

	// The guard must be free again
	require.NoError(t, e.guard.Acquire())
	e.guard.Release()
}

func TestUserStatsAndHeroes(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	ingestUsers(t, e, hoursAgo(5), map[string]schema.UserReading{"Alice_Miner": {Ranges: 100, Speed: 40}, "bob": {Ranges: 50, Speed: 10}})
	ingestUsers(t, e, hoursAgo(1), map[string]schema.UserReading{"Alice_Miner": {Ranges: 400, Speed: 60}, "bob": {Ranges: 60, Speed: 12}})
	ctx := context.Background()

	stats, err := e.UserStats(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, stats.Found)
	assert.Equal(t, "Alice_Miner", stats.User)

	missing, err := e.UserStats(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, missing.Found)

	heroes, err := e.Heroes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, heroes, 2)
	assert.Equal(t, schema.Hero{Rank: 1, User: "Alice_Miner", RangeDelta: 300, Speed: 60}, heroes[0])
	assert.Equal(t, "bob", heroes[1].User)

	top, err := e.Heroes(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestStateStatus(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	_, err := e.Ingest(context.Background(), schema.CollectorSample{Pool: "TTD", Speed: ptr(900)})
	require.NoError(t, err)

	status, err := e.StateStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalEntries)
}
