package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRunStore(t *testing.T) (*RunStoreImpl, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestRunStoreNoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.BeginRun(time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.NoError(t, store.EndRun(id, time.Now(), schema.RunSummary{}))
	assert.NoError(t, store.RecordEvents(id, []schema.Event{{Kind: schema.SpeedRocketEvent}}, time.Now()))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Nil(t, runs)
	assert.NoError(t, store.Close())
}

func TestRunStoreSQLite(t *testing.T) {
	store, _ := newSQLiteRunStore(t)
	start := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

	runID, err := store.BeginRun(start, map[string]any{"pool": "Hunters", "top_users": 10})
	require.NoError(t, err)
	assert.Len(t, runID, 36, "run IDs are UUIDs")

	events := []schema.Event{
		{Kind: schema.MilestoneAchieved, User: "alice", Milestone: "Bronze", Threshold: 1001},
		{Kind: schema.DailyHeroEvent, User: "bob", Rank: 1, Ranges: 250},
		{Kind: schema.SpeedRocketEvent, User: "carol", Speed: 1234.5},
	}
	require.NoError(t, store.RecordEvents(runID, events, start.Add(time.Second)))
	require.NoError(t, store.EndRun(runID, start.Add(2500*time.Millisecond), schema.RunSummary{EventsEmitted: 3, UsersSeen: 7}))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int64(2500), *run.RunDurationMs)
	assert.Equal(t, int32(3), run.EventsEmitted)
	assert.Equal(t, int32(7), run.UsersSeen)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"pool":"Hunters","top_users":10}`, *run.ConfigParams)

	stored, err := store.GetAllEvents()
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "milestone_achieved", stored[0].Kind)
	assert.Equal(t, 1001.0, stored[0].Value)
	assert.Equal(t, 250.0, stored[1].Value)
	assert.Equal(t, 1234.5, stored[2].Value)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 3, status.TotalEvents)
	assert.Equal(t, int64(1), status.TableSizes[runsTable])
}

func TestRunStoreMultipleRuns(t *testing.T) {
	store, _ := newSQLiteRunStore(t)
	base := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		id, err := store.BeginRun(base.Add(time.Duration(i)*24*time.Hour), nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, ids[2], status.LastRunID)
	assert.True(t, base.Equal(status.OldestRunTime))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[0], runs[0].RunID, "oldest first")
	assert.Nil(t, runs[0].EndTime, "unfinished runs have no end time")
}

func TestEndRunUnknownID(t *testing.T) {
	store, _ := newSQLiteRunStore(t)
	assert.Error(t, store.EndRun("missing", time.Now(), schema.RunSummary{}))
}

func TestMigrateRunsSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	msg, err := MigrateRuns(schema.SQLiteBackend, path, -1)
	require.NoError(t, err)
	assert.Contains(t, msg, "to version 2")

	msg, err = MigrateRuns(schema.SQLiteBackend, path, -1)
	require.NoError(t, err)
	assert.Contains(t, msg, "No migration needed")

	msg, err = MigrateRuns(schema.SQLiteBackend, path, 1)
	require.NoError(t, err)
	assert.Contains(t, msg, "from version 2 to version 1")

	msg, err = MigrateRuns(schema.SQLiteBackend, path, 0)
	require.NoError(t, err)
	assert.Contains(t, msg, "to version 0")
}

func TestMigrateRunsNoneBackend(t *testing.T) {
	_, err := MigrateRuns(schema.NoneBackend, "", -1)
	assert.Error(t, err)
}

func TestClearRunsAndState(t *testing.T) {
	dir := t.TempDir()

	runsPath := filepath.Join(dir, "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, runsPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, ClearRuns(schema.SQLiteBackend, runsPath))
	_, err = os.Stat(runsPath)
	assert.True(t, os.IsNotExist(err))

	stateDir := filepath.Join(dir, "state")
	fileStore, err := NewFileStateStore(stateDir)
	require.NoError(t, err)
	require.NoError(t, fileStore.Set("k", []byte(`{}`), 1, 1))
	require.NoError(t, ClearState(schema.FileBackend, stateDir))
	_, err = os.Stat(stateDir)
	assert.True(t, os.IsNotExist(err))

	// Clearing something that does not exist is fine
	assert.NoError(t, ClearState(schema.BoltBackend, filepath.Join(dir, "missing.bolt")))
	assert.NoError(t, ClearState(schema.NoneBackend, ""))
	assert.NoError(t, ClearRuns(schema.NoneBackend, ""))
	assert.Error(t, ClearState("redis", ""))
	assert.Error(t, ClearRuns(schema.BoltBackend, ""))
}

func TestExecuteRunsExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		assert.Error(t, ExecuteRunsExport(&bytes.Buffer{}, &MockRunStore{}, ""))
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true}, nil)
		assert.Error(t, ExecuteRunsExport(&bytes.Buffer{}, store, "out"))
		store.AssertExpectations(t)
	})

	t.Run("writes both files", func(t *testing.T) {
		store, _ := newSQLiteRunStore(t)
		start := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
		id, err := store.BeginRun(start, nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordEvents(id, []schema.Event{{Kind: schema.ShootingStarEvent, User: "dave", Speed: 150}}, start))

		out := filepath.Join(t.TempDir(), "export")
		var buf bytes.Buffer
		require.NoError(t, ExecuteRunsExport(&buf, store, out))
		assert.Contains(t, buf.String(), "Exported 1 runs")
		assert.Contains(t, buf.String(), "Exported 1 events")

		for _, suffix := range []string{".runs.parquet", ".run_events.parquet"} {
			info, err := os.Stat(out + suffix)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		}
	})

	t.Run("store errors propagate", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return(nil, assert.AnError)
		err := ExecuteRunsExport(&bytes.Buffer{}, store, filepath.Join(t.TempDir(), "x"))
		assert.ErrorIs(t, err, assert.AnError)
		store.AssertNotCalled(t, "GetAllEvents")
	})
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintStateStatus(&buf, schema.StateStatus{Backend: "bolt", Connected: true, TotalEntries: 2,
		LastEntryTime: time.Unix(1700000000, 0), OldestEntryTime: time.Unix(1690000000, 0), TableSizeBytes: 4096})
	assert.Contains(t, buf.String(), "State Backend: bolt")
	assert.Contains(t, buf.String(), "Total Entries: 2")
	assert.Contains(t, buf.String(), "Size: 4096 bytes")

	buf.Reset()
	PrintRunStatus(&buf, schema.RunStatus{Backend: "none"})
	assert.Contains(t, buf.String(), "Connected: false")
	assert.NotContains(t, buf.String(), "Total Runs")

	buf.Reset()
	PrintRunStatus(&buf, schema.RunStatus{Backend: "sqlite", Connected: true, TotalRuns: 1, LastRunID: "abc",
		TableSizes: map[string]int64{runsTable: 1, runEventsTable: 4}})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: abc")
	assert.Less(t, bytes.Index([]byte(out), []byte(runEventsTable)), bytes.Index([]byte(out), []byte(runsTable+":")), "tables are sorted")
}

func TestInitStores(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitStores(schema.BoltBackend, filepath.Join(dir, "state.bolt"), schema.SQLiteBackend, filepath.Join(dir, "runs.db")))

	// Later calls are no-ops
	require.NoError(t, InitStores("redis", "", "", ""))

	state := Manager.GetStateStore()
	require.NotNil(t, state)
	require.NoError(t, state.Set("k", []byte(`{}`), 1, 1))

	runs := Manager.GetRunStore()
	require.NotNil(t, runs)
	status, err := runs.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)

	CloseStores()
	CloseStores() // Safe to call twice
}
