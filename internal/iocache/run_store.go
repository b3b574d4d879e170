package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
)

// Table names for run tracking.
const (
	runsTable      = "hunterstats_runs"
	runEventsTable = "hunterstats_run_events"
)

// RunStoreImpl implements the RunStore interface on a SQL database.
// Times are stored as unix milliseconds so every backend shares one schema.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (*RunStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openSQL(backend, connStr, contract.GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables applies every embedded up migration. Each file holds one idempotent statement.
func createRunTables(db *sql.DB) error {
	for _, name := range []string{"000001_create_runs.up.sql", "000002_create_run_events.up.sql"} {
		query, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(query)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	if rs.disabled() {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runID := uuid.NewString()
	query := rebind(rs.backend, fmt.Sprintf(`INSERT INTO %s (run_id, start_time, config_params) VALUES (?, ?, ?)`, quoteTableName(runsTable, rs.backend)))
	if _, err := rs.db.Exec(query, runID, startTime.UnixMilli(), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID string, endTime time.Time, summary schema.RunSummary) error {
	if rs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	var startMs int64
	query := rebind(rs.backend, fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName))
	if err := rs.db.QueryRow(query, runID).Scan(&startMs); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}

	durationMs := endTime.UnixMilli() - startMs
	update := rebind(rs.backend, fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, events_emitted = ?, users_seen = ? WHERE run_id = ?`, quotedTableName))
	if _, err := rs.db.Exec(update, endTime.UnixMilli(), durationMs, summary.EventsEmitted, summary.UsersSeen, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordEvents stores the events emitted by a run in one transaction.
func (rs *RunStoreImpl) RecordEvents(runID string, events []schema.Event, recordedAt time.Time) error {
	if rs.disabled() || len(events) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rebind(rs.backend, fmt.Sprintf(`INSERT INTO %s (run_id, seq, kind, user_name, milestone, event_value, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		quoteTableName(runEventsTable, rs.backend)))
	for i, e := range events {
		if _, err := tx.Exec(query, runID, i, string(e.Kind), e.User, e.Milestone, EventValue(e), recordedAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// EventValue is the single number stored for an event: the threshold for milestones,
// the range count for heroes and approaching users, and the speed otherwise.
func EventValue(e schema.Event) float64 {
	switch e.Kind {
	case schema.MilestoneAchieved:
		return float64(e.Threshold)
	case schema.MilestoneApproaching, schema.DailyHeroEvent:
		return float64(e.Ranges)
	default:
		return e.Speed
	}
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastMs, oldestMs int64
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &lastMs); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT MIN(start_time) FROM %s", quotedRuns)).Scan(&oldestMs); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime = time.UnixMilli(lastMs)
		status.OldestRunTime = time.UnixMilli(oldestMs)
	}

	for _, table := range []string{runsTable, runEventsTable} {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalEvents = int(status.TableSizes[runEventsTable])

	return status, nil
}

// GetAllRuns retrieves every run, oldest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, events_emitted, users_seen, config_params FROM %s ORDER BY start_time, run_id",
		quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var startMs int64
		var endMs sql.NullInt64
		if err := rows.Scan(&record.RunID, &startMs, &endMs, &record.RunDurationMs, &record.EventsEmitted, &record.UsersSeen, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.StartTime = time.UnixMilli(startMs)
		if endMs.Valid {
			end := time.UnixMilli(endMs.Int64)
			record.EndTime = &end
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllEvents retrieves every recorded event, oldest first.
func (rs *RunStoreImpl) GetAllEvents() ([]schema.RunEventRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, kind, user_name, milestone, event_value, recorded_at FROM %s ORDER BY recorded_at, run_id, seq",
		quoteTableName(runEventsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunEventRecord
	for rows.Next() {
		var record schema.RunEventRecord
		var recordedMs int64
		if err := rows.Scan(&record.RunID, &record.Kind, &record.UserName, &record.Milestone, &record.Value, &recordedMs); err != nil {
			return nil, fmt.Errorf("failed to scan run event: %w", err)
		}
		record.RecordedAt = time.UnixMilli(recordedMs)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run events: %w", err)
	}
	return results, nil
}
