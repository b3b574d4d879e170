package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
)

// stateTable is the name of the table for state records.
const stateTable = "hunterstats_state"

// SQLStateStore keeps state records in a SQL table.
type SQLStateStore struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.StateStore = &SQLStateStore{} // Compile-time check

// NewSQLStateStore opens a SQL-backed state store and creates its table.
func NewSQLStateStore(tableName string, backend schema.DatabaseBackend, connStr string) (*SQLStateStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	db, err := openSQL(backend, connStr, contract.GetStateDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateStateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SQLStateStore{db: db, tableName: tableName, backend: backend, connStr: connStr}, nil
}

// getCreateStateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateStateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				state_key VARCHAR(255) PRIMARY KEY,
				state_value LONGBLOB NOT NULL,
				state_version INT NOT NULL,
				state_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				state_key TEXT PRIMARY KEY,
				state_value BYTEA NOT NULL,
				state_version INTEGER NOT NULL,
				state_timestamp BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				state_key TEXT PRIMARY KEY,
				state_value BLOB NOT NULL,
				state_version INTEGER NOT NULL,
				state_timestamp INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// getUpsertQuery returns the UPSERT query for the backend.
func getUpsertQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (state_key, state_value, state_version, state_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE state_value = new.state_value, state_version = new.state_version, state_timestamp = new.state_timestamp`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (state_key, state_value, state_version, state_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (state_key) DO UPDATE SET state_value = EXCLUDED.state_value, state_version = EXCLUDED.state_version, state_timestamp = EXCLUDED.state_timestamp`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (state_key, state_value, state_version, state_timestamp) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// Get retrieves a record by key.
func (s *SQLStateStore) Get(key string) ([]byte, int, int64, error) {
	var value []byte
	var version int
	var ts int64

	query := rebind(s.backend, fmt.Sprintf(`SELECT state_value, state_version, state_timestamp FROM %s WHERE state_key = ?`, quoteTableName(s.tableName, s.backend)))
	if err := s.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, 0, contract.ErrStateNotFound
		}
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a record.
func (s *SQLStateStore) Set(key string, value []byte, version int, timestamp int64) error {
	_, err := s.db.Exec(getUpsertQuery(s.tableName, s.backend), key, value, version, timestamp)
	return err
}

// Keys lists every stored key in ascending order.
func (s *SQLStateStore) Keys() ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT state_key FROM %s ORDER BY state_key`, quoteTableName(s.tableName, s.backend)))
	if err != nil {
		return nil, fmt.Errorf("failed to list state keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan state key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the underlying DB connection.
func (s *SQLStateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus returns status information about the state store.
func (s *SQLStateStore) GetStatus() (schema.StateStatus, error) {
	status := schema.StateStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(s.tableName, s.backend)
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	if err := s.db.QueryRow(fmt.Sprintf("SELECT MAX(state_timestamp), MIN(state_timestamp) FROM %s", quotedTableName)).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	// Fallback rough estimate when the backend cannot report a size
	status.TableSizeBytes = int64(status.TotalEntries) * 1000
	switch s.backend {
	case schema.SQLiteBackend:
		row := s.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		_ = row.Scan(&status.TableSizeBytes)
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		row := s.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, s.tableName)
		_ = row.Scan(&status.TableSizeBytes)
	case schema.PostgreSQLBackend:
		row := s.db.QueryRow("SELECT pg_total_relation_size($1)", s.tableName)
		_ = row.Scan(&status.TableSizeBytes)
	}

	return status, nil
}
