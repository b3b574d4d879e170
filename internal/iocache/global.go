package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the state and run stores.
// An empty runsBackend disables run tracking.
func InitStores(stateBackend schema.DatabaseBackend, stateConnStr string, runsBackend schema.DatabaseBackend, runsConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		stateStore, err := NewStateStore(stateBackend, stateConnStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize state store: %w", err)
			return
		}

		if runsBackend == "" {
			runsBackend = schema.NoneBackend
		}
		runStore, err := NewRunStore(runsBackend, runsConnStr)
		if err != nil {
			_ = stateStore.Close()
			initErr = fmt.Errorf("failed to initialize run store: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.state = stateStore
		Manager.runs = runStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.state != nil {
			_ = Manager.state.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearState removes all state records for the backend.
// SQLite and bolt files are deleted, the file backend directory is removed,
// and MySQL/PostgreSQL tables are dropped.
func ClearState(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removePath(connStr, contract.GetStateDBFilePath(), false)
	case schema.BoltBackend:
		return removePath(connStr, contract.GetBoltFilePath(), false)
	case schema.FileBackend:
		return removePath(connStr, contract.GetStateDirPath(), true)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, stateTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported state backend for clearing: %s", backend)
	}
}

// ClearRuns removes the run history for the backend.
func ClearRuns(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removePath(connStr, contract.GetRunsDBFilePath(), false)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, runEventsTable, runsTable, "schema_migrations")
	case schema.NoneBackend, "":
		return nil
	default:
		return fmt.Errorf("unsupported runs backend for clearing: %s", backend)
	}
}

// removePath deletes a file or directory, ignoring one that does not exist.
func removePath(path, defaultPath string, dir bool) error {
	if path == "" {
		path = defaultPath
	}
	var err error
	if dir {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	driver, err := driverName(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
