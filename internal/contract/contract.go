// Package contract provides interfaces and shared utilities for hunterstats' internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/hunterstats/schema"
)

// ErrStateNotFound is returned by a StateStore when a key has no record.
var ErrStateNotFound = errors.New("state not found")

// StoreManager defines the interface for managing the state and run stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetStateStore() StateStore
	GetRunStore() RunStore
}

// StateStore is a whole-object key value store for persisted records.
// Values are always read and written whole; there is no partial update.
type StateStore interface {
	// Get returns the value, its record version, and its write timestamp.
	Get(key string) ([]byte, int, int64, error)

	// Set replaces the value stored at key.
	Set(key string, value []byte, version int, timestamp int64) error

	// Keys lists every stored key in ascending order.
	Keys() ([]string, error)

	GetStatus() (schema.StateStatus, error)
	Close() error
}

// RunStore tracks report runs and the events each run emitted.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (string, error)

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, summary schema.RunSummary) error

	// RecordEvents stores the events emitted by a run
	RecordEvents(runID string, events []schema.Event, recordedAt time.Time) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllEvents returns every recorded event, oldest first
	GetAllEvents() ([]schema.RunEventRecord, error)

	// Close closes the underlying connection
	Close() error
}

// StatsService is the read and ingest surface shared by the HTTP API and the MCP server.
type StatsService interface {
	// Preview assembles the daily report without persisting anything
	Preview(ctx context.Context) (schema.Report, error)

	// Heroes returns the current daily heroes; a non-positive limit uses the configured default
	Heroes(ctx context.Context, limit int) ([]schema.Hero, error)

	// UserStats computes per-user statistics for the user matching query
	UserStats(ctx context.Context, query string) (schema.UserStats, error)

	// IngestJSON decodes and applies one collector sample
	IngestJSON(ctx context.Context, data []byte) (schema.IngestResult, error)
}
