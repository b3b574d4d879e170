package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the backend for state and run storage.
	DatabaseBackend string

	// Aggregation selects how samples in a resampling bucket are combined.
	Aggregation string

	// EventKind classifies the events carried by a report.
	EventKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	BoltBackend       DatabaseBackend = "bolt"
	FileBackend       DatabaseBackend = "file"
	NoneBackend       DatabaseBackend = "none"
)

// Bucket aggregations.
const (
	AggLast Aggregation = "last"
	AggAvg  Aggregation = "avg"
)

// Event kinds.
const (
	MilestoneAchieved    EventKind = "milestone_achieved"
	MilestoneApproaching EventKind = "milestone_approaching"
	DailyHeroEvent       EventKind = "daily_hero"
	SpeedRocketEvent     EventKind = "speed_rocket"
	ShootingStarEvent    EventKind = "shooting_star"
	AllTimeBestEvent     EventKind = "all_time_best"
)

// Default pool names as published by the collectors.
const (
	HuntersPool   = "Hunters"
	TTDPool       = "TTD"
	BTCPuzzlePool = "BTCPuzzle"
)

// DefaultPools is the pool list used when none is configured.
var DefaultPools = []string{HuntersPool, TTDPool, BTCPuzzlePool}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidStateBackends lists all valid state store backends.
var ValidStateBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	BoltBackend:       {},
	FileBackend:       {},
	NoneBackend:       {},
}

// ValidRunBackends lists all valid run store backends. Run history needs SQL.
var ValidRunBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
