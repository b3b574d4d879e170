package contract

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/hunterstats/schema"
)

// Default values for configuration.
const (
	DefaultTimezone         = "Europe/Stockholm"
	DefaultRetention        = "30 days"
	DefaultEventWindow      = "24 hours"
	DefaultCompletionTarget = 50.0
	DefaultProjectionPoints = 5
	DefaultDailyGoal        = 0.07
	DefaultTopUsers         = 10
	DefaultTopHeroes        = 3
	DefaultMessageLimit     = 4000
	DefaultTitle            = "BTC Hunters Stats"
	DefaultPuzzleName       = "Puzzle 67"
	DefaultPrecision        = 2
	DefaultListenAddr       = ":8080"
	DefaultRateLimit        = 60
	DefaultRateWindow       = "1m"
	MaxTopUsers             = 100
)

// DefaultPools is the default comma-separated pool list.
var DefaultPools = strings.Join(schema.DefaultPools, ",")

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	Timezone      string
	Location      *time.Location
	Retention     time.Duration
	RetentionDays int
	EventWindow   time.Duration

	CompletionTarget float64
	ProjectionPoints int
	DailyGoal        float64
	TopUsers         int
	TopHeroes        int
	MessageLimit     int
	Title            string
	PuzzleName       string

	Pools       []string
	PrimaryPool string

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   slog.Level

	StateBackend   schema.DatabaseBackend
	StateDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	LockFile string

	ListenAddr  string
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Report tuning ---
	Timezone         string  `mapstructure:"timezone"`
	Retention        string  `mapstructure:"retention"`
	EventWindow      string  `mapstructure:"event-window"`
	CompletionTarget float64 `mapstructure:"completion-target"`
	ProjectionPoints int     `mapstructure:"projection-points"`
	DailyGoal        float64 `mapstructure:"daily-goal"`
	TopUsers         int     `mapstructure:"top-users"`
	TopHeroes        int     `mapstructure:"top-heroes"`
	MessageLimit     int     `mapstructure:"message-limit"`
	Title            string  `mapstructure:"title"`
	PuzzleName       string  `mapstructure:"puzzle-name"`
	Pools            string  `mapstructure:"pools"`
	PrimaryPool      string  `mapstructure:"primary-pool"`

	// --- Output ---
	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	LogLevel   string `mapstructure:"log-level"`

	// --- Storage ---
	StateBackend   string `mapstructure:"state-backend"`
	StateDBConnect string `mapstructure:"state-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`
	LockFile       string `mapstructure:"lock-file"`

	// --- Fields from serveCmd.Flags() ---
	Listen      string `mapstructure:"listen"`
	CORSOrigins string `mapstructure:"cors-origins"`
	RateLimit   int    `mapstructure:"rate-limit"`
	RateWindow  string `mapstructure:"rate-window"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processReportWindows(cfg, input); err != nil {
		return err
	}
	if err := processPools(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return processServer(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.BoltBackend, schema.FileBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", s)
	}
	return level, nil
}

// validateSimpleInputs processes and validates the output and report tuning fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Title = strings.TrimSpace(input.Title)
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	cfg.PuzzleName = strings.TrimSpace(input.PuzzleName)
	if cfg.PuzzleName == "" {
		cfg.PuzzleName = DefaultPuzzleName
	}
	cfg.LockFile = strings.TrimSpace(input.LockFile)
	if cfg.LockFile == "" {
		cfg.LockFile = GetLockFilePath()
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	if input.TopUsers <= 0 || input.TopUsers > MaxTopUsers {
		return fmt.Errorf("top-users must be greater than 0 and cannot exceed %d (received %d)", MaxTopUsers, input.TopUsers)
	}
	cfg.TopUsers = input.TopUsers

	if input.TopHeroes <= 0 || input.TopHeroes > MaxTopUsers {
		return fmt.Errorf("top-heroes must be greater than 0 and cannot exceed %d (received %d)", MaxTopUsers, input.TopHeroes)
	}
	cfg.TopHeroes = input.TopHeroes

	if input.ProjectionPoints < 2 {
		return fmt.Errorf("projection-points must be at least 2 (received %d)", input.ProjectionPoints)
	}
	cfg.ProjectionPoints = input.ProjectionPoints

	if input.CompletionTarget <= 0 || input.CompletionTarget > 100 {
		return fmt.Errorf("completion-target must be in (0, 100] (received %g)", input.CompletionTarget)
	}
	cfg.CompletionTarget = input.CompletionTarget

	if input.DailyGoal <= 0 {
		return fmt.Errorf("daily-goal must be positive (received %g)", input.DailyGoal)
	}
	cfg.DailyGoal = input.DailyGoal

	if input.MessageLimit < 100 {
		return fmt.Errorf("message-limit must be at least 100 (received %d)", input.MessageLimit)
	}
	cfg.MessageLimit = input.MessageLimit

	if input.Precision < 0 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 0 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processReportWindows handles the timezone, retention and event window.
func processReportWindows(cfg *Config, input *ConfigRawInput) error {
	cfg.Timezone = strings.TrimSpace(input.Timezone)
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	retention, err := ParseLookbackDuration(input.Retention)
	if err != nil {
		return fmt.Errorf("invalid retention: %w", err)
	}
	if retention < 24*time.Hour {
		return fmt.Errorf("retention must be at least one day (received %s)", retention)
	}
	cfg.Retention = retention
	cfg.RetentionDays = int(retention / (24 * time.Hour))

	window, err := ParseLookbackDuration(input.EventWindow)
	if err != nil {
		return fmt.Errorf("invalid event-window: %w", err)
	}
	cfg.EventWindow = window

	return nil
}

// processPools splits the pool list and resolves the primary pool.
func processPools(cfg *Config, input *ConfigRawInput) error {
	cfg.Pools = nil
	for p := range strings.SplitSeq(input.Pools, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" && !slices.Contains(cfg.Pools, trimmed) {
			cfg.Pools = append(cfg.Pools, trimmed)
		}
	}
	if len(cfg.Pools) == 0 {
		return fmt.Errorf("at least one pool must be configured")
	}

	cfg.PrimaryPool = strings.TrimSpace(input.PrimaryPool)
	if cfg.PrimaryPool == "" {
		cfg.PrimaryPool = cfg.Pools[0]
	}
	if !slices.Contains(cfg.Pools, cfg.PrimaryPool) {
		return fmt.Errorf("primary pool '%s' is not in the pool list %v", cfg.PrimaryPool, cfg.Pools)
	}
	return nil
}

// validateBackendConfigs validates state and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- State Backend Validation ---
	cfg.StateBackend = schema.DatabaseBackend(strings.ToLower(input.StateBackend))
	if _, ok := schema.ValidStateBackends[cfg.StateBackend]; !ok {
		return fmt.Errorf("invalid state backend '%s'. must be sqlite, mysql, postgresql, bolt, file, none", input.StateBackend)
	}
	cfg.StateDBConnect = input.StateDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StateBackend, cfg.StateDBConnect); err != nil {
		return err
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidRunBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// Validate that state and runs use different SQLite files
	if cfg.StateBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		statePath := cfg.StateDBConnect
		if statePath == "" {
			statePath = GetStateDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if statePath == runsPath {
			return fmt.Errorf("state and runs storage must use different SQLite database files. Both resolve to %q", statePath)
		}
	}

	return nil
}

// processServer handles the HTTP API settings.
func processServer(cfg *Config, input *ConfigRawInput) error {
	cfg.ListenAddr = strings.TrimSpace(input.Listen)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	cfg.CORSOrigins = nil
	for o := range strings.SplitSeq(input.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, trimmed)
		}
	}

	if input.RateLimit < 0 {
		return fmt.Errorf("rate-limit cannot be negative (received %d)", input.RateLimit)
	}
	cfg.RateLimit = input.RateLimit

	cfg.RateWindow = time.Minute
	if input.RateWindow != "" {
		w, err := ParseLookbackDuration(input.RateWindow)
		if err != nil {
			return fmt.Errorf("invalid rate-window: %w", err)
		}
		cfg.RateWindow = w
	}
	return nil
}
