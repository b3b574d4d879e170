package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/iocache"
	"github.com/huangsam/hunterstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendFromConfig reads and validates the runs backend settings.
func runsBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	// Handle empty backend as NoneBackend
	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidRunBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("runs-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run history operations.
func runsSetup() error {
	backend, connStr, err := runsBackendFromConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no state for runs commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize runs store: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads configuration for migrations without opening the store,
// so migrations can run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// runsCmd focused on run history management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of daily runs and emitted events",
	Long: `Manage the history of daily report runs.

When enabled, every persisted report run is recorded with:
- Run metadata (start and end time, pools, configuration)
- The number of users seen and events emitted
- Every award and milestone event of the run

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run history statistics
  export  - Export runs and events to Parquet
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Enable run tracking with SQLite
  HUNTERSTATS_RUNS_BACKEND=sqlite hunterstats report

  # Export for analysis in pandas/DuckDB
  hunterstats runs export --output-file history`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history",
	Long: `Delete all stored runs and their events.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  hunterstats runs export --output-file backup
  hunterstats runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearRuns(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about the run history.

Displays:
- Backend type and connection status
- Total number of runs and events
- Last and oldest run timestamps
- Table row counts

Examples:
  hunterstats runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and events to Parquet.

Writes two files next to the given prefix:
- <output-file>.runs.parquet - one row per run
- <output-file>.run_events.parquet - one row per emitted event

Requires: --output-file parameter

Examples:
  hunterstats runs export --output-file history
  duckdb -c "SELECT kind, count(*) FROM read_parquet('history.run_events.parquet') GROUP BY kind"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(os.Stdout, iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the runs store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the runs store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hunterstats runs migrate

  # Rollback to initial state
  hunterstats runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		msg, err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(msg)
	},
}
