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

// stateSetup loads minimal configuration needed for state operations.
// This is used by commands that need state access without full shared setup.
func stateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get state-related config values
	backend := schema.DatabaseBackend(viper.GetString("state-backend"))
	connStr := viper.GetString("state-db-connect")
	if _, ok := schema.ValidStateBackends[backend]; !ok {
		return fmt.Errorf("invalid state backend '%s'. must be sqlite, mysql, postgresql, bolt, file, none", backend)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize state with the loaded config (no run tracking for state commands)
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize state store: %w", err)
	}

	cfg.StateBackend = backend
	cfg.StateDBConnect = connStr

	return nil
}

// stateSetupWrapper wraps stateSetup to provide PreRunE for state commands.
func stateSetupWrapper(_ *cobra.Command, _ []string) error {
	return stateSetup()
}

// stateCmd focused on state store management.
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage the stored sample history",
	Long: `Manage the store that keeps pool histories, user ranges and awarded milestones.

Supported backends: SQLite (default), MySQL, PostgreSQL, bolt, file, or None (in-memory)

Subcommands:
  status - Show record counts and connection info
  clear  - Remove all stored records

Examples:
  # Check state status
  hunterstats state status

  # Use a bolt file instead of SQLite
  HUNTERSTATS_STATE_BACKEND=bolt hunterstats state status`,
}

// stateClearCmd clears the state store.
var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored records",
	Long: `Delete every stored record from the configured backend.

This resets completion history, speed history, user ranges, the all-time best
speed and awarded milestones. Milestones will be awarded again.

For SQLite and bolt: Deletes the database file
For file: Removes the state directory
For MySQL/PostgreSQL: Drops the state table

Examples:
  hunterstats state clear
  HUNTERSTATS_STATE_BACKEND=postgresql HUNTERSTATS_STATE_DB_CONNECT="..." hunterstats state clear`,
	PreRunE: stateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// The open handle must be released before the file can be removed.
		iocache.CloseStores()
		if err := iocache.ClearState(cfg.StateBackend, cfg.StateDBConnect); err != nil {
			contract.LogFatal("Failed to clear state", err)
		}
		fmt.Println("State cleared successfully.")
	},
}

// stateStatusCmd shows state status.
var stateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display state statistics and connection details",
	Long: `Show detailed information about the state store.

Displays:
- Backend type and connection status
- Total number of stored records
- Last and oldest write timestamps
- Storage size

Examples:
  hunterstats state status`,
	PreRunE: stateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetStateStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get state status", err)
		}
		iocache.PrintStateStatus(os.Stdout, status)
	},
}
