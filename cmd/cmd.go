// Package cmd defines the command-line interface for hunterstats.
package cmd

import (
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(heroesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the state subcommands to the parent state command
	stateCmd.AddCommand(stateClearCmd)
	stateCmd.AddCommand(stateStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("timezone", contract.DefaultTimezone, "IANA timezone for day boundaries")
	rootCmd.PersistentFlags().String("retention", contract.DefaultRetention, "How long samples are kept (e.g. '30 days' or P30D)")
	rootCmd.PersistentFlags().String("event-window", contract.DefaultEventWindow, "Trailing window for speed awards (e.g. '24 hours' or PT24H)")
	rootCmd.PersistentFlags().Float64("completion-target", contract.DefaultCompletionTarget, "Completion percentage the estimate projects to")
	rootCmd.PersistentFlags().Int("projection-points", contract.DefaultProjectionPoints, "Number of recent completion points used for the estimate")
	rootCmd.PersistentFlags().Float64("daily-goal", contract.DefaultDailyGoal, "Daily completion goal in percentage points")
	rootCmd.PersistentFlags().Int("top-users", contract.DefaultTopUsers, "Number of users in the ranking sections")
	rootCmd.PersistentFlags().Int("top-heroes", contract.DefaultTopHeroes, "Number of daily heroes")
	rootCmd.PersistentFlags().Int("message-limit", contract.DefaultMessageLimit, "Maximum characters per report message part")
	rootCmd.PersistentFlags().String("title", contract.DefaultTitle, "Report title")
	rootCmd.PersistentFlags().String("puzzle-name", contract.DefaultPuzzleName, "Name of the puzzle being searched")
	rootCmd.PersistentFlags().String("pools", contract.DefaultPools, "Comma-separated list of tracked pools")
	rootCmd.PersistentFlags().String("primary-pool", "", "Pool with per-user readings (defaults to the first pool)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("state-backend", string(schema.SQLiteBackend), "State backend: sqlite or mysql or postgresql or bolt or file or none")
	rootCmd.PersistentFlags().String("state-db-connect", "", "Connection string or path for the state backend (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Connection string for run history (must differ from state-db-connect)")
	rootCmd.PersistentFlags().String("lock-file", contract.GetLockFilePath(), "Lock file that keeps runs and ingestion exclusive")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().Bool("dry-run", false, "Assemble the report without persisting state or recording the run")
	reportCmd.Flags().String("as-of", "", "Compute the report for a past instant (RFC3339 or e.g. '6 hours ago'); requires --dry-run")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of ingestCmd to Viper
	ingestCmd.Flags().String("file", "", "Path to the sample JSON (defaults to stdin)")
	if err := viper.BindPFlags(ingestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest flags", err)
	}

	// Bind all flags of heroesCmd to Viper
	heroesCmd.Flags().Int("limit", 0, "Number of heroes to show (0 = top-heroes)")
	if err := viper.BindPFlags(heroesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding heroes flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the HTTP API listens on")
	serveCmd.Flags().String("cors-origins", "", "Comma-separated list of allowed CORS origins")
	serveCmd.Flags().Int("rate-limit", contract.DefaultRateLimit, "Requests allowed per client IP per rate window (0 = unlimited)")
	serveCmd.Flags().String("rate-window", contract.DefaultRateWindow, "Rate limit window (e.g. '1 minute' or PT1M)")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
