package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/hunterstats/core"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/iocache"
	"github.com/huangsam/hunterstats/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "hunterstats",
	Short: "Daily statistics and awards for a distributed key-search pool.",
	Long: `Hunterstats turns collector samples from key-search pools into a daily report
with completion progress, speed trends, daily heroes and milestone awards.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env is fine; connection strings usually come from the real environment.
	_ = godotenv.Load(".env")

	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("HUNTERSTATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("timezone", contract.DefaultTimezone)
	viper.SetDefault("retention", contract.DefaultRetention)
	viper.SetDefault("event-window", contract.DefaultEventWindow)
	viper.SetDefault("completion-target", contract.DefaultCompletionTarget)
	viper.SetDefault("projection-points", contract.DefaultProjectionPoints)
	viper.SetDefault("daily-goal", contract.DefaultDailyGoal)
	viper.SetDefault("top-users", contract.DefaultTopUsers)
	viper.SetDefault("top-heroes", contract.DefaultTopHeroes)
	viper.SetDefault("message-limit", contract.DefaultMessageLimit)
	viper.SetDefault("title", contract.DefaultTitle)
	viper.SetDefault("puzzle-name", contract.DefaultPuzzleName)
	viper.SetDefault("pools", contract.DefaultPools)
	viper.SetDefault("primary-pool", "")
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", "info")
	viper.SetDefault("state-backend", schema.SQLiteBackend)
	viper.SetDefault("state-db-connect", "")
	viper.SetDefault("runs-backend", "")
	viper.SetDefault("runs-db-connect", "")
	viper.SetDefault("lock-file", contract.GetLockFilePath())
	viper.SetDefault("listen", contract.DefaultListenAddr)
	viper.SetDefault("rate-limit", contract.DefaultRateLimit)
	viper.SetDefault("rate-window", contract.DefaultRateWindow)
}

// setConfigFile points viper at --config or the default .hunterstats.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".hunterstats") // Name of config file (without extension)
	viper.SetConfigType("yaml")         // We'll use YAML format
	viper.AddConfigPath(".")            // Look in the current directory
	viper.AddConfigPath("$HOME")        // Look in the home directory
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	setConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the stores.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	applyOutputSettings()

	// 4. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.StateBackend, cfg.StateDBConnect, cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// applyOutputSettings installs the logger and the color preference.
func applyOutputSettings() {
	color.NoColor = !cfg.UseColors
	setupLogger(os.Stderr, cfg.LogLevel, cfg.UseColors)
}

// newEngine builds the engine over the global stores.
func newEngine() *core.Engine {
	return core.NewEngine(cfg, iocache.Manager)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
