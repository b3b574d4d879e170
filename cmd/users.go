package cmd

import (
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// userCmd shows the statistics of one user.
var userCmd = &cobra.Command{
	Use:   "user <name>",
	Short: "Show daily statistics for one user.",
	Long: `Show per-day speed and ranges for one user over the retention window,
next to the pool-wide averages.

The name is matched case-insensitively by prefix, using the first ten
characters of the query.

Examples:
  # Exact or prefix match
  hunterstats user alice

  # Export the table
  hunterstats user alice --output csv --output-file alice.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		stats, err := newEngine().UserStats(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Cannot compute user statistics", err)
		}
		if err := outwriter.NewOutWriter(cfg).WriteUserStats(stats); err != nil {
			contract.LogFatal("Cannot write user statistics", err)
		}
	},
}

// heroesCmd shows the current daily heroes.
var heroesCmd = &cobra.Command{
	Use:   "heroes",
	Short: "Show the users with the most ranges since midnight.",
	Long: `Rank users by the ranges they completed since local midnight.

Ties break alphabetically. Use --limit to show more than the configured
number of heroes.

Examples:
  hunterstats heroes
  hunterstats heroes --limit 10 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		heroes, err := newEngine().Heroes(rootCtx, viper.GetInt("limit"))
		if err != nil {
			contract.LogFatal("Cannot compute daily heroes", err)
		}
		if err := outwriter.NewOutWriter(cfg).WriteHeroes(heroes); err != nil {
			contract.LogFatal("Cannot write daily heroes", err)
		}
	},
}
