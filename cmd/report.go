package cmd

import (
	"errors"
	"time"

	"github.com/huangsam/hunterstats/core"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/iocache"
	"github.com/huangsam/hunterstats/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// reportCmd runs the daily cycle.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the daily cycle and print the report.",
	Long: `Assemble today's report from the stored samples.

The report covers:
- Completion progress and the estimated completion date
- Pool speed today against the last 30 days
- Daily heroes, the speed rocket and shooting stars
- Range milestones reached or approaching

A normal run persists the completion history, awarded milestones and the
all-time best speed, and records the run in the runs store when one is
configured. Use --dry-run to preview without writing anything.

Examples:
  # Run the daily cycle
  hunterstats report

  # Preview today's report as JSON
  hunterstats report --dry-run --output json

  # Rebuild the report as it looked six hours ago
  hunterstats report --dry-run --as-of "6 hours ago"

  # Export the chart data for a dashboard
  hunterstats report --dry-run --output parquet --output-file charts.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dryRun := viper.GetBool("dry-run")
		asOf := viper.GetString("as-of")
		if asOf != "" && !dryRun {
			contract.LogFatal("Invalid flags", errors.New("--as-of requires --dry-run"))
		}
		at, err := contract.ParseAsOf(asOf, time.Now())
		if err != nil {
			contract.LogFatal("Invalid --as-of value", err)
		}

		engine := core.NewEngine(cfg, iocache.Manager, core.WithClock(func() time.Time { return at }))
		res, err := engine.RunDaily(rootCtx, !dryRun)
		if err != nil {
			contract.LogFatal("Cannot run daily report", err)
		}
		if err := outwriter.NewOutWriter(cfg).WriteReport(res.Report); err != nil {
			contract.LogFatal("Cannot write report", err)
		}
	},
}
