package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/hunterstats/internal/api"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/spf13/cobra"
)

// serveCmd exposes the report and ingestion over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report and sample ingestion over HTTP",
	Long: `Start an HTTP API for dashboards, bots and collectors.

Routes:
  GET  /health                      - Liveness check
  GET  /api/v1/report               - Today's report preview as JSON
  GET  /api/v1/report/text          - The report split into message parts
  GET  /api/v1/heroes?limit=N       - Current daily heroes
  GET  /api/v1/users/{name}/stats   - Per-user statistics
  POST /api/v1/samples              - Ingest a collector sample

Report routes never write state. Run 'hunterstats report' on a schedule to
persist the daily cycle.

Examples:
  hunterstats serve --listen :9090
  hunterstats serve --cors-origins https://dash.example.com --rate-limit 120`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := api.Serve(ctx, newEngine(), cfg); err != nil {
			contract.LogFatal("HTTP server failed", err)
		}
	},
}
