package cmd

import (
	"io"
	"os"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ingestCmd stores one collector sample.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a collector sample into the state store.",
	Long: `Read one collector sample as JSON and append it to the stored history.

A sample carries a pool name, an optional unix timestamp and any of the
completion, speed and total_ranges readings. Samples for the primary pool may
also carry per-user readings as {"ranges": n, "speed": s} or [n, s].

Invalid readings are rejected individually and reported as warnings.
Samples older than the retention window are pruned on write.

Examples:
  # Ingest from a file
  hunterstats ingest --file sample.json

  # Pipe a sample from the collector
  collector --once | hunterstats ingest`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		data, err := readSample(cmd.InOrStdin(), viper.GetString("file"))
		if err != nil {
			contract.LogFatal("Cannot read sample", err)
		}
		result, err := newEngine().IngestJSON(rootCtx, data)
		if err != nil {
			contract.LogFatal("Cannot ingest sample", err)
		}
		if err := outwriter.NewOutWriter(cfg).WriteIngestResult(result); err != nil {
			contract.LogFatal("Cannot write ingest result", err)
		}
	},
}

// readSample reads the sample from path, or from stdin when path is empty or "-".
func readSample(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
