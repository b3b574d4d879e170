package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
)

// PrintIngestResult outputs the outcome of an ingested sample. Only text and JSON apply.
func PrintIngestResult(result schema.IngestResult, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON ingest result")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeIngestText(w, result)
	}, "Wrote ingest result")
}

func writeIngestText(w io.Writer, result schema.IngestResult) error {
	if _, err := fmt.Fprintf(w, "📥 %s: %d accepted, %d rejected\n", result.Pool, result.Accepted, result.Rejected); err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		if _, err := fmt.Fprintf(w, "  ⚠️  %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}
