package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/parquet"
)

// ExecuteRunsExport writes the run history to <outputFile>.runs.parquet and
// <outputFile>.run_events.parquet, reporting progress on w.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total events: %d\n", status.TotalEvents)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	events, err := store.GetAllEvents()
	if err != nil {
		return fmt.Errorf("failed to retrieve run events: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	eventsFile := outputFile + ".run_events.parquet"
	parquetEvents := parquet.ConvertRunEventRecords(events)
	if err := parquet.WriteRunEventsParquet(parquetEvents, eventsFile); err != nil {
		return fmt.Errorf("failed to write run events: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d events to: %s\n", len(parquetEvents), eventsFile)

	return nil
}
