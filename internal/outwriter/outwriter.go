// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct {
	cfg *contract.Config
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter(cfg *contract.Config) *OutWriter {
	return &OutWriter{cfg: cfg}
}

// WriteReport prints a daily report using the configured output format.
func (ow *OutWriter) WriteReport(rep schema.Report) error {
	return PrintReport(rep, ow.cfg)
}

// WriteUserStats prints per-user statistics using the configured output format.
func (ow *OutWriter) WriteUserStats(stats schema.UserStats) error {
	return PrintUserStats(stats, ow.cfg)
}

// WriteHeroes prints the daily heroes using the configured output format.
func (ow *OutWriter) WriteHeroes(heroes []schema.Hero) error {
	return PrintHeroes(heroes, ow.cfg)
}

// WriteIngestResult prints the outcome of an ingested sample using the configured output format.
func (ow *OutWriter) WriteIngestResult(result schema.IngestResult) error {
	return PrintIngestResult(result, ow.cfg)
}
