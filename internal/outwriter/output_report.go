package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/parquet"
	"github.com/huangsam/hunterstats/schema"
)

// PrintReport outputs the daily report, dispatching based on the output format configured.
// Text prints the sections, JSON the whole report, and CSV and Parquet the chart series.
func PrintReport(rep schema.Report, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rep)
		}, "Wrote JSON report"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVCharts(w, rep.Charts, fmtFloat)
		}, "Wrote CSV chart series"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteChartPointsParquet(parquet.FlattenCharts(rep.Charts), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, rep, cfg.UseColors)
		}, "Wrote report"); err != nil {
			return fmt.Errorf("error writing report: %w", err)
		}
	}
	return nil
}

// writeReportText writes the report sections, one blank line between sections.
func writeReportText(w io.Writer, rep schema.Report, useColors bool) error {
	for i, s := range rep.Sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if s.Heading != "" {
			heading := s.Heading
			if useColors {
				heading = contract.HeadingColor.Sprint(heading)
			}
			if _, err := fmt.Fprintln(w, heading); err != nil {
				return err
			}
		}
		for _, line := range s.Lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeCSVCharts writes one row per chart point, in chart order.
func writeCSVCharts(w io.Writer, charts []schema.ChartSeries, fmtFloat func(float64) string) error {
	header := []string{"chart_id", "title", "line", "timestamp", "label", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range charts {
			for _, line := range c.Lines {
				for _, p := range line.Points {
					ts := ""
					if p.Label == "" {
						ts = strconv.FormatInt(p.Timestamp, 10)
					}
					row := []string{c.ID, c.Title, line.Label, ts, p.Label, formatOptional(p.Value, fmtFloat)}
					if err := cw.Write(row); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}
