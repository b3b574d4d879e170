package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/parquet"
	"github.com/huangsam/hunterstats/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintUserStats outputs per-user statistics, dispatching based on the output format configured.
func PrintUserStats(stats schema.UserStats, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON user stats"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVUserStats(w, stats, fmtFloat)
		}, "Wrote CSV user stats"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteUserDaysParquet(parquet.ConvertUserStats(stats), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeUserStatsTable(w, stats, fmtFloat)
		}, "Wrote user stats"); err != nil {
			return fmt.Errorf("error writing user stats table: %w", err)
		}
	}
	return nil
}

func userStatsRow(stats schema.UserStats, i int, fmtFloat func(float64) string) []string {
	return []string{
		stats.Days[i],
		fmtFloat(stats.DailySpeed[i]),
		strconv.FormatInt(stats.DailyRanges[i], 10),
		formatOptional(stats.RangesAvg[i], fmtFloat),
		fmtFloat(stats.OverallDailySpeed[i]),
		formatOptional(stats.OverallSpeedAvg[i], fmtFloat),
	}
}

// writeUserStatsTable prints one row per civil day plus the overall averages.
func writeUserStatsTable(w io.Writer, stats schema.UserStats, fmtFloat func(float64) string) error {
	if !stats.Found {
		_, err := fmt.Fprintf(w, "🔍 No user matches '%s'\n", stats.Query)
		return err
	}

	if _, err := fmt.Fprintf(w, "📊 Stats for %s\n", stats.User); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Day", "Speed", "Ranges", "Ranges 7d Avg", "Pool Speed", "Pool 7d Avg"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i := range stats.Days {
		data = append(data, userStatsRow(stats, i, fmtFloat))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Overall avg speed: %s BKeys/s across %d contributing users\n",
		fmtFloat(stats.OverallAvgSpeed), stats.ContributingUsers)
	return err
}

// writeCSVUserStats writes one row per civil day.
func writeCSVUserStats(w io.Writer, stats schema.UserStats, fmtFloat func(float64) string) error {
	header := []string{"user", "day", "daily_speed", "daily_ranges", "ranges_avg_7d", "overall_daily_speed", "overall_speed_avg_7d"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		if !stats.Found {
			return nil
		}
		for i := range stats.Days {
			row := append([]string{stats.User}, userStatsRow(stats, i, fmtFloat)...)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
