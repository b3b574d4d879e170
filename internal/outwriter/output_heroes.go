package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintHeroes outputs the daily heroes, dispatching based on the output format configured.
func PrintHeroes(heroes []schema.Hero, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if heroes == nil {
			heroes = []schema.Hero{}
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, heroes)
		}, "Wrote JSON heroes"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVHeroes(w, heroes, fmtFloat)
		}, "Wrote CSV heroes"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for heroes")
	default:
		nameWidth := GetMaxTableNameWidth(cfg, 3)
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHeroesTable(w, heroes, fmtFloat, nameWidth, cfg.UseColors)
		}, "Wrote heroes"); err != nil {
			return fmt.Errorf("error writing heroes table: %w", err)
		}
	}
	return nil
}

// writeHeroesTable prints the heroes ranked by the ranges they added in the event window.
func writeHeroesTable(w io.Writer, heroes []schema.Hero, fmtFloat func(float64) string, nameWidth int, useColors bool) error {
	if len(heroes) == 0 {
		_, err := fmt.Fprintln(w, "🚫 No daily heroes...")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "User", "Ranges", "Speed", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, h := range heroes {
		label := contract.GetSpeedLabel(h.Speed)
		if useColors {
			label = contract.GetColorSpeedLabel(h.Speed)
		}
		data = append(data, []string{
			strconv.Itoa(h.Rank),
			contract.TruncateText(h.User, nameWidth),
			"+" + strconv.FormatInt(h.RangeDelta, 10),
			fmtFloat(h.Speed),
			label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCSVHeroes writes one row per hero.
func writeCSVHeroes(w io.Writer, heroes []schema.Hero, fmtFloat func(float64) string) error {
	header := []string{"rank", "user", "range_delta", "speed", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, h := range heroes {
			row := []string{
				strconv.Itoa(h.Rank),
				h.User,
				strconv.FormatInt(h.RangeDelta, 10),
				fmtFloat(h.Speed),
				contract.GetSpeedLabel(h.Speed),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
