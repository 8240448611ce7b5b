package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
)

// WriteOverviewResults outputs the overview, dispatching based on the output format configured.
func WriteOverviewResults(result schema.OverviewResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOverviewCSV(w, result, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOverviewTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeOverviewTable writes the KPI table followed by the defeats per wave table.
func writeOverviewTable(w io.Writer, result schema.OverviewResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	kpis := result.KPIs

	waveText := "No defeats."
	if kpis.WaveMostDefeats != nil {
		waveText = fmt.Sprintf("%d (%s defeats)", kpis.WaveMostDefeats.Wave, humanize.Comma(int64(kpis.WaveMostDefeats.Defeats)))
	}
	winnerText := "No winners."
	if kpis.TopWinner != nil {
		winnerText = fmt.Sprintf("%s (%s wins)", kpis.TopWinner.Name, humanize.Comma(int64(kpis.TopWinner.Wins)))
	}

	data := [][]string{
		{"Total Matches", humanize.Comma(int64(kpis.TotalMatches))},
		{"Win Rate", fmt.Sprintf("%s%% %s", fmtFloat(kpis.WinRate), contract.GetColorLabel(kpis.WinRate))},
		{"Wave With Most Defeats", waveText},
		{"Player With Most Wins", winnerText},
	}
	if err := renderTable(w, []string{"Metric", "Value"}, data); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "☠️  Defeats per wave"); err != nil {
		return err
	}
	if len(result.DefeatsByWave) == 0 {
		if _, err := fmt.Fprintln(w, "No defeats."); err != nil {
			return err
		}
	} else {
		waves := make([][]string, 0, len(result.DefeatsByWave))
		for _, wc := range result.DefeatsByWave {
			waves = append(waves, []string{strconv.Itoa(wc.Wave), humanize.Comma(int64(wc.Defeats))})
		}
		if err := renderTable(w, []string{"Wave", "Defeats"}, waves); err != nil {
			return err
		}
	}
	return writeFooter(w, cfg, duration)
}

// writeOverviewCSV writes the KPIs and the defeats series as metric/value pairs.
func writeOverviewCSV(w io.Writer, result schema.OverviewResult, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		kpis := result.KPIs
		rows := [][]string{
			{"total_matches", fmt.Sprintf(intFmt, kpis.TotalMatches)},
			{"win_rate", fmtFloat(kpis.WinRate)},
			{"label", contract.GetPlainLabel(kpis.WinRate)},
		}
		if kpis.WaveMostDefeats != nil {
			rows = append(rows,
				[]string{"wave_most_defeats", fmt.Sprintf(intFmt, kpis.WaveMostDefeats.Wave)},
				[]string{"wave_most_defeats_count", fmt.Sprintf(intFmt, kpis.WaveMostDefeats.Defeats)},
			)
		}
		if kpis.TopWinner != nil {
			rows = append(rows,
				[]string{"top_winner", kpis.TopWinner.Name},
				[]string{"top_winner_wins", fmt.Sprintf(intFmt, kpis.TopWinner.Wins)},
			)
		}
		for _, wc := range result.DefeatsByWave {
			rows = append(rows, []string{fmt.Sprintf("defeats_wave_%d", wc.Wave), fmt.Sprintf(intFmt, wc.Defeats)})
		}
		return cw.WriteAll(rows)
	})
}
