package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
)

// WriteMatchResults outputs the raw matches view, dispatching based on the output format configured.
func WriteMatchResults(result schema.MatchesResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result.Matches)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForMatches(w, result.Matches, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMatchTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

func resultText(win bool) string {
	if win {
		return contract.StrongColor.Sprint("Win")
	}
	return contract.WeakColor.Sprint("Loss")
}

func writeMatchTable(w io.Writer, result schema.MatchesResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if len(result.Matches) == 0 {
		if _, err := fmt.Fprintln(w, "No matches for the selected filters."); err != nil {
			return err
		}
		return writeFooter(w, cfg, duration)
	}

	width := getMaxCompositionWidth(cfg)
	var data [][]string
	for _, m := range result.Matches {
		data = append(data, []string{
			strconv.FormatInt(m.ID, 10),
			contract.TruncateText(m.PlayerName, 20),
			m.Version,
			resultText(m.Win),
			strconv.Itoa(m.Wave),
			m.Difficulty,
			contract.TruncateText(m.Composition, width),
			contract.TruncateText(m.Relics, 20),
			contract.TruncateText(m.Rewards, 20),
			fmtFloat(m.TotalDamage),
		})
	}
	header := []string{"ID", "Player", "Version", "Result", "Wave", "Difficulty", "Composition", "Relics", "Rewards", "Total Damage"}
	if err := renderTable(w, header, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d of %d matches\n", len(result.Matches), result.Total); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

func writeCSVResultsForMatches(w io.Writer, matches []schema.MatchRow, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"id",
		"steam_id",
		"steam_name",
		"total_seconds",
		"version",
		"win",
		"wave",
		"difficulty",
		"multiplayer",
		"composition",
		"relics",
		"rewards",
		"total_damage",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range matches {
			if err := cw.Write([]string{
				strconv.FormatInt(m.ID, 10),
				m.PlayerID,
				m.PlayerName,
				fmtFloat(m.TotalSeconds),
				m.Version,
				strconv.FormatBool(m.Win),
				fmt.Sprintf(intFmt, m.Wave),
				m.Difficulty,
				strconv.FormatBool(m.Multiplayer),
				m.Composition,
				m.Relics,
				m.Rewards,
				fmtFloat(m.TotalDamage),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
