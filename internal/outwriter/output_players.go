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

// WritePlayerResults outputs the player tallies, dispatching based on the output format configured.
func WritePlayerResults(result schema.PlayersResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForPlayers(w, result.Players)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForPlayers(w, result.Players, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePlayerTable(w, result.Players, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

// playerWinRate returns the win percentage of a player record.
func playerWinRate(p schema.PlayerRecord) float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.Total) * 100
}

func writePlayerTable(w io.Writer, players []schema.PlayerRecord, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	if len(players) == 0 {
		if _, err := fmt.Fprintln(w, "No player data."); err != nil {
			return err
		}
		return writeFooter(w, cfg, duration)
	}

	var data [][]string
	for i, p := range players {
		rate := playerWinRate(p)
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(p.Name, 32),
			fmt.Sprintf(intFmt, p.Wins),
			fmt.Sprintf(intFmt, p.Losses),
			fmt.Sprintf(intFmt, p.Total),
			fmtFloat(rate) + "%",
			contract.GetColorLabel(rate),
		})
	}
	if err := renderTable(w, []string{"Rank", "Player", "Wins", "Losses", "Total", "Win Rate", "Label"}, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d players by matches played\n", len(players)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

func writeCSVResultsForPlayers(w io.Writer, players []schema.PlayerRecord, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "steam_name", "wins", "losses", "total", "win_rate", "label"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, p := range players {
			rate := playerWinRate(p)
			if err := cw.Write([]string{
				strconv.Itoa(i + 1),
				p.Name,
				fmt.Sprintf(intFmt, p.Wins),
				fmt.Sprintf(intFmt, p.Losses),
				fmt.Sprintf(intFmt, p.Total),
				fmtFloat(rate),
				contract.GetPlainLabel(rate),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeJSONResultsForPlayers(w io.Writer, players []schema.PlayerRecord) error {
	type JSONPlayerResult struct {
		Rank    int     `json:"rank"`
		WinRate float64 `json:"win_rate"`
		Label   string  `json:"label"`
		schema.PlayerRecord
	}

	output := make([]JSONPlayerResult, len(players))
	for i, p := range players {
		rate := playerWinRate(p)
		output[i] = JSONPlayerResult{
			Rank:         i + 1,
			WinRate:      schema.Round(rate, 2),
			Label:        contract.GetPlainLabel(rate),
			PlayerRecord: p,
		}
	}
	return writeJSON(w, output)
}
