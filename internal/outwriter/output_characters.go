package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
)

// WriteCharacterResults outputs per-role rankings and detail tables,
// dispatching based on the output format configured.
func WriteCharacterResults(result schema.CharactersResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result.Roles)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForCharacters(w, result.Roles, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, summary := range result.Roles {
				if err := writeRoleSummary(w, summary, fmtFloat, intFmt); err != nil {
					return err
				}
			}
			return writeFooter(w, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

func roleTitle(role schema.Role) string {
	switch role {
	case schema.RoleMain:
		return "🗡️  Main characters (wins only)"
	case schema.RoleSecondary:
		return "🛡️  Secondary characters (wins only)"
	default:
		return strings.ToUpper(string(role))
	}
}

// writeRoleSummary writes the four rankings and the detail table of one role.
func writeRoleSummary(w io.Writer, summary schema.RoleSummary, fmtFloat func(float64) string, intFmt string) error {
	if _, err := fmt.Fprintln(w, roleTitle(summary.Role)); err != nil {
		return err
	}
	if summary.Rankings.Empty() {
		_, err := fmt.Fprintf(w, "No winning matches for %s characters.\n", summary.Role)
		return err
	}

	r := summary.Rankings
	rankings := [][]string{
		{"Most Used", r.MostUsed.Name, fmt.Sprintf(intFmt, r.MostUsed.Count)},
		{"Best DPS", r.BestDPS.Name, fmtFloat(r.BestDPS.MeanDPS)},
		{"Best Boss Damage", r.BestBossDamage.Name, fmtFloat(r.BestBossDamage.MeanBossDamage)},
		{"Most Balanced", r.MostBalanced.Name, fmtFloat(r.MostBalanced.Composite)},
	}
	if err := renderTable(w, []string{"Ranking", "Character", "Value"}, rankings); err != nil {
		return err
	}

	var data [][]string
	for i, row := range summary.Table {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			row.Name,
			fmt.Sprintf(intFmt, row.Count),
			fmtFloat(row.MeanDPS),
			fmtFloat(row.MeanBossDamage),
			fmtFloat(row.Composite),
		})
	}
	return renderTable(w, []string{"Rank", "Character", "Wins", "Mean DPS", "Mean Boss Dmg", "Balance"}, data)
}

func writeCSVResultsForCharacters(w io.Writer, roles []schema.RoleSummary, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"role",
		"rank",
		"character_id",
		"character",
		"count",
		"mean_dps",
		"mean_boss_damage",
		"norm_dps",
		"norm_boss_damage",
		"composite",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, summary := range roles {
			for i, row := range summary.Table {
				if err := cw.Write([]string{
					string(summary.Role),
					strconv.Itoa(i + 1),
					row.Key.CharacterID,
					row.Name,
					fmt.Sprintf(intFmt, row.Count),
					fmtFloat(row.MeanDPS),
					fmtFloat(row.MeanBossDamage),
					fmtFloat(row.NormDPS),
					fmtFloat(row.NormBossDamage),
					fmtFloat(row.Composite),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
