package cmd

import (
	"github.com/shardsquad/shardstats/core"
	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/spf13/cobra"
)

// runView executes a view against the shared snapshot cache and exits on failure.
func runView(name string, exec core.ExecutorFunc) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := exec(rootCtx, cfg, snapshots); err != nil {
			contract.LogFatal("Error running "+name, err)
		}
	}
}

// overviewCmd shows the headline KPIs.
var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show total matches, win rate, top winner and defeats per wave",
	Long: `Summarize the selected matches.

Shows:
- Total matches and win rate with a Strong/Even/Weak label
- The wave where most defeats happen
- The player with the most wins
- Defeats per wave

Examples:
  # Latest version, difficulty 1, single player (defaults)
  shardstats overview

  # Every version and difficulty, with a chart
  shardstats overview -g all -d all --chart-file overview.html`,
	PreRunE: sharedSetupWrapper,
	Run:     runView("overview", core.ExecuteOverview),
}

// playersCmd shows the most active players.
var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Rank players by matches played with their wins and losses",
	Long: `List the players with the most matches in the selection.

Players are grouped by steam name. Use --limit to change how many are shown (default 15).

Examples:
  shardstats players
  shardstats players --limit 30 --output csv --output-file players.csv`,
	PreRunE: sharedSetupWrapper,
	Run:     runView("players", core.ExecutePlayers),
}

// charactersCmd shows character rankings among wins.
var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "Rank main and secondary characters among winning matches",
	Long: `Rank characters of winning matches by role.

The first character of a composition is the main, the others are secondary.
Each role reports the most used, best DPS, best boss damage and most balanced
character, followed by a table sorted by mean DPS.

Examples:
  shardstats characters
  shardstats characters --role main --output json`,
	PreRunE: sharedSetupWrapper,
	Run:     runView("characters", core.ExecuteCharacters),
}

// matchesCmd lists the raw matches.
var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List individual matches, newest first",
	Long: `List the matches of the selection with their composition, relics, rewards and total damage.

Examples:
  shardstats matches --outcome loss
  shardstats matches --player-name Ana --limit 50`,
	PreRunE: sharedSetupWrapper,
	Run:     runView("matches", core.ExecuteMatches),
}

// optionsCmd lists the values accepted by the filters.
var optionsCmd = &cobra.Command{
	Use:     "options",
	Short:   "List versions, difficulties and players present in the loaded matches",
	PreRunE: sharedSetupWrapper,
	Run:     runView("options", core.ExecuteOptions),
}

// exportCmd writes the normalized facts as Parquet.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the selected matches and participations to Parquet",
	Long: `Write the normalized matches and character participations of the selection
to two Parquet files named <prefix>.matches.parquet and <prefix>.participations.parquet.

The prefix comes from --output-file and defaults to "shardstats".

Examples:
  shardstats export -g all -d all --output-file dump`,
	PreRunE: sharedSetupWrapper,
	Run:     runView("export", core.ExecuteExport),
}
