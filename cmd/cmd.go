// Package cmd defines the command-line interface for shardstats.
package cmd

import (
	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(charactersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	pf := rootCmd.PersistentFlags()
	pf.String("source-backend", string(schema.PostgreSQLBackend), "Match source backend: postgresql or mysql or sqlite")
	pf.String("source-db-connect", "", "Match source connection string (defaults to $DATABASE_URL)")
	pf.String("source-table", contract.DefaultSourceTable, "Table holding the match rows")
	pf.Int("fetch-limit", contract.DefaultFetchLimit, "Number of most recent matches to load")
	pf.String("fetch-timeout", contract.DefaultFetchTimeout.String(), "Maximum time to wait for the match source")
	pf.String("cache-ttl", contract.DefaultCacheTTL.String(), "How long a loaded snapshot is reused")
	pf.String("cache-backend", string(schema.SQLiteBackend), "Snapshot cache backend: sqlite or mysql or postgresql or none")
	pf.String("cache-db-connect", "", "Database connection string for the snapshot cache (e.g., user:pass@tcp(host:port)/dbname)")
	pf.String("history-backend", string(schema.NoneBackend), "Refresh history backend: sqlite or mysql or postgresql or none")
	pf.String("history-db-connect", "", "Database connection string for refresh history (must differ from cache-db-connect)")
	pf.StringP("game-version", "g", schema.LatestVersion, "Game version: latest, all or an exact version")
	pf.StringP("difficulty", "d", contract.DefaultDifficulty, "Difficulty: all or an exact value")
	pf.StringP("multiplayer", "m", string(schema.TriNo), "Multiplayer matches: any or yes or no")
	pf.IntP("limit", "l", contract.DefaultResultLimit, "Number of rows to display")
	pf.String("output", string(schema.TextOut), "Output format: text or csv or json")
	pf.String("output-file", "", "Optional path to write output to")
	pf.String("chart-file", "", "Optional path to write an HTML bar chart to")
	pf.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	pf.Int("width", 0, "Terminal width override (0 = auto-detect)")
	pf.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	pf.String("access-hash", "", "bcrypt hash that gates access (see hash-password)")
	pf.String("password", "", "Password checked against access-hash (prefer SHARDSTATS_PASSWORD)")
	pf.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	pf.String("config", "", "Path to config file")
	if err := viper.BindPFlags(pf); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of charactersCmd to Viper
	charactersCmd.Flags().String("role", string(schema.RoleAll), "Character role: main or secondary or all")
	if err := viper.BindPFlags(charactersCmd.Flags()); err != nil {
		contract.LogFatal("Error binding characters flags", err)
	}

	// Bind all flags of matchesCmd to Viper
	matchesCmd.Flags().String("outcome", string(schema.OutcomeAll), "Match outcome: all or win or loss")
	matchesCmd.Flags().String("player-name", "", "Only matches of this steam name")
	matchesCmd.Flags().String("player-id", "", "Only matches of this steam id")
	matchesCmd.Flags().String("raw-version", "", "Only matches of this exact version (on top of --game-version)")
	if err := viper.BindPFlags(matchesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding matches flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
