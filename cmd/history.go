package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/internal/iocache"
	"github.com/shardsquad/shardstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := storeSetting("history-backend", "history-db-connect")
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no snapshot cache for history commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup reads the history settings without creating any table,
// so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeSetting("history-backend", "history-db-connect")
	if err != nil {
		return err
	}
	if backend == schema.NoneBackend {
		return errors.New("history-backend must be set to run migrations")
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyStore returns the initialized history store or exits.
func historyStore() contract.HistoryStore {
	store := iocache.Manager.GetHistoryStore()
	if store == nil {
		contract.LogFatal("History tracking is disabled", errors.New("history-backend is none"))
	}
	return store
}

// historyCmd focused on refresh history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the snapshot refresh history",
	Long: `Manage the record of snapshot refreshes.

Each refresh attempt records when it ran, how long it took, how many matches it
loaded and the error if it failed. History is disabled unless history-backend is set.

Subcommands:
  status  - Show history statistics
  clear   - Remove all recorded runs
  export  - Export recorded runs to Parquet
  migrate - Apply or roll back history schema migrations`,
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded refresh runs",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		backend, connStr, err := storeSetting("history-backend", "history-db-connect")
		cfg.HistoryBackend, cfg.HistoryDBConnect = backend, connStr
		return err
	},
	Run: func(_ *cobra.Command, _ []string) {
		path := sqliteFile(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath())
		if err := iocache.ClearHistory(cfg.HistoryBackend, path, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display refresh history statistics",
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := historyStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd exports the history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded refresh runs to a Parquet file",
	Long: `Write every recorded refresh run to the Parquet file given by --output-file.

Examples:
  shardstats history export --history-backend sqlite --output-file runs.parquet`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(os.Stdout, historyStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs history schema migrations.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back refresh history schema migrations",
	Long: `Run the embedded schema migrations of the history store.

Examples:
  # Migrate to the latest version
  shardstats history migrate --history-backend sqlite

  # Roll back everything
  shardstats history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to migrate history", err)
		}
	},
}
