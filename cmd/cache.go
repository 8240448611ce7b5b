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

// storeSetting reads a backend and its connection string without the full shared setup.
func storeSetting(backendKey, connKey string) (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend := schema.DatabaseBackend(viper.GetString(backendKey))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid %s '%s'. must be sqlite, mysql, postgresql, none", backendKey, backend)
	}
	connStr := viper.GetString(connKey)
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// sqliteFile returns the file a SQLite store lives in.
func sqliteFile(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}

// cacheSetup loads minimal configuration needed for cache operations.
func cacheSetup() error {
	backend, connStr, err := storeSetting("cache-backend", "cache-db-connect")
	if err != nil {
		return err
	}

	// Initialize caching with the loaded config (no history tracking for cache commands)
	if err := iocache.InitStores(backend, connStr, schema.NoneBackend, ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on snapshot cache management.
//
// Note: Cache subcommands use minimal initialization instead of the full sharedSetup
// used by the views. They never connect to the match source.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the durable snapshot cache",
	Long: `Manage the snapshot cache that lets views start without querying the match source.

Every successful refresh stores the normalized matches so the next run within the
TTL is served from the cache, and an unreachable source can fall back to it.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (memory only)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached snapshots`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached snapshots",
	Long: `Delete all cached snapshots from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  shardstats cache clear
  SHARDSTATS_CACHE_BACKEND=mysql SHARDSTATS_CACHE_DB_CONNECT="..." shardstats cache clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// Clearing must not open (and recreate) the store first
		backend, connStr, err := storeSetting("cache-backend", "cache-db-connect")
		cfg.CacheBackend, cfg.CacheDBConnect = backend, connStr
		return err
	},
	Run: func(_ *cobra.Command, _ []string) {
		path := sqliteFile(cfg.CacheDBConnect, contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(cfg.CacheBackend, path, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the snapshot cache.

Displays:
- Backend type and connection status
- Total number of cached snapshots
- Last and oldest entry timestamps
- Cache database size`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetSnapshotStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("cache backend is none"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
