//go:build basic

package integration

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const sqliteMatchTable = `CREATE TABLE tb_partidas_tst2 (
	id INTEGER PRIMARY KEY, version TEXT, steam_name TEXT, steam_id TEXT, win BOOLEAN,
	wave INTEGER, stage TEXT, difficulty TEXT, total_seconds REAL, coins INTEGER,
	critical_hit_quantity INTEGER, multiplayer BOOLEAN, characters_damage_data TEXT,
	relics_id TEXT, selected_rewards TEXT, start_time TEXT)`

// TestSQLiteSource runs every view against a SQLite match source.
func TestSQLiteSource(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "matches.db")

	db, err := sql.Open("sqlite", sourcePath)
	require.NoError(t, err)
	seedMatches(t, db, sqliteMatchTable, func(int) string { return "?" })
	require.NoError(t, db.Close())

	env := map[string]string{
		"SHARDSTATS_SOURCE_BACKEND":    "sqlite",
		"SHARDSTATS_SOURCE_DB_CONNECT": sourcePath,
		"SHARDSTATS_CACHE_DB_CONNECT":  filepath.Join(dir, "cache.db"),
		"SHARDSTATS_COLOR":             "no",
	}

	out, err := runCommand(t, env, "overview", "-g", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "50.00%")

	out, err = runCommand(t, env, "players", "-g", "all", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "rank,steam_name,wins,losses,total,win_rate,label")

	out, err = runCommand(t, env, "characters", "-g", "all", "--role", "main")
	require.NoError(t, err)
	assert.Contains(t, out, "Sid")

	out, err = runCommand(t, env, "matches", "-g", "all", "--outcome", "loss")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1 of 1 matches")

	out, err = runCommand(t, env, "options")
	require.NoError(t, err)
	assert.Contains(t, out, "Latest version: 1.0.1")

	out, err = runCommand(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Entries: 1")
}

// TestAccessGate checks that a configured access hash rejects a wrong password.
func TestAccessGate(t *testing.T) {
	hash, err := runCommand(t, nil, "hash-password", "s3cret")
	require.NoError(t, err)

	env := map[string]string{
		"SHARDSTATS_SOURCE_BACKEND":    "sqlite",
		"SHARDSTATS_SOURCE_DB_CONNECT": filepath.Join(t.TempDir(), "missing.db"),
		"SHARDSTATS_CACHE_BACKEND":     "none",
		"SHARDSTATS_ACCESS_HASH":       hash,
		"SHARDSTATS_PASSWORD":          "wrong",
	}
	out, err := runCommand(t, env, "overview")
	require.Error(t, err)
	assert.Contains(t, out, "incorrect password, try again")
}
