package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shardsquad/shardstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createMatchesTable = `CREATE TABLE tb_partidas_tst2 (
	id INTEGER PRIMARY KEY,
	version TEXT,
	steam_name TEXT,
	steam_id TEXT,
	win INTEGER,
	wave INTEGER,
	stage TEXT,
	difficulty INTEGER,
	total_seconds REAL,
	coins INTEGER,
	critical_hit_quantity INTEGER,
	multiplayer INTEGER,
	characters_damage_data TEXT,
	relics_id TEXT,
	selected_rewards TEXT,
	start_time TEXT
)`

// seedMatchStore creates a SQLite match store with four rows, one without damage data.
func seedMatchStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matches.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(createMatchesTable)
	require.NoError(t, err)

	insert := `INSERT INTO tb_partidas_tst2 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	rows := [][]any{
		{1, "1.0.0", "Ana", "765", 1, 10, "forest", 1, 120.5, 40, 3, 0, `[{"character":"0","damage":100}]`, `["r1"]`, `[]`, "2025-01-01 10:00:00"},
		{2, "1.0.0", "Bo", "766", 0, 4, "forest", 2, 60.0, 10, 0, 1, `[{"character":"1","damage":5},{"character":"2"}]`, nil, nil, nil},
		{3, "1.0.1", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil},
		{4, "1.0.1", "Cy", "767", 1, 12, "cave", 1, 300.0, 90, 7, 0, `[]`, `["r2","r3"]`, `["w1"]`, "2025-01-02T08:00:00Z"},
	}
	for _, r := range rows {
		_, err := db.Exec(insert, r...)
		require.NoError(t, err)
	}
	return path
}

func TestFetchRecentSQLite(t *testing.T) {
	path := seedMatchStore(t)
	src, err := Open(context.Background(), schema.SQLiteBackend, path, "tb_partidas_tst2", time.Minute)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	rows, err := src.FetchRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3, "rows without damage data are skipped")

	assert.Equal(t, []int64{4, 2, 1}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})

	ana := rows[2]
	assert.Equal(t, "Ana", ana.PlayerName.String)
	assert.True(t, ana.Win.Valid && ana.Win.Bool)
	assert.Equal(t, "1", ana.Difficulty.String, "integer difficulty is read as text")
	assert.Equal(t, int64(10), ana.Wave.Int64)
	assert.JSONEq(t, `[{"character":"0","damage":100}]`, string(ana.CharactersDamageData))
	assert.Equal(t, "2025-01-01 10:00:00", ana.StartTime.String)

	bo := rows[1]
	assert.Nil(t, bo.Relics)
	assert.False(t, bo.StartTime.Valid)
	assert.True(t, bo.Multiplayer.Bool)
}

func TestFetchRecentLimit(t *testing.T) {
	path := seedMatchStore(t)
	src, err := Open(context.Background(), schema.SQLiteBackend, path, "tb_partidas_tst2", time.Minute)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	rows, err := src.FetchRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0].ID)
}

func TestFetchRecentMissingTable(t *testing.T) {
	path := seedMatchStore(t)
	src, err := Open(context.Background(), schema.SQLiteBackend, path, "other_table", time.Minute)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	_, err = src.FetchRecent(context.Background(), 10)
	assert.Error(t, err)
}

func TestOpenValidation(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, schema.SQLiteBackend, "x.db", "bad table", time.Minute)
	assert.Error(t, err)

	_, err = Open(ctx, schema.SQLiteBackend, "", "tb_partidas_tst2", time.Minute)
	assert.Error(t, err)

	_, err = Open(ctx, "oracle", "dsn", "tb_partidas_tst2", time.Minute)
	assert.Error(t, err)

	_, err = Open(ctx, schema.MySQLBackend, "not a dsn", "tb_partidas_tst2", time.Minute)
	assert.Error(t, err)
}

func TestConnectTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, connectTimeout(5*time.Second))
	assert.Equal(t, maxConnectTimeout, connectTimeout(2*time.Minute))
	assert.Equal(t, maxConnectTimeout, connectTimeout(0))
}

func TestOpenUnreachableHostIsBounded(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		dsn     string
	}{
		{schema.PostgreSQLBackend, "postgres://u:p@10.255.255.1:5432/game"},
		{schema.MySQLBackend, "u:p@tcp(10.255.255.1:3306)/game"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			start := time.Now()
			_, err := Open(context.Background(), tt.backend, tt.dsn, "tb_partidas_tst2", 200*time.Millisecond)
			assert.Error(t, err)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}

func TestQuery(t *testing.T) {
	pg, err := NewSQLSource(nil, schema.PostgreSQLBackend, "tb_partidas_tst2")
	require.NoError(t, err)
	assert.Contains(t, pg.Query(), `FROM "tb_partidas_tst2" WHERE characters_damage_data IS NOT NULL ORDER BY id DESC LIMIT $1`)

	my, err := NewSQLSource(nil, schema.MySQLBackend, "matches")
	require.NoError(t, err)
	assert.Contains(t, my.Query(), "FROM `matches`")
	assert.Contains(t, my.Query(), "LIMIT ?")

	_, err = NewSQLSource(nil, schema.MySQLBackend, "matches; --")
	assert.Error(t, err)
}

func TestPostgresConfig(t *testing.T) {
	cfg, err := postgresConfig("postgres://u:p@localhost:5432/game", 2*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "120000", cfg.RuntimeParams["statement_timeout"])
	assert.Equal(t, maxConnectTimeout, cfg.ConnectTimeout)

	cfg, err = postgresConfig("postgres://u:p@localhost:5432/game?connect_timeout=3", 2*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout, "explicit connect timeout is kept")

	cfg, err = postgresConfig("host=localhost dbname=game statement_timeout=5000", 2*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.RuntimeParams["statement_timeout"], "explicit timeout is kept")

	_, err = postgresConfig("postgres://u:p@localhost:notaport/game", time.Minute)
	assert.Error(t, err)
}

func TestMySQLConfig(t *testing.T) {
	cfg, err := mysqlConfig("u:p@tcp(localhost:3306)/game", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.ReadTimeout)
	assert.Equal(t, maxConnectTimeout, cfg.Timeout)

	cfg, err = mysqlConfig("u:p@tcp(localhost:3306)/game?readTimeout=5s", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SHARDSTATS_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("SHARDSTATS_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("SHARDSTATS_TEST_VALUE"))

	path, ok := LoadEnv(filepath.Join(dir, "missing.env"), envFile)
	assert.True(t, ok)
	assert.Equal(t, envFile, path)
	assert.Equal(t, "from-file", os.Getenv("SHARDSTATS_TEST_VALUE"))

	_, ok = LoadEnv(filepath.Join(dir, "missing.env"))
	assert.False(t, ok)
}
