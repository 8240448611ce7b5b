// Package source reads raw match rows from the relational match store.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

const selectColumns = "id, version, steam_name, steam_id, win, wave, stage, difficulty, total_seconds, coins, " +
	"critical_hit_quantity, multiplayer, characters_damage_data, relics_id, selected_rewards, start_time"

// maxConnectTimeout caps how long Open waits for the match store.
const maxConnectTimeout = 10 * time.Second

// SQLSource fetches matches with a fixed read-only query.
type SQLSource struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	table   string
}

var _ contract.MatchSource = &SQLSource{} // Compile-time check

// Open connects to the match store. Connecting is bounded by the timeout, capped at
// maxConnectTimeout. For PostgreSQL the timeout is also sent as statement_timeout
// unless the connection string sets one.
func Open(ctx context.Context, backend schema.DatabaseBackend, connStr, table string, timeout time.Duration) (*SQLSource, error) {
	if err := contract.ValidateTableName(table); err != nil {
		return nil, err
	}

	var db *sql.DB
	switch backend {
	case schema.PostgreSQLBackend:
		cfg, err := postgresConfig(connStr, timeout)
		if err != nil {
			return nil, err
		}
		db = stdlib.OpenDB(*cfg)
	case schema.MySQLBackend:
		cfg, err := mysqlConfig(connStr, timeout)
		if err != nil {
			return nil, err
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL connector: %w", err)
		}
		db = sql.OpenDB(connector)
	case schema.SQLiteBackend:
		if connStr == "" {
			return nil, fmt.Errorf("sqlite source requires a database file")
		}
		var err error
		if db, err = sql.Open("sqlite", connStr); err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w", connStr, err)
		}
	default:
		return nil, fmt.Errorf("unsupported source backend: %s. Must be postgresql, mysql, or sqlite", backend)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(timeout))
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s match store: %w", backend, err)
	}
	return &SQLSource{db: db, backend: backend, table: table}, nil
}

// NewSQLSource wraps an open database.
func NewSQLSource(db *sql.DB, backend schema.DatabaseBackend, table string) (*SQLSource, error) {
	if err := contract.ValidateTableName(table); err != nil {
		return nil, err
	}
	return &SQLSource{db: db, backend: backend, table: table}, nil
}

func postgresConfig(connStr string, timeout time.Duration) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL connection string: %w", err)
	}
	if _, ok := cfg.RuntimeParams["statement_timeout"]; !ok && timeout > 0 {
		cfg.RuntimeParams["statement_timeout"] = strconv.FormatInt(timeout.Milliseconds(), 10)
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = connectTimeout(timeout)
	}
	return cfg, nil
}

func mysqlConfig(connStr string, timeout time.Duration) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = timeout
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = connectTimeout(timeout)
	}
	return cfg, nil
}

func connectTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 || timeout > maxConnectTimeout {
		return maxConnectTimeout
	}
	return timeout
}

// Query returns the statement used by FetchRecent.
func (s *SQLSource) Query() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE characters_damage_data IS NOT NULL ORDER BY id DESC LIMIT %s",
		selectColumns, contract.QuoteTableName(s.table, s.backend), contract.Placeholder(s.backend, 1))
}

// FetchRecent implements contract.MatchSource.
func (s *SQLSource) FetchRecent(ctx context.Context, limit int) ([]schema.RawMatch, error) {
	if limit <= 0 {
		limit = contract.DefaultFetchLimit
	}

	rows, err := s.db.QueryContext(ctx, s.Query(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]schema.RawMatch, 0, limit)
	for rows.Next() {
		var r schema.RawMatch
		if err := rows.Scan(
			&r.ID, &r.Version, &r.PlayerName, &r.PlayerID, &r.Win, &r.Wave, &r.Stage, &r.Difficulty,
			&r.TotalSeconds, &r.Coins, &r.CriticalHits, &r.Multiplayer,
			&r.CharactersDamageData, &r.Relics, &r.Rewards, &r.StartTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read match rows: %w", err)
	}
	return result, nil
}

// Close implements contract.MatchSource.
func (s *SQLSource) Close() error {
	return s.db.Close()
}
