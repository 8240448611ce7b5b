package contract

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/shardsquad/shardstats/schema"
)

// Default values for configuration.
const (
	DefaultSourceTable  = "tb_partidas_tst2"
	DefaultFetchLimit   = 1000
	MaxFetchLimit       = 10000
	DefaultFetchTimeout = 2 * time.Minute
	DefaultCacheTTL     = 300 * time.Second
	DefaultResultLimit  = 15
	MaxResultLimit      = 1000
	DefaultPrecision    = 2
	MaxPrecision        = 4
	DefaultDifficulty   = "1"
)

// SourceURLEnv is read when no source connection string is configured.
const SourceURLEnv = "DATABASE_URL"

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	SourceBackend   schema.DatabaseBackend
	SourceDBConnect string // Please use env var as this is plaintext
	SourceTable     string
	FetchLimit      int
	FetchTimeout    time.Duration
	CacheTTL        time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	// Filter is the selection shared by all aggregated views.
	// Version may still be "latest" and is resolved against the loaded snapshot.
	Filter schema.MatchFilter

	// RawFilter narrows the raw matches view.
	RawFilter schema.RawFilter

	Role        schema.Role
	Output      schema.OutputMode
	OutputFile  string
	ChartFile   string
	Precision   int
	ResultLimit int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	AccessHash string
	Password   string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	SourceBackend    string `mapstructure:"source-backend"`
	SourceDBConnect  string `mapstructure:"source-db-connect"`
	SourceTable      string `mapstructure:"source-table"`
	FetchLimit       int    `mapstructure:"fetch-limit"`
	FetchTimeout     string `mapstructure:"fetch-timeout"`
	CacheTTL         string `mapstructure:"cache-ttl"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	GameVersion      string `mapstructure:"game-version"`
	Multiplayer      string `mapstructure:"multiplayer"`
	Difficulty       string `mapstructure:"difficulty"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	ChartFile        string `mapstructure:"chart-file"`
	Precision        int    `mapstructure:"precision"`
	Limit            int    `mapstructure:"limit"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	AccessHash       string `mapstructure:"access-hash"`
	Password         string `mapstructure:"password"`

	// --- Fields from charactersCmd.Flags() ---
	Role string `mapstructure:"role"`

	// --- Fields from matchesCmd.Flags() ---
	Outcome    string `mapstructure:"outcome"`
	PlayerName string `mapstructure:"player-name"`
	PlayerID   string `mapstructure:"player-id"`
	RawVersion string `mapstructure:"raw-version"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := validateSourceConfig(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processFilters(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
		if _, err := mysql.ParseDSN(connStr); err != nil {
			return fmt.Errorf("invalid MySQL connection string: %w", err)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if isPostgresURL(connStr) {
			u, err := url.Parse(connStr)
			if err != nil {
				return fmt.Errorf("invalid PostgreSQL URL: %w", err)
			}
			if u.Host == "" {
				return fmt.Errorf("PostgreSQL URL must contain a host")
			}
			if strings.Trim(u.Path, "/") == "" {
				return fmt.Errorf("PostgreSQL URL must contain a database name")
			}
		} else {
			if !strings.Contains(connStr, "host=") {
				return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
			}
			if !strings.Contains(connStr, "dbname=") {
				return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
			}
		}
		if _, err := pgx.ParseConfig(connStr); err != nil {
			return fmt.Errorf("invalid PostgreSQL connection string: %w", err)
		}
	}
	return nil
}

func isPostgresURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// validateSourceConfig validates where match rows are read from.
func validateSourceConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.SourceBackend = schema.DatabaseBackend(strings.ToLower(input.SourceBackend))
	if _, ok := schema.ValidSourceBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("invalid source backend '%s'. must be postgresql, mysql, sqlite", input.SourceBackend)
	}

	cfg.SourceDBConnect = input.SourceDBConnect
	if cfg.SourceDBConnect == "" {
		cfg.SourceDBConnect = os.Getenv(SourceURLEnv)
	}
	if cfg.SourceBackend == schema.SQLiteBackend && cfg.SourceDBConnect == "" {
		return fmt.Errorf("source-db-connect must point to a database file when using %s source", cfg.SourceBackend)
	}
	if err := ValidateDatabaseConnectionString(cfg.SourceBackend, cfg.SourceDBConnect); err != nil {
		return fmt.Errorf("invalid source-db-connect (or %s): %w", SourceURLEnv, err)
	}

	cfg.SourceTable = strings.TrimSpace(input.SourceTable)
	if cfg.SourceTable == "" {
		cfg.SourceTable = DefaultSourceTable
	}

	if input.FetchLimit <= 0 || input.FetchLimit > MaxFetchLimit {
		return fmt.Errorf("fetch-limit must be greater than 0 and cannot exceed %d (received %d)", MaxFetchLimit, input.FetchLimit)
	}
	cfg.FetchLimit = input.FetchLimit
	return nil
}

// validateBackendConfigs validates snapshot cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("invalid cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("invalid history-db-connect: %w", err)
	}

	// Cache and history must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.ChartFile = input.ChartFile
	cfg.Width = input.Width
	cfg.AccessHash = strings.TrimSpace(input.AccessHash)
	cfg.Password = input.Password

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}
	return nil
}

// processDurations parses the fetch timeout and cache TTL.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.FetchTimeout, err = parsePositiveDuration("fetch-timeout", input.FetchTimeout, DefaultFetchTimeout); err != nil {
		return err
	}
	if cfg.CacheTTL, err = parsePositiveDuration("cache-ttl", input.CacheTTL, DefaultCacheTTL); err != nil {
		return err
	}
	return nil
}

func parsePositiveDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (received %s)", name, value)
	}
	return d, nil
}

// processFilters validates the match selection and the raw view filters.
func processFilters(cfg *Config, input *ConfigRawInput) error {
	version := strings.TrimSpace(input.GameVersion)
	if version == "" {
		version = schema.LatestVersion
	}
	multiplayer, err := ParseTriState(input.Multiplayer)
	if err != nil {
		return fmt.Errorf("invalid --multiplayer value: %w", err)
	}
	difficulty := strings.TrimSpace(input.Difficulty)
	if difficulty == "" {
		difficulty = schema.Wildcard
	}
	cfg.Filter = schema.MatchFilter{Version: version, Multiplayer: multiplayer, Difficulty: difficulty}

	outcome := schema.Outcome(strings.ToLower(strings.TrimSpace(input.Outcome)))
	if outcome == "" {
		outcome = schema.OutcomeAll
	}
	if _, ok := schema.ValidOutcomes[outcome]; !ok {
		return fmt.Errorf("invalid outcome '%s'. must be all, win, loss", input.Outcome)
	}
	cfg.RawFilter = schema.RawFilter{
		Outcome:    outcome,
		PlayerName: strings.TrimSpace(input.PlayerName),
		PlayerID:   strings.TrimSpace(input.PlayerID),
		Version:    strings.TrimSpace(input.RawVersion),
	}

	cfg.Role = schema.Role(strings.ToLower(strings.TrimSpace(input.Role)))
	if cfg.Role == "" {
		cfg.Role = schema.RoleAll
	}
	if _, ok := schema.ValidRoles[cfg.Role]; !ok {
		return fmt.Errorf("invalid role '%s'. must be main, secondary, all", input.Role)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
