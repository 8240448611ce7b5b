package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/shardsquad/shardstats/core/snapshot"
	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/internal/iocache"
	"github.com/shardsquad/shardstats/internal/source"
	"github.com/shardsquad/shardstats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// matchSource and snapshots are opened by sharedSetup and shared by every view.
var (
	matchSource *source.SQLSource
	snapshots   *snapshot.Cache
)

// startProfiling starts CPU and memory profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	// Memory profiling will be captured at the end
	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "shardstats",
	Short:              "Analyze ShardSquad match history.",
	Long:               `shardstats loads recent ShardSquad matches and reports win rates, player records and character rankings.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file may carry DATABASE_URL and SHARDSTATS_* secrets
	source.LoadEnv(source.DefaultEnvPaths...)

	setConfigFile()

	viper.SetEnvPrefix("SHARDSTATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("source-backend", schema.PostgreSQLBackend)
	viper.SetDefault("source-table", contract.DefaultSourceTable)
	viper.SetDefault("fetch-limit", contract.DefaultFetchLimit)
	viper.SetDefault("fetch-timeout", contract.DefaultFetchTimeout.String())
	viper.SetDefault("cache-ttl", contract.DefaultCacheTTL.String())
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("history-backend", schema.NoneBackend)
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("game-version", schema.LatestVersion)
	viper.SetDefault("multiplayer", schema.TriNo)
	viper.SetDefault("difficulty", contract.DefaultDifficulty)
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
}

// setConfigFile points viper at --config or the default .shardstats.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".shardstats")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile reads the config file if present.
func loadConfigFile() error {
	setConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// loadInput merges defaults, file, env and flags, then validates them into cfg.
func loadInput() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	color.NoColor = !cfg.UseColors
	return nil
}

// sharedSetup validates config, checks access and opens the source and stores.
func sharedSetup(ctx context.Context, _ *cobra.Command, _ []string) error {
	profilePrefix := viper.GetString("profile")
	if err := contract.ProcessProfilingConfig(profile, profilePrefix); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if profile.Enabled {
		if err := startProfiling(); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	// 1. Validate everything before touching any database
	if err := loadInput(); err != nil {
		return err
	}

	// 2. Access gate
	if err := contract.CheckAccess(cfg.AccessHash, cfg.Password); err != nil {
		return err
	}

	// 3. Durable stores
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	// 4. Match source and the shared snapshot cache
	src, err := source.Open(ctx, cfg.SourceBackend, cfg.SourceDBConnect, cfg.SourceTable, cfg.FetchTimeout)
	if err != nil {
		// A reachable snapshot store can still serve the views
		contract.LogWarn("Match source unavailable", err)
	} else {
		matchSource = src
	}
	snapshots = newSnapshotCache(cfg, sourceOrUnavailable(err))
	return nil
}

// sourceOrUnavailable returns the opened source, or one that fails every fetch with openErr.
func sourceOrUnavailable(openErr error) contract.MatchSource {
	if openErr == nil && matchSource != nil {
		return matchSource
	}
	return unavailableSource{err: openErr}
}

type unavailableSource struct{ err error }

func (u unavailableSource) FetchRecent(context.Context, int) ([]schema.RawMatch, error) {
	return nil, u.err
}

func (unavailableSource) Close() error { return nil }

// newSnapshotCache builds the snapshot cache backed by the global stores.
func newSnapshotCache(cfg *contract.Config, src contract.MatchSource) *snapshot.Cache {
	key := snapshot.Key(string(cfg.SourceBackend), cfg.SourceTable, strconv.Itoa(cfg.FetchLimit))
	return snapshot.New(src,
		snapshot.WithTTL(cfg.CacheTTL),
		snapshot.WithFetchLimit(cfg.FetchLimit),
		snapshot.WithFetchTimeout(cfg.FetchTimeout),
		snapshot.WithStore(iocache.Manager.GetSnapshotStore()),
		snapshot.WithStoreKey(key),
		snapshot.WithHistory(iocache.Manager.GetHistoryStore()),
	)
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Cleanup closes the match source and the durable stores.
func Cleanup() {
	if matchSource != nil {
		_ = matchSource.Close()
	}
	iocache.CloseStores()
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}
