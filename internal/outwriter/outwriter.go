// Package outwriter renders view results as tables, CSV or JSON.
package outwriter

import (
	"time"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteOverview prints the overview KPIs using the configured output format.
func (ow *OutWriter) WriteOverview(result schema.OverviewResult, cfg *contract.Config, duration time.Duration) error {
	return WriteOverviewResults(result, cfg, duration)
}

// WritePlayers prints the player win/loss table using the configured output format.
func (ow *OutWriter) WritePlayers(result schema.PlayersResult, cfg *contract.Config, duration time.Duration) error {
	return WritePlayerResults(result, cfg, duration)
}

// WriteCharacters prints character rankings using the configured output format.
func (ow *OutWriter) WriteCharacters(result schema.CharactersResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCharacterResults(result, cfg, duration)
}

// WriteMatches prints the raw matches view using the configured output format.
func (ow *OutWriter) WriteMatches(result schema.MatchesResult, cfg *contract.Config, duration time.Duration) error {
	return WriteMatchResults(result, cfg, duration)
}

// WriteOptions prints the selectable filter values using the configured output format.
func (ow *OutWriter) WriteOptions(result schema.OptionsResult, cfg *contract.Config) error {
	return WriteOptionResults(result, cfg)
}
