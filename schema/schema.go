// Package schema has models, constants and registries shared by all parts of shardstats.
package schema

import (
	"database/sql"
	"time"
)

// RawMatch is one row as returned by the match source.
// The nested list columns are kept as raw bytes; their shape is checked during normalization.
type RawMatch struct {
	ID                   int64
	Version              sql.NullString
	PlayerName           sql.NullString // steam_name
	PlayerID             sql.NullString // steam_id
	Win                  sql.NullBool
	Wave                 sql.NullInt64
	Stage                sql.NullString
	Difficulty           sql.NullString
	TotalSeconds         sql.NullFloat64
	Coins                sql.NullInt64
	CriticalHits         sql.NullInt64
	Multiplayer          sql.NullBool
	CharactersDamageData []byte
	Relics               []byte
	Rewards              []byte
	StartTime            sql.NullString
}

// MatchRecord is one game session after normalization.
type MatchRecord struct {
	ID           int64     `json:"id"`
	Version      string    `json:"version"`
	PlayerID     string    `json:"steam_id"`
	PlayerName   string    `json:"steam_name"`
	Win          bool      `json:"win"`
	Wave         int       `json:"wave"`
	Stage        string    `json:"stage"`
	Difficulty   string    `json:"difficulty"`
	TotalSeconds float64   `json:"total_seconds"`
	Coins        int64     `json:"coins"`
	CriticalHits int64     `json:"critical_hit_quantity"`
	Multiplayer  bool      `json:"multiplayer"`
	Composition  []string  `json:"composition"` // character ids in list order
	Relics       []string  `json:"relics"`
	Rewards      []string  `json:"rewards"`
	StartTime    time.Time `json:"start_time"` // zero when unknown

	// Derived on every normalization pass.
	CharactersCount int     `json:"characters_count"`
	TotalDamage     float64 `json:"total_damage"`
	RelicCount      int     `json:"relic_count"`
	RewardsCount    int     `json:"rewards_count"`
}

// HasStartTime reports whether the start time could be parsed.
func (m MatchRecord) HasStartTime() bool {
	return !m.StartTime.IsZero()
}

// CharacterParticipation is one character's contribution within a match.
// It is identified by (MatchID, Position). Match-level fields are copied from the parent
// so that participations can be filtered and grouped on their own.
type CharacterParticipation struct {
	MatchID      int64   `json:"match_id"`
	Position     int     `json:"position"`
	CharacterID  string  `json:"character_id"`
	IsMain       bool    `json:"is_main"`
	Damage       float64 `json:"damage"`
	DamageBoss   float64 `json:"damage_boss"`
	DPS          float64 `json:"dps"`
	UpgradeCount int     `json:"upgrade_count"`

	PlayerID    string `json:"steam_id"`
	PlayerName  string `json:"steam_name"`
	Version     string `json:"version"`
	Difficulty  string `json:"difficulty"`
	Multiplayer bool   `json:"multiplayer"`
	Win         bool   `json:"win"`
	Wave        int    `json:"wave"`
}

// Role returns the positional role of the participation.
func (p CharacterParticipation) Role() Role {
	if p.IsMain {
		return RoleMain
	}
	return RoleSecondary
}

// GroupKey identifies an aggregation group. Fields not used by the grouping stay empty.
type GroupKey struct {
	CharacterID string `json:"character_id,omitempty"`
	PlayerID    string `json:"steam_id,omitempty"`
	PlayerName  string `json:"steam_name,omitempty"`
	Role        Role   `json:"role,omitempty"`
}

// AggregateRow holds the rollup of one group of participations.
// NormDPS and NormBossDamage are min-max scaled across all groups of the same result set.
type AggregateRow struct {
	Key            GroupKey `json:"key"`
	Name           string   `json:"name"`
	Count          int      `json:"count"`
	MeanDPS        float64  `json:"mean_dps"`
	MeanBossDamage float64  `json:"mean_boss_damage"`
	NormDPS        float64  `json:"norm_dps"`
	NormBossDamage float64  `json:"norm_boss_damage"`
	Composite      float64  `json:"composite"`
}

// Rankings holds the four leaders of a set of groups. Each is nil when there is no data.
type Rankings struct {
	MostUsed       *AggregateRow `json:"most_used"`
	BestDPS        *AggregateRow `json:"best_dps"`
	BestBossDamage *AggregateRow `json:"best_boss_damage"`
	MostBalanced   *AggregateRow `json:"most_balanced"`
}

// Empty reports whether no ranking could be computed.
func (r Rankings) Empty() bool {
	return r.MostUsed == nil
}

// PlayerRecord is the win/loss tally of one player display name.
type PlayerRecord struct {
	Name   string `json:"steam_name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Total  int    `json:"total"`
}

// WaveCount is the number of defeats recorded at one wave.
type WaveCount struct {
	Wave    int `json:"wave"`
	Defeats int `json:"defeats"`
}

// PlayerWins is the win count of one (id, name) pair.
type PlayerWins struct {
	PlayerID string `json:"steam_id"`
	Name     string `json:"steam_name"`
	Wins     int    `json:"wins"`
}

// OverviewKPIs are the headline numbers of a filtered match set.
type OverviewKPIs struct {
	TotalMatches    int         `json:"total_matches"`
	WaveMostDefeats *WaveCount  `json:"wave_most_defeats"`
	TopWinner       *PlayerWins `json:"top_winner"`
	WinRate         float64     `json:"win_rate"` // percent
}

// MatchFilter selects matches for every aggregated view.
// Version and Difficulty accept Wildcard; Multiplayer accepts TriAny.
type MatchFilter struct {
	Version     string   `json:"version"`
	Multiplayer TriState `json:"multiplayer"`
	Difficulty  string   `json:"difficulty"`
}

// RawFilter narrows the raw matches view.
type RawFilter struct {
	Outcome    Outcome `json:"outcome"`
	PlayerName string  `json:"steam_name"`
	PlayerID   string  `json:"steam_id"`
	Version    string  `json:"version"`
}

// FilterOptions lists the selectable values present in a snapshot.
type FilterOptions struct {
	Versions      []string `json:"versions"`
	Difficulties  []string `json:"difficulties"`
	PlayerNames   []string `json:"steam_names"`
	PlayerIDs     []string `json:"steam_ids"`
	LatestVersion string   `json:"latest_version"`
}
