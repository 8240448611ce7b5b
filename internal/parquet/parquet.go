// Package parquet exports normalized match data and refresh history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shardsquad/shardstats/schema"
)

// Match is one normalized match.
type Match struct {
	// ID is the match identifier in the source table
	ID int64 `parquet:"id,snappy"`

	Version    string `parquet:"version,snappy"`
	PlayerID   string `parquet:"steam_id,snappy"`
	PlayerName string `parquet:"steam_name,snappy"`
	Win        bool   `parquet:"win,snappy"`
	Wave       int32  `parquet:"wave,snappy"`
	Stage      string `parquet:"stage,snappy"`
	Difficulty string `parquet:"difficulty,snappy"`

	TotalSeconds float64 `parquet:"total_seconds,snappy"`
	Coins        int64   `parquet:"coins,snappy"`
	CriticalHits int64   `parquet:"critical_hit_quantity,snappy"`
	Multiplayer  bool    `parquet:"multiplayer,snappy"`

	// Composition holds character ids in list order; position 0 is the main character
	Composition []string `parquet:"composition,snappy"`
	Relics      []string `parquet:"relics,snappy"`
	Rewards     []string `parquet:"rewards,snappy"`

	// StartTime is nil when the source timestamp could not be parsed
	StartTime *time.Time `parquet:"start_time,optional,snappy"`

	TotalDamage float64 `parquet:"total_damage,snappy"`
}

// Participation is one character's contribution within a match.
type Participation struct {
	MatchID      int64   `parquet:"match_id,snappy"`
	Position     int32   `parquet:"position,snappy"`
	CharacterID  string  `parquet:"character_id,snappy"`
	Character    string  `parquet:"character,snappy"`
	IsMain       bool    `parquet:"is_main,snappy"`
	Damage       float64 `parquet:"damage,snappy"`
	DamageBoss   float64 `parquet:"damage_boss,snappy"`
	DPS          float64 `parquet:"dps,snappy"`
	UpgradeCount int32   `parquet:"upgrade_count,snappy"`
	Win          bool    `parquet:"win,snappy"`
	Version      string  `parquet:"version,snappy"`
	Difficulty   string  `parquet:"difficulty,snappy"`
}

// RefreshRun is one snapshot refresh attempt.
// This struct maps to the shardstats_refresh_runs database table.
type RefreshRun struct {
	RunID          int64     `parquet:"run_id,snappy"`
	StartTime      time.Time `parquet:"start_time,snappy"`
	DurationMs     int64     `parquet:"duration_ms,snappy"`
	Origin         string    `parquet:"origin,snappy"`
	Matches        int32     `parquet:"matches,snappy"`
	Participations int32     `parquet:"participations,snappy"`

	// ErrorMessage is set for failed refreshes
	ErrorMessage *string `parquet:"error_message,optional,snappy"`
}

// writeRows writes rows to a new Parquet file at outputPath.
func writeRows[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		_ = file.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteMatchesParquet writes matches to a Parquet file.
func WriteMatchesParquet(data []Match, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteParticipationsParquet writes participations to a Parquet file.
func WriteParticipationsParquet(data []Participation, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteRefreshRunsParquet writes refresh runs to a Parquet file.
func WriteRefreshRunsParquet(data []RefreshRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertMatches converts normalized matches for Parquet export.
func ConvertMatches(matches []schema.MatchRecord) []Match {
	result := make([]Match, len(matches))
	for i, m := range matches {
		result[i] = Match{
			ID:           m.ID,
			Version:      m.Version,
			PlayerID:     m.PlayerID,
			PlayerName:   m.PlayerName,
			Win:          m.Win,
			Wave:         int32(m.Wave),
			Stage:        m.Stage,
			Difficulty:   m.Difficulty,
			TotalSeconds: m.TotalSeconds,
			Coins:        m.Coins,
			CriticalHits: m.CriticalHits,
			Multiplayer:  m.Multiplayer,
			Composition:  m.Composition,
			Relics:       m.Relics,
			Rewards:      m.Rewards,
			TotalDamage:  m.TotalDamage,
		}
		if m.HasStartTime() {
			st := m.StartTime
			result[i].StartTime = &st
		}
	}
	return result
}

// ConvertParticipations converts participations for Parquet export.
func ConvertParticipations(rows []schema.CharacterParticipation) []Participation {
	result := make([]Participation, len(rows))
	for i, p := range rows {
		result[i] = Participation{
			MatchID:      p.MatchID,
			Position:     int32(p.Position),
			CharacterID:  p.CharacterID,
			Character:    schema.CharacterName(p.CharacterID),
			IsMain:       p.IsMain,
			Damage:       p.Damage,
			DamageBoss:   p.DamageBoss,
			DPS:          p.DPS,
			UpgradeCount: int32(p.UpgradeCount),
			Win:          p.Win,
			Version:      p.Version,
			Difficulty:   p.Difficulty,
		}
	}
	return result
}

// ConvertRefreshRunRecords converts stored refresh runs for Parquet export.
func ConvertRefreshRunRecords(records []schema.RefreshRunRecord) []RefreshRun {
	result := make([]RefreshRun, len(records))
	for i, r := range records {
		result[i] = RefreshRun{
			RunID:          r.RunID,
			StartTime:      r.StartTime,
			DurationMs:     r.DurationMs,
			Origin:         r.Origin,
			Matches:        r.Matches,
			Participations: r.Participations,
			ErrorMessage:   r.ErrorMessage,
		}
	}
	return result
}
