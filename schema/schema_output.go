package schema

import "time"

// SnapshotInfo describes the dataset a result was computed from.
type SnapshotInfo struct {
	LoadedAt time.Time `json:"loaded_at"`
	Origin   string    `json:"origin"`
	Stale    bool      `json:"stale"`
	Matches  int       `json:"matches"`
}

// OverviewResult is the output of the overview view.
type OverviewResult struct {
	Filter        MatchFilter  `json:"filter"`
	KPIs          OverviewKPIs `json:"kpis"`
	DefeatsByWave []WaveCount  `json:"defeats_by_wave"`
	Snapshot      SnapshotInfo `json:"snapshot"`
}

// PlayersResult is the output of the players view.
type PlayersResult struct {
	Filter   MatchFilter    `json:"filter"`
	Players  []PlayerRecord `json:"players"`
	Snapshot SnapshotInfo   `json:"snapshot"`
}

// RoleSummary is the rankings and detail table of one character role among wins.
type RoleSummary struct {
	Role     Role           `json:"role"`
	Rankings Rankings       `json:"rankings"`
	Table    []AggregateRow `json:"table"`
}

// CharactersResult is the output of the characters view.
type CharactersResult struct {
	Filter   MatchFilter   `json:"filter"`
	Roles    []RoleSummary `json:"roles"`
	Snapshot SnapshotInfo  `json:"snapshot"`
}

// MatchRow is one line of the raw matches view.
type MatchRow struct {
	ID           int64   `json:"id"`
	PlayerID     string  `json:"steam_id"`
	PlayerName   string  `json:"steam_name"`
	TotalSeconds float64 `json:"total_seconds"`
	Version      string  `json:"version"`
	Win          bool    `json:"win"`
	Wave         int     `json:"wave"`
	Difficulty   string  `json:"difficulty"`
	Multiplayer  bool    `json:"multiplayer"`
	Composition  string  `json:"composition"`
	Relics       string  `json:"relics"`
	Rewards      string  `json:"rewards"`
	TotalDamage  float64 `json:"total_damage"`
}

// MatchesResult is the output of the raw matches view.
type MatchesResult struct {
	Filter    MatchFilter   `json:"filter"`
	RawFilter RawFilter     `json:"raw_filter"`
	Total     int           `json:"total"`
	Matches   []MatchRow    `json:"matches"`
	Choices   FilterOptions `json:"choices"` // raw filter values present after the match filter
	Snapshot  SnapshotInfo  `json:"snapshot"`
}

// OptionsResult is the output of the options view.
type OptionsResult struct {
	Options  FilterOptions `json:"options"`
	Snapshot SnapshotInfo  `json:"snapshot"`
}
