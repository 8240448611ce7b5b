package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// render writes through the given writer into a temp file and returns its content.
func render(t *testing.T, output schema.OutputMode, write func(cfg *contract.Config) error) string {
	t.Helper()
	cfg := &contract.Config{
		Output:       output,
		OutputFile:   filepath.Join(t.TempDir(), "out"),
		Precision:    2,
		Width:        120,
		CacheBackend: schema.SQLiteBackend,
	}
	require.NoError(t, write(cfg))
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(content)
}

func sampleOverview() schema.OverviewResult {
	return schema.OverviewResult{
		KPIs: schema.OverviewKPIs{
			TotalMatches:    3,
			WaveMostDefeats: &schema.WaveCount{Wave: 4, Defeats: 1},
			TopWinner:       &schema.PlayerWins{PlayerID: "765", Name: "Ana", Wins: 1},
			WinRate:         66.6667,
		},
		DefeatsByWave: []schema.WaveCount{{Wave: 4, Defeats: 1}},
	}
}

func TestWriteOverviewResults(t *testing.T) {
	ow := NewOutWriter()

	t.Run("text", func(t *testing.T) {
		out := render(t, schema.TextOut, func(cfg *contract.Config) error {
			return ow.WriteOverview(sampleOverview(), cfg, time.Millisecond)
		})
		assert.Contains(t, out, "66.67%")
		assert.Contains(t, out, "Strong")
		assert.Contains(t, out, "4 (1 defeats)")
		assert.Contains(t, out, "Ana (1 wins)")
		assert.Contains(t, out, "Cache backend: sqlite")
	})

	t.Run("text empty", func(t *testing.T) {
		out := render(t, schema.TextOut, func(cfg *contract.Config) error {
			return ow.WriteOverview(schema.OverviewResult{}, cfg, time.Millisecond)
		})
		assert.Contains(t, out, "No defeats.")
		assert.Contains(t, out, "No winners.")
	})

	t.Run("csv", func(t *testing.T) {
		out := render(t, schema.CSVOut, func(cfg *contract.Config) error {
			return ow.WriteOverview(sampleOverview(), cfg, time.Millisecond)
		})
		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.Equal(t, "metric,value", lines[0])
		assert.Contains(t, lines, "total_matches,3")
		assert.Contains(t, lines, "win_rate,66.67")
		assert.Contains(t, lines, "top_winner,Ana")
		assert.Contains(t, lines, "defeats_wave_4,1")
	})

	t.Run("json", func(t *testing.T) {
		out := render(t, schema.JSONOut, func(cfg *contract.Config) error {
			return ow.WriteOverview(sampleOverview(), cfg, time.Millisecond)
		})
		var decoded schema.OverviewResult
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, 3, decoded.KPIs.TotalMatches)
		assert.Equal(t, "Ana", decoded.KPIs.TopWinner.Name)
	})
}

func TestWritePlayerResults(t *testing.T) {
	ow := NewOutWriter()
	result := schema.PlayersResult{Players: []schema.PlayerRecord{
		{Name: "Ana", Wins: 3, Losses: 1, Total: 4},
		{Name: "Bo", Wins: 0, Losses: 2, Total: 2},
	}}

	t.Run("text", func(t *testing.T) {
		out := render(t, schema.TextOut, func(cfg *contract.Config) error {
			return ow.WritePlayers(result, cfg, time.Millisecond)
		})
		assert.Contains(t, out, "Ana")
		assert.Contains(t, out, "75.00%")
		assert.Contains(t, out, "Showing top 2 players")
	})

	t.Run("text empty", func(t *testing.T) {
		out := render(t, schema.TextOut, func(cfg *contract.Config) error {
			return ow.WritePlayers(schema.PlayersResult{}, cfg, time.Millisecond)
		})
		assert.Contains(t, out, "No player data.")
	})

	t.Run("csv", func(t *testing.T) {
		out := render(t, schema.CSVOut, func(cfg *contract.Config) error {
			return ow.WritePlayers(result, cfg, time.Millisecond)
		})
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "rank,steam_name,wins,losses,total,win_rate,label", lines[0])
		assert.Equal(t, "1,Ana,3,1,4,75.00,Strong", lines[1])
		assert.Equal(t, "2,Bo,0,2,2,0.00,Weak", lines[2])
	})

	t.Run("json", func(t *testing.T) {
		out := render(t, schema.JSONOut, func(cfg *contract.Config) error {
			return ow.WritePlayers(result, cfg, time.Millisecond)
		})
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, float64(1), decoded[0]["rank"])
		assert.Equal(t, float64(75), decoded[0]["win_rate"])
		assert.Equal(t, "Ana", decoded[0]["steam_name"])
	})
}

func sampleCharacters() schema.CharactersResult {
	sid := schema.AggregateRow{
		Key: schema.GroupKey{CharacterID: "0"}, Name: "Sid", Count: 2,
		MeanDPS: 12.5, MeanBossDamage: 40, NormDPS: 1, NormBossDamage: 0.5, Composite: 1.5,
	}
	return schema.CharactersResult{Roles: []schema.RoleSummary{
		{
			Role:     schema.RoleMain,
			Rankings: schema.Rankings{MostUsed: &sid, BestDPS: &sid, BestBossDamage: &sid, MostBalanced: &sid},
			Table:    []schema.AggregateRow{sid},
		},
		{Role: schema.RoleSecondary},
	}}
}

func TestWriteCharacterResults(t *testing.T) {
	ow := NewOutWriter()

	t.Run("text", func(t *testing.T) {
		out := render(t, schema.TextOut, func(cfg *contract.Config) error {
			return ow.WriteCharacters(sampleCharacters(), cfg, time.Millisecond)
		})
		assert.Contains(t, out, "Main characters")
		assert.Contains(t, out, "Sid")
		assert.Contains(t, out, "12.50")
		assert.Contains(t, out, "No winning matches for secondary characters.")
	})

	t.Run("csv", func(t *testing.T) {
		out := render(t, schema.CSVOut, func(cfg *contract.Config) error {
			return ow.WriteCharacters(sampleCharacters(), cfg, time.Millisecond)
		})
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "main,1,0,Sid,2,12.50,40.00,1.00,0.50,1.50", lines[1])
	})

	t.Run("json", func(t *testing.T) {
		out := render(t, schema.JSONOut, func(cfg *contract.Config) error {
			return ow.WriteCharacters(sampleCharacters(), cfg, time.Millisecond)
		})
		var decoded []schema.RoleSummary
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "Sid", decoded[0].Rankings.MostUsed.Name)
		assert.Nil(t, decoded[1].Rankings.MostUsed)
	})
}

func TestWriteMatchResults(t *testing.T) {
	ow := NewOutWriter()
	result := schema.MatchesResult{
		Total: 5,
		Matches: []schema.MatchRow{{
			ID: 3, PlayerID: "765", PlayerName: "Ana", Version: "1.0.1", Win: true, Wave: 10,
			Difficulty: "1", Composition: "Sid, Braut", Relics: "r1", Rewards: schema.EmptyMark, TotalDamage: 150,
		}},
	}

	t.Run("text", func(t *testing.T) {
		out := render(t, schema.TextOut, func(cfg *contract.Config) error {
			return ow.WriteMatches(result, cfg, time.Millisecond)
		})
		assert.Contains(t, out, "Sid, Braut")
		assert.Contains(t, out, "Win")
		assert.Contains(t, out, "Showing 1 of 5 matches")
	})

	t.Run("text empty", func(t *testing.T) {
		out := render(t, schema.TextOut, func(cfg *contract.Config) error {
			return ow.WriteMatches(schema.MatchesResult{}, cfg, time.Millisecond)
		})
		assert.Contains(t, out, "No matches for the selected filters.")
	})

	t.Run("csv", func(t *testing.T) {
		out := render(t, schema.CSVOut, func(cfg *contract.Config) error {
			return ow.WriteMatches(result, cfg, time.Millisecond)
		})
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, `3,765,Ana,0.00,1.0.1,true,10,1,false,"Sid, Braut",r1,–,150.00`, lines[1])
	})
}

func TestWriteOptionResults(t *testing.T) {
	ow := NewOutWriter()
	result := schema.OptionsResult{Options: schema.FilterOptions{
		Versions:      []string{"1.0.0", "1.0.1"},
		Difficulties:  []string{"1", "2"},
		PlayerNames:   []string{"Ana"},
		PlayerIDs:     []string{"765"},
		LatestVersion: "1.0.1",
	}}

	out := render(t, schema.TextOut, func(cfg *contract.Config) error {
		return ow.WriteOptions(result, cfg)
	})
	assert.Contains(t, out, "Versions (2): all, 1.0.0, 1.0.1")
	assert.Contains(t, out, "Latest version: 1.0.1")

	out = render(t, schema.CSVOut, func(cfg *contract.Config) error {
		return ow.WriteOptions(result, cfg)
	})
	assert.Contains(t, out, "version,1.0.1\n")
	assert.Contains(t, out, "steam_id,765\n")
}

func TestLogViewHeader(t *testing.T) {
	var buf bytes.Buffer
	LogViewHeader(&buf, schema.MatchFilter{Version: "1.0.1", Multiplayer: schema.TriNo}, schema.SnapshotInfo{
		LoadedAt: time.Now(), Origin: "source", Matches: 1200,
	})
	out := buf.String()
	assert.Contains(t, out, "Version: 1.0.1 | Difficulty: all | Multiplayer: no")
	assert.Contains(t, out, "1,200 matches")
	assert.NotContains(t, out, "Source unavailable")

	buf.Reset()
	LogViewHeader(&buf, schema.MatchFilter{}, schema.SnapshotInfo{LoadedAt: time.Now(), Origin: "store", Stale: true})
	assert.Contains(t, buf.String(), "Multiplayer: any")
	assert.Contains(t, buf.String(), "Source unavailable")
}
