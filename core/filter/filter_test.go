package filter

import (
	"testing"

	"github.com/shardsquad/shardstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatches() []schema.MatchRecord {
	return []schema.MatchRecord{
		{ID: 1, Version: "v1", Difficulty: "1", Multiplayer: false, Win: true, PlayerName: "alice", PlayerID: "11"},
		{ID: 2, Version: "v1", Difficulty: "1", Multiplayer: false, Win: false, PlayerName: "bob", PlayerID: "22"},
		{ID: 3, Version: "v1", Difficulty: "2", Multiplayer: true, Win: true, PlayerName: "alice", PlayerID: "11"},
		{ID: 4, Version: "v2", Difficulty: "1", Multiplayer: false, Win: true, PlayerName: "carol", PlayerID: "33"},
		{ID: 5, Version: "v2", Difficulty: "3", Multiplayer: true, Win: false, PlayerName: "bob", PlayerID: "22"},
	}
}

func ids(matches []schema.MatchRecord) []int64 {
	out := make([]int64, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		filter   schema.MatchFilter
		expected []int64
	}{
		{"all wildcards", schema.MatchFilter{Version: schema.Wildcard, Multiplayer: schema.TriAny, Difficulty: schema.Wildcard}, []int64{1, 2, 3, 4, 5}},
		{"empty means all", schema.MatchFilter{}, []int64{1, 2, 3, 4, 5}},
		{"version only", schema.MatchFilter{Version: "v2"}, []int64{4, 5}},
		{"difficulty only", schema.MatchFilter{Difficulty: "1"}, []int64{1, 2, 4}},
		{"multiplayer yes", schema.MatchFilter{Multiplayer: schema.TriYes}, []int64{3, 5}},
		{"multiplayer no", schema.MatchFilter{Multiplayer: schema.TriNo}, []int64{1, 2, 4}},
		{"all three", schema.MatchFilter{Version: "v1", Multiplayer: schema.TriNo, Difficulty: "1"}, []int64{1, 2}},
		{"no match", schema.MatchFilter{Version: "v9"}, []int64{}},
		{"wildcard case insensitive", schema.MatchFilter{Version: "ALL", Difficulty: "3"}, []int64{5}},
		{"selections are trimmed", schema.MatchFilter{Version: " v2 ", Difficulty: "1\t"}, []int64{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Apply(sampleMatches(), tt.filter)))
		})
	}
}

func TestPredicateOrderIsIrrelevant(t *testing.T) {
	v, mp, d := VersionIs("v1"), MultiplayerIs(schema.TriNo), DifficultyIs("1")
	orders := [][]Predicate{
		{v, mp, d}, {v, d, mp}, {mp, v, d}, {mp, d, v}, {d, v, mp}, {d, mp, v},
	}
	expected := ids(Where(sampleMatches(), orders[0]...))
	assert.Equal(t, []int64{1, 2}, expected)
	for _, o := range orders[1:] {
		assert.Equal(t, expected, ids(Where(sampleMatches(), o...)))
	}
}

func TestApplyRaw(t *testing.T) {
	tests := []struct {
		name     string
		filter   schema.RawFilter
		expected []int64
	}{
		{"no filters sorts by id desc", schema.RawFilter{Outcome: schema.OutcomeAll}, []int64{5, 4, 3, 2, 1}},
		{"wins", schema.RawFilter{Outcome: schema.OutcomeWin}, []int64{4, 3, 1}},
		{"losses", schema.RawFilter{Outcome: schema.OutcomeLoss}, []int64{5, 2}},
		{"player name", schema.RawFilter{PlayerName: "alice"}, []int64{3, 1}},
		{"player id", schema.RawFilter{PlayerID: "22"}, []int64{5, 2}},
		{"version", schema.RawFilter{Version: "v2", PlayerName: schema.Wildcard}, []int64{5, 4}},
		{"combined", schema.RawFilter{Outcome: schema.OutcomeLoss, PlayerName: "bob", Version: "v1"}, []int64{2}},
		{"padded selections", schema.RawFilter{PlayerName: " alice", PlayerID: "11 ", Version: " v1 "}, []int64{3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(ApplyRaw(sampleMatches(), tt.filter)))
		})
	}
}

func TestRestrictParticipations(t *testing.T) {
	rows := []schema.CharacterParticipation{
		{MatchID: 5, Position: 0},
		{MatchID: 1, Position: 0},
		{MatchID: 3, Position: 1},
		{MatchID: 1, Position: 1},
		{MatchID: 9, Position: 0},
	}
	// matches in a different order than rows
	matches := []schema.MatchRecord{{ID: 3}, {ID: 1}}

	got := RestrictParticipations(rows, matches)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].MatchID)
	assert.Equal(t, int64(3), got[1].MatchID)
	assert.Equal(t, int64(1), got[2].MatchID)

	assert.Empty(t, RestrictParticipations(rows, nil))
}

func TestBuildOptions(t *testing.T) {
	matches := append(sampleMatches(), schema.MatchRecord{ID: 6, Version: "", Difficulty: "1"})
	opts := BuildOptions(matches)

	assert.Equal(t, []string{"v1", "v2"}, opts.Versions)
	assert.Equal(t, []string{"1", "2", "3"}, opts.Difficulties)
	assert.Equal(t, []string{"alice", "bob", "carol"}, opts.PlayerNames)
	assert.Equal(t, []string{"11", "22", "33"}, opts.PlayerIDs)
	assert.Equal(t, "v2", opts.LatestVersion)

	empty := BuildOptions(nil)
	assert.Empty(t, empty.Versions)
	assert.Equal(t, "", empty.LatestVersion)
}

func TestResolveVersion(t *testing.T) {
	opts := schema.FilterOptions{Versions: []string{"0.9", "1.0"}, LatestVersion: "1.0"}
	assert.Equal(t, "1.0", ResolveVersion("latest", opts))
	assert.Equal(t, "1.0", ResolveVersion(" LATEST ", opts))
	assert.Equal(t, "0.9", ResolveVersion("0.9", opts))
	assert.Equal(t, "0.9", ResolveVersion(" 0.9 ", opts))
	assert.Equal(t, schema.Wildcard, ResolveVersion(schema.Wildcard, opts))
	assert.Equal(t, schema.Wildcard, ResolveVersion("latest", schema.FilterOptions{}))

	f := Resolve(schema.MatchFilter{Version: "latest", Difficulty: "1"}, sampleMatches())
	assert.Equal(t, "v2", f.Version)
	assert.Equal(t, "1", f.Difficulty)
}
