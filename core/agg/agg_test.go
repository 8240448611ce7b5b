package agg

import (
	"math"
	"testing"

	"github.com/shardsquad/shardstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func part(matchID int64, pos int, char string, dps, boss float64, win bool) schema.CharacterParticipation {
	return schema.CharacterParticipation{
		MatchID:     matchID,
		Position:    pos,
		CharacterID: char,
		IsMain:      pos == 0,
		DPS:         dps,
		DamageBoss:  boss,
		Win:         win,
	}
}

func TestAggregateEmpty(t *testing.T) {
	assert.Nil(t, Aggregate(nil))
	assert.Nil(t, Aggregate([]schema.CharacterParticipation{}, schema.ByCharacter))
}

func TestAggregateByCharacter(t *testing.T) {
	rows := []schema.CharacterParticipation{
		part(1, 0, "1", 10, 100, true),
		part(2, 0, "1", 20, 200, true),
		part(3, 0, "0", 5, 50, true),
		part(3, 1, "10", 1.005, 0, true),
	}

	groups := Aggregate(rows, schema.ByCharacter)
	require.Len(t, groups, 3)

	// natural order is ascending by numeric id
	assert.Equal(t, "0", groups[0].Key.CharacterID)
	assert.Equal(t, "1", groups[1].Key.CharacterID)
	assert.Equal(t, "10", groups[2].Key.CharacterID)

	assert.Equal(t, "Braut", groups[1].Name)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, 15.0, groups[1].MeanDPS)
	assert.Equal(t, 150.0, groups[1].MeanBossDamage)
	assert.InDelta(t, 1.0, groups[2].MeanDPS, 0.011)
}

func TestAggregateNormalization(t *testing.T) {
	rows := []schema.CharacterParticipation{
		part(1, 0, "0", 10, 30, true),
		part(2, 0, "1", 20, 10, true),
		part(3, 0, "2", 30, 20, true),
	}

	groups := Aggregate(rows, schema.ByCharacter)
	require.Len(t, groups, 3)

	assert.Equal(t, 0.0, groups[0].NormDPS)
	assert.InDelta(t, 1.0, groups[2].NormDPS, 1e-6)
	assert.Less(t, groups[2].NormDPS, 1.0)
	assert.InDelta(t, 0.5, groups[1].NormDPS, 1e-6)

	assert.Equal(t, 0.0, groups[1].NormBossDamage)
	assert.InDelta(t, 1.0, groups[0].NormBossDamage, 1e-6)

	for _, g := range groups {
		assert.InDelta(t, g.NormDPS+g.NormBossDamage, g.Composite, 1e-12)
		assert.GreaterOrEqual(t, g.Composite, 0.0)
		assert.LessOrEqual(t, g.Composite, 2.0)
	}
}

func TestAggregateEqualValuesStayFinite(t *testing.T) {
	rows := []schema.CharacterParticipation{
		part(1, 0, "0", 7, 7, true),
		part(2, 0, "1", 7, 7, true),
		part(3, 0, "2", 7, 7, true),
	}

	for _, g := range Aggregate(rows, schema.ByCharacter) {
		assert.False(t, math.IsNaN(g.NormDPS))
		assert.False(t, math.IsInf(g.NormDPS, 0))
		assert.InDelta(t, 0.0, g.NormDPS, 1e-9)
		assert.InDelta(t, 0.0, g.Composite, 1e-9)
	}
}

func TestAggregateSingleGroup(t *testing.T) {
	groups := Aggregate([]schema.CharacterParticipation{part(1, 0, "4", 12, 3, true)})
	require.Len(t, groups, 1)
	assert.Equal(t, "Kiara", groups[0].Name)
	assert.Equal(t, 0.0, groups[0].NormDPS)
	assert.Equal(t, 0.0, groups[0].Composite)
}

func TestAggregateRoundsMeans(t *testing.T) {
	rows := []schema.CharacterParticipation{
		part(1, 0, "0", 1, 0, true),
		part(2, 0, "0", 2, 0, true),
		part(3, 0, "0", 2, 0, true),
	}
	groups := Aggregate(rows)
	require.Len(t, groups, 1)
	assert.Equal(t, 1.67, groups[0].MeanDPS)
}

func TestAggregateMultipleKeys(t *testing.T) {
	rows := []schema.CharacterParticipation{
		part(1, 0, "0", 10, 0, true),
		part(1, 1, "0", 20, 0, true),
		part(2, 0, "0", 30, 0, true),
		part(2, 1, "1", 40, 0, false),
	}
	rows[0].PlayerName = "bob"
	rows[1].PlayerName = "bob"
	rows[2].PlayerName = "amy"
	rows[3].PlayerName = "amy"

	groups := Aggregate(rows, schema.ByPlayerName, schema.ByRole)
	require.Len(t, groups, 4)
	assert.Equal(t, schema.GroupKey{PlayerName: "amy", Role: schema.RoleMain}, groups[0].Key)
	assert.Equal(t, schema.GroupKey{PlayerName: "amy", Role: schema.RoleSecondary}, groups[1].Key)
	assert.Equal(t, schema.GroupKey{PlayerName: "bob", Role: schema.RoleMain}, groups[2].Key)
	assert.Equal(t, "bob", groups[3].Name)
}
