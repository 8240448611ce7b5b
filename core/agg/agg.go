// Package agg has grouping, normalization and ranking logic for normalized match data.
package agg

import (
	"cmp"
	"slices"

	"github.com/shardsquad/shardstats/schema"
)

// normEpsilon is added to the min-max denominator so equal values map near 0 instead of NaN.
const normEpsilon = 1e-5

// meanPrecision is the number of decimals group means are rounded to before normalization.
const meanPrecision = 2

// groupAcc accumulates one group while scanning rows.
type groupAcc struct {
	key     schema.GroupKey
	count   int
	sumDPS  float64
	sumBoss float64
}

// Aggregate groups participations by the given fields and computes count, rounded mean DPS,
// rounded mean boss damage, normalized scores and the composite score for every group.
// Groups are returned in natural order: ascending by key tuple in the order fields are given.
// Normalization is computed across all returned groups. Empty input yields nil.
func Aggregate(rows []schema.CharacterParticipation, fields ...schema.GroupField) []schema.AggregateRow {
	if len(rows) == 0 {
		return nil
	}
	if len(fields) == 0 {
		fields = []schema.GroupField{schema.ByCharacter}
	}

	groups := make(map[schema.GroupKey]*groupAcc)
	for _, p := range rows {
		key := keyOf(p, fields)
		g, ok := groups[key]
		if !ok {
			g = &groupAcc{key: key}
			groups[key] = g
		}
		g.count++
		g.sumDPS += p.DPS
		g.sumBoss += p.DamageBoss
	}

	keys := make([]schema.GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b schema.GroupKey) int {
		return compareKeys(a, b, fields)
	})

	out := make([]schema.AggregateRow, len(keys))
	for i, k := range keys {
		g := groups[k]
		out[i] = schema.AggregateRow{
			Key:            k,
			Name:           displayName(k),
			Count:          g.count,
			MeanDPS:        schema.Round(g.sumDPS/float64(g.count), meanPrecision),
			MeanBossDamage: schema.Round(g.sumBoss/float64(g.count), meanPrecision),
		}
	}
	normalize(out)
	return out
}

// normalize fills the min-max scores and the composite in place.
func normalize(rows []schema.AggregateRow) {
	if len(rows) == 0 {
		return
	}
	minDPS, maxDPS := rows[0].MeanDPS, rows[0].MeanDPS
	minBoss, maxBoss := rows[0].MeanBossDamage, rows[0].MeanBossDamage
	for _, r := range rows[1:] {
		minDPS, maxDPS = min(minDPS, r.MeanDPS), max(maxDPS, r.MeanDPS)
		minBoss, maxBoss = min(minBoss, r.MeanBossDamage), max(maxBoss, r.MeanBossDamage)
	}
	for i := range rows {
		rows[i].NormDPS = (rows[i].MeanDPS - minDPS) / (maxDPS - minDPS + normEpsilon)
		rows[i].NormBossDamage = (rows[i].MeanBossDamage - minBoss) / (maxBoss - minBoss + normEpsilon)
		rows[i].Composite = rows[i].NormDPS + rows[i].NormBossDamage
	}
}

func keyOf(p schema.CharacterParticipation, fields []schema.GroupField) schema.GroupKey {
	var k schema.GroupKey
	for _, f := range fields {
		switch f {
		case schema.ByCharacter:
			k.CharacterID = p.CharacterID
		case schema.ByPlayerID:
			k.PlayerID = p.PlayerID
		case schema.ByPlayerName:
			k.PlayerName = p.PlayerName
		case schema.ByRole:
			k.Role = p.Role()
		}
	}
	return k
}

func compareKeys(a, b schema.GroupKey, fields []schema.GroupField) int {
	for _, f := range fields {
		var c int
		switch f {
		case schema.ByCharacter:
			c = schema.CompareCharacterIDs(a.CharacterID, b.CharacterID)
		case schema.ByPlayerID:
			c = cmp.Compare(a.PlayerID, b.PlayerID)
		case schema.ByPlayerName:
			c = cmp.Compare(a.PlayerName, b.PlayerName)
		case schema.ByRole:
			c = cmp.Compare(a.Role, b.Role)
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func displayName(k schema.GroupKey) string {
	switch {
	case k.CharacterID != "":
		return schema.CharacterName(k.CharacterID)
	case k.PlayerName != "":
		return k.PlayerName
	case k.PlayerID != "":
		return k.PlayerID
	default:
		return string(k.Role)
	}
}
