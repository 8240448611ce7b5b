package agg

import (
	"slices"

	"github.com/shardsquad/shardstats/schema"
)

// Rank picks the four leaders among already aggregated groups.
// Ties go to the first group in the given order. Empty input yields empty rankings.
func Rank(groups []schema.AggregateRow) schema.Rankings {
	if len(groups) == 0 {
		return schema.Rankings{}
	}
	return schema.Rankings{
		MostUsed:       argMax(groups, func(r schema.AggregateRow) float64 { return float64(r.Count) }),
		BestDPS:        argMax(groups, func(r schema.AggregateRow) float64 { return r.MeanDPS }),
		BestBossDamage: argMax(groups, func(r schema.AggregateRow) float64 { return r.MeanBossDamage }),
		MostBalanced:   argMax(groups, func(r schema.AggregateRow) float64 { return r.Composite }),
	}
}

// ComputeRankings restricts rows to winning matches, groups them by character and ranks the groups.
func ComputeRankings(rows []schema.CharacterParticipation) schema.Rankings {
	return Rank(Aggregate(Wins(rows), schema.ByCharacter))
}

// RoleRankings computes rankings for main and secondary characters separately.
// Each role is normalized within its own set of groups.
func RoleRankings(rows []schema.CharacterParticipation) (mains, secondaries schema.Rankings) {
	m, s := SplitByRole(Wins(rows))
	return ComputeRankings(m), ComputeRankings(s)
}

// CharacterTable returns the per-character rollup of winning rows in the given role,
// sorted by mean DPS descending. RoleAll keeps every row.
func CharacterTable(rows []schema.CharacterParticipation, role schema.Role) []schema.AggregateRow {
	groups := Aggregate(roleRows(Wins(rows), role), schema.ByCharacter)
	slices.SortStableFunc(groups, func(a, b schema.AggregateRow) int {
		switch {
		case a.MeanDPS > b.MeanDPS:
			return -1
		case a.MeanDPS < b.MeanDPS:
			return 1
		default:
			return 0
		}
	})
	return groups
}

// RoleSummaries builds the rankings and detail table for the requested role.
// RoleAll yields a summary for main followed by one for secondary.
func RoleSummaries(rows []schema.CharacterParticipation, role schema.Role) []schema.RoleSummary {
	roles := []schema.Role{role}
	if role == schema.RoleAll || role == "" {
		roles = []schema.Role{schema.RoleMain, schema.RoleSecondary}
	}
	out := make([]schema.RoleSummary, 0, len(roles))
	for _, r := range roles {
		table := CharacterTable(rows, r)
		out = append(out, schema.RoleSummary{
			Role:     r,
			Rankings: Rank(naturalOrder(table)),
			Table:    table,
		})
	}
	return out
}

// Wins keeps participations from winning matches.
func Wins(rows []schema.CharacterParticipation) []schema.CharacterParticipation {
	var out []schema.CharacterParticipation
	for _, p := range rows {
		if p.Win {
			out = append(out, p)
		}
	}
	return out
}

// SplitByRole partitions rows into main and secondary participations.
func SplitByRole(rows []schema.CharacterParticipation) (mains, secondaries []schema.CharacterParticipation) {
	for _, p := range rows {
		if p.IsMain {
			mains = append(mains, p)
		} else {
			secondaries = append(secondaries, p)
		}
	}
	return mains, secondaries
}

func roleRows(rows []schema.CharacterParticipation, role schema.Role) []schema.CharacterParticipation {
	m, s := SplitByRole(rows)
	switch role {
	case schema.RoleMain:
		return m
	case schema.RoleSecondary:
		return s
	default:
		return rows
	}
}

// naturalOrder returns a copy of groups sorted back into key order so ties rank the same
// way regardless of how the table was sorted for display.
func naturalOrder(groups []schema.AggregateRow) []schema.AggregateRow {
	out := slices.Clone(groups)
	slices.SortFunc(out, func(a, b schema.AggregateRow) int {
		return compareKeys(a.Key, b.Key, []schema.GroupField{schema.ByCharacter})
	})
	return out
}

func argMax(groups []schema.AggregateRow, metric func(schema.AggregateRow) float64) *schema.AggregateRow {
	best := 0
	for i := 1; i < len(groups); i++ {
		if metric(groups[i]) > metric(groups[best]) {
			best = i
		}
	}
	r := groups[best]
	return &r
}
