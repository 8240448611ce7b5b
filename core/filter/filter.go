// Package filter selects matches and participations for the aggregated and raw views.
//
// Every selection is a conjunction of independent predicates. A predicate set to the
// wildcard (or left empty) always passes, so the order in which predicates are applied
// never changes the result.
package filter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shardsquad/shardstats/schema"
)

// Predicate reports whether a match passes one filter criterion.
type Predicate func(schema.MatchRecord) bool

// isWildcard reports whether an exact-match selection is disabled.
func isWildcard(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, schema.Wildcard)
}

// equals builds an exact-match test on a trimmed selection; wildcards match everything.
func equals(sel string) func(string) bool {
	if isWildcard(sel) {
		return func(string) bool { return true }
	}
	sel = strings.TrimSpace(sel)
	return func(v string) bool { return v == sel }
}

// VersionIs matches an exact game version.
func VersionIs(version string) Predicate {
	eq := equals(version)
	return func(m schema.MatchRecord) bool { return eq(m.Version) }
}

// DifficultyIs matches an exact difficulty.
func DifficultyIs(difficulty string) Predicate {
	eq := equals(difficulty)
	return func(m schema.MatchRecord) bool { return eq(m.Difficulty) }
}

// MultiplayerIs matches the multiplayer flag.
func MultiplayerIs(sel schema.TriState) Predicate {
	return func(m schema.MatchRecord) bool {
		switch sel {
		case schema.TriYes:
			return m.Multiplayer
		case schema.TriNo:
			return !m.Multiplayer
		default:
			return true
		}
	}
}

// OutcomeIs matches wins or losses.
func OutcomeIs(sel schema.Outcome) Predicate {
	return func(m schema.MatchRecord) bool {
		switch sel {
		case schema.OutcomeWin:
			return m.Win
		case schema.OutcomeLoss:
			return !m.Win
		default:
			return true
		}
	}
}

// PlayerNameIs matches an exact player display name.
func PlayerNameIs(name string) Predicate {
	eq := equals(name)
	return func(m schema.MatchRecord) bool { return eq(m.PlayerName) }
}

// PlayerIDIs matches an exact player id.
func PlayerIDIs(id string) Predicate {
	eq := equals(id)
	return func(m schema.MatchRecord) bool { return eq(m.PlayerID) }
}

// Where returns the matches passing every predicate, in input order.
func Where(matches []schema.MatchRecord, preds ...Predicate) []schema.MatchRecord {
	out := make([]schema.MatchRecord, 0, len(matches))
	for _, m := range matches {
		if passes(m, preds) {
			out = append(out, m)
		}
	}
	return out
}

func passes(m schema.MatchRecord, preds []Predicate) bool {
	for _, p := range preds {
		if !p(m) {
			return false
		}
	}
	return true
}

// Apply selects matches by version, multiplayer and difficulty.
func Apply(matches []schema.MatchRecord, f schema.MatchFilter) []schema.MatchRecord {
	return Where(matches,
		VersionIs(f.Version),
		MultiplayerIs(f.Multiplayer),
		DifficultyIs(f.Difficulty),
	)
}

// ApplyRaw narrows an already filtered match set for the raw matches view and orders
// the result by id descending.
func ApplyRaw(matches []schema.MatchRecord, f schema.RawFilter) []schema.MatchRecord {
	out := Where(matches,
		OutcomeIs(f.Outcome),
		PlayerNameIs(f.PlayerName),
		PlayerIDIs(f.PlayerID),
		VersionIs(f.Version),
	)
	slices.SortStableFunc(out, func(a, b schema.MatchRecord) int { return cmp.Compare(b.ID, a.ID) })
	return out
}

// RestrictParticipations keeps the participations whose match id is in matches.
// Membership is by id, so the two slices may be in any order.
func RestrictParticipations(rows []schema.CharacterParticipation, matches []schema.MatchRecord) []schema.CharacterParticipation {
	ids := make(map[int64]struct{}, len(matches))
	for _, m := range matches {
		ids[m.ID] = struct{}{}
	}
	out := make([]schema.CharacterParticipation, 0, len(rows))
	for _, p := range rows {
		if _, ok := ids[p.MatchID]; ok {
			out = append(out, p)
		}
	}
	return out
}
