package agg

import (
	"cmp"
	"slices"

	"github.com/shardsquad/shardstats/schema"
)

// DefaultPlayerLimit is the number of players shown by the players view.
const DefaultPlayerLimit = 15

// PlayerRecords tallies wins and losses per player display name and returns the top limit
// names by total matches. Names are first ordered alphabetically, so ties on total keep that order.
// Distinct player ids sharing a display name are merged into one record.
func PlayerRecords(matches []schema.MatchRecord, limit int) []schema.PlayerRecord {
	if len(matches) == 0 {
		return nil
	}
	byName := make(map[string]*schema.PlayerRecord)
	for _, m := range matches {
		rec, ok := byName[m.PlayerName]
		if !ok {
			rec = &schema.PlayerRecord{Name: m.PlayerName}
			byName[m.PlayerName] = rec
		}
		if m.Win {
			rec.Wins++
		} else {
			rec.Losses++
		}
		rec.Total++
	}

	out := make([]schema.PlayerRecord, 0, len(byName))
	for _, rec := range byName {
		out = append(out, *rec)
	}
	slices.SortFunc(out, func(a, b schema.PlayerRecord) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortStableFunc(out, func(a, b schema.PlayerRecord) int { return cmp.Compare(b.Total, a.Total) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DefeatsByWave counts lost matches per wave, ascending by wave.
func DefeatsByWave(matches []schema.MatchRecord) []schema.WaveCount {
	counts := make(map[int]int)
	for _, m := range matches {
		if !m.Win {
			counts[m.Wave]++
		}
	}
	out := make([]schema.WaveCount, 0, len(counts))
	for wave, n := range counts {
		out = append(out, schema.WaveCount{Wave: wave, Defeats: n})
	}
	slices.SortFunc(out, func(a, b schema.WaveCount) int { return cmp.Compare(a.Wave, b.Wave) })
	return out
}

// WinRate returns the share of won matches as a percentage, or 0 for no matches.
func WinRate(matches []schema.MatchRecord) float64 {
	if len(matches) == 0 {
		return 0
	}
	wins := 0
	for _, m := range matches {
		if m.Win {
			wins++
		}
	}
	return float64(wins) / float64(len(matches)) * 100
}

// TopWinner returns the (player id, name) pair with the most wins, or nil when nobody won.
// Ties go to the first pair in ascending (id, name) order.
func TopWinner(matches []schema.MatchRecord) *schema.PlayerWins {
	type pair struct{ id, name string }
	wins := make(map[pair]int)
	for _, m := range matches {
		if m.Win {
			wins[pair{m.PlayerID, m.PlayerName}]++
		}
	}
	if len(wins) == 0 {
		return nil
	}
	pairs := make([]pair, 0, len(wins))
	for p := range wins {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if c := cmp.Compare(a.id, b.id); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	best := pairs[0]
	for _, p := range pairs[1:] {
		if wins[p] > wins[best] {
			best = p
		}
	}
	return &schema.PlayerWins{PlayerID: best.id, Name: best.name, Wins: wins[best]}
}

// Overview computes the headline KPIs of a match set.
// The wave with most defeats is nil when there are no losses; ties go to the lowest wave.
func Overview(matches []schema.MatchRecord) schema.OverviewKPIs {
	kpis := schema.OverviewKPIs{
		TotalMatches: len(matches),
		TopWinner:    TopWinner(matches),
		WinRate:      WinRate(matches),
	}
	for _, wc := range DefeatsByWave(matches) {
		if kpis.WaveMostDefeats == nil || wc.Defeats > kpis.WaveMostDefeats.Defeats {
			w := wc
			kpis.WaveMostDefeats = &w
		}
	}
	return kpis
}
