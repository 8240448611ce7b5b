package schema

import (
	"math"
	"strings"
)

// JoinOrMark joins a list with ", " and renders EmptyMark for an empty list.
func JoinOrMark(items []string) string {
	if len(items) == 0 {
		return EmptyMark
	}
	return strings.Join(items, ", ")
}

// FormatComposition renders character ids as display names in list order.
func FormatComposition(ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = CharacterName(id)
	}
	return JoinOrMark(names)
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// ToMatchRow projects a match into the raw matches view.
func ToMatchRow(m MatchRecord) MatchRow {
	return MatchRow{
		ID:           m.ID,
		PlayerID:     m.PlayerID,
		PlayerName:   m.PlayerName,
		TotalSeconds: m.TotalSeconds,
		Version:      m.Version,
		Win:          m.Win,
		Wave:         m.Wave,
		Difficulty:   m.Difficulty,
		Multiplayer:  m.Multiplayer,
		Composition:  FormatComposition(m.Composition),
		Relics:       JoinOrMark(m.Relics),
		Rewards:      JoinOrMark(m.Rewards),
		TotalDamage:  m.TotalDamage,
	}
}
