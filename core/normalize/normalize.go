// Package normalize turns raw match rows into match records and character participations.
//
// Normalization never fails. Nested list columns that are missing, NULL, invalid JSON
// or not a JSON array are treated as empty lists, and missing numeric fields default to 0.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shardsquad/shardstats/schema"
	"github.com/tidwall/gjson"
)

// startTimeLayouts are tried in order when parsing start_time.
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Normalize converts one raw row into exactly one match record and one participation
// per element of its character damage list.
func Normalize(raw schema.RawMatch) (schema.MatchRecord, []schema.CharacterParticipation) {
	m := schema.MatchRecord{
		ID:           raw.ID,
		Version:      strings.TrimSpace(raw.Version.String),
		PlayerID:     strings.TrimSpace(raw.PlayerID.String),
		PlayerName:   raw.PlayerName.String,
		Win:          raw.Win.Valid && raw.Win.Bool,
		Stage:        raw.Stage.String,
		Difficulty:   strings.TrimSpace(raw.Difficulty.String),
		TotalSeconds: finite(raw.TotalSeconds.Float64),
		Coins:        raw.Coins.Int64,
		CriticalHits: raw.CriticalHits.Int64,
		Multiplayer:  raw.Multiplayer.Valid && raw.Multiplayer.Bool,
		Relics:       stringList(raw.Relics),
		Rewards:      stringList(raw.Rewards),
		StartTime:    ParseStartTime(raw.StartTime.String),
	}
	if raw.Wave.Valid && raw.Wave.Int64 > 0 {
		m.Wave = int(raw.Wave.Int64)
	}

	entries := listElements(raw.CharactersDamageData)
	parts := make([]schema.CharacterParticipation, 0, len(entries))
	m.Composition = make([]string, 0, len(entries))
	for i, e := range entries {
		p := schema.CharacterParticipation{
			MatchID:      m.ID,
			Position:     i,
			CharacterID:  characterID(e),
			IsMain:       i == 0,
			Damage:       number(e, "damage"),
			DamageBoss:   number(e, "damage_boss"),
			DPS:          number(e, "dps"),
			UpgradeCount: listLen(e.Get("upgrade_indexes")),
			PlayerID:     m.PlayerID,
			PlayerName:   m.PlayerName,
			Version:      m.Version,
			Difficulty:   m.Difficulty,
			Multiplayer:  m.Multiplayer,
			Win:          m.Win,
			Wave:         m.Wave,
		}
		parts = append(parts, p)
		m.Composition = append(m.Composition, p.CharacterID)
		m.TotalDamage += p.Damage
	}

	m.CharactersCount = len(parts)
	m.RelicCount = len(m.Relics)
	m.RewardsCount = len(m.Rewards)
	return m, parts
}

// NormalizeAll normalizes a batch of rows, preserving input order.
func NormalizeAll(raws []schema.RawMatch) ([]schema.MatchRecord, []schema.CharacterParticipation) {
	matches := make([]schema.MatchRecord, 0, len(raws))
	var parts []schema.CharacterParticipation
	for _, raw := range raws {
		m, p := Normalize(raw)
		matches = append(matches, m)
		parts = append(parts, p...)
	}
	return matches, parts
}

// ParseStartTime parses a start timestamp. Unparseable input yields the zero time.
func ParseStartTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// listElements returns the elements of a JSON array, or nil for anything else.
// A JSON string holding an encoded array is unwrapped once.
func listElements(data []byte) []gjson.Result {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return nil
	}
	r := gjson.ParseBytes(data)
	if r.Type == gjson.String && gjson.Valid(r.Str) {
		r = gjson.Parse(r.Str)
	}
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

func stringList(data []byte) []string {
	elems := listElements(data)
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.String()
	}
	return out
}

func characterID(e gjson.Result) string {
	if !e.IsObject() {
		return ""
	}
	return strings.TrimSpace(e.Get("character").String())
}

func number(e gjson.Result, key string) float64 {
	if !e.IsObject() {
		return 0
	}
	v := e.Get(key)
	switch v.Type {
	case gjson.Number:
		return finite(v.Num)
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		return finite(f)
	default:
		return 0
	}
}

func listLen(v gjson.Result) int {
	if !v.IsArray() {
		return 0
	}
	return len(v.Array())
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
