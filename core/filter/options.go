package filter

import (
	"slices"
	"strings"

	"github.com/shardsquad/shardstats/schema"
)

// BuildOptions collects the sorted distinct versions, difficulties, player names and
// player ids present in matches. Empty values are skipped.
func BuildOptions(matches []schema.MatchRecord) schema.FilterOptions {
	var versions, diffs, names, ids []string
	for _, m := range matches {
		versions = appendNonEmpty(versions, m.Version)
		diffs = appendNonEmpty(diffs, m.Difficulty)
		names = appendNonEmpty(names, m.PlayerName)
		ids = appendNonEmpty(ids, m.PlayerID)
	}
	opts := schema.FilterOptions{
		Versions:     sortedUnique(versions),
		Difficulties: sortedUnique(diffs),
		PlayerNames:  sortedUnique(names),
		PlayerIDs:    sortedUnique(ids),
	}
	if n := len(opts.Versions); n > 0 {
		opts.LatestVersion = opts.Versions[n-1]
	}
	return opts
}

// ResolveVersion turns the "latest" selection into the most recent version in opts.
// With no versions available it falls back to the wildcard. Other selections are returned trimmed.
func ResolveVersion(selection string, opts schema.FilterOptions) string {
	selection = strings.TrimSpace(selection)
	if !strings.EqualFold(selection, schema.LatestVersion) {
		return selection
	}
	if opts.LatestVersion == "" {
		return schema.Wildcard
	}
	return opts.LatestVersion
}

// Resolve returns a copy of f with its version selection resolved against matches.
func Resolve(f schema.MatchFilter, matches []schema.MatchRecord) schema.MatchFilter {
	f.Version = ResolveVersion(f.Version, BuildOptions(matches))
	return f
}

func appendNonEmpty(list []string, v string) []string {
	if strings.TrimSpace(v) == "" {
		return list
	}
	return append(list, v)
}

func sortedUnique(list []string) []string {
	slices.Sort(list)
	return slices.Compact(list)
}
