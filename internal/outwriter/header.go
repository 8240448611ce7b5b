package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shardsquad/shardstats/schema"
)

// LogViewHeader prints a concise, 2-line header describing the active filters and the snapshot.
func LogViewHeader(w io.Writer, filter schema.MatchFilter, info schema.SnapshotInfo) {
	_, _ = fmt.Fprintf(w, "🎮 Version: %s | Difficulty: %s | Multiplayer: %s\n",
		orAll(filter.Version), orAll(filter.Difficulty), orAny(filter.Multiplayer))
	_, _ = fmt.Fprintf(w, "🕒 Snapshot: %s matches loaded %s (%s)\n",
		humanize.Comma(int64(info.Matches)), humanize.Time(info.LoadedAt), info.Origin)
	if info.Stale {
		_, _ = fmt.Fprintf(w, "⚠️  Source unavailable, showing data from %s\n", info.LoadedAt.Format(time.DateTime))
	}
}

func orAll(s string) string {
	if s == "" {
		return schema.Wildcard
	}
	return s
}

func orAny(t schema.TriState) string {
	if t == "" {
		return string(schema.TriAny)
	}
	return string(t)
}
