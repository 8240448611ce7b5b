package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/internal/parquet"
)

// DefaultExportPrefix is used when no output file is configured for export.
const DefaultExportPrefix = "shardstats"

// ExportPaths returns the Parquet files written for the given prefix.
func ExportPaths(prefix string) (matches, participations string) {
	prefix = strings.TrimSuffix(prefix, ".parquet")
	if prefix == "" {
		prefix = DefaultExportPrefix
	}
	return prefix + ".matches.parquet", prefix + ".participations.parquet"
}

// ExecuteExport writes the filtered normalized facts as two Parquet files.
func ExecuteExport(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) error {
	sel, err := selectData(WithSuppressHeader(ctx), cfg, loader)
	if err != nil {
		return err
	}

	matchesPath, partsPath := ExportPaths(cfg.OutputFile)
	if err := parquet.WriteMatchesParquet(parquet.ConvertMatches(sel.matches), matchesPath); err != nil {
		return fmt.Errorf("failed to export matches: %w", err)
	}
	if err := parquet.WriteParticipationsParquet(parquet.ConvertParticipations(sel.participations), partsPath); err != nil {
		return fmt.Errorf("failed to export participations: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Exported %d matches to %s and %d participations to %s\n",
		len(sel.matches), matchesPath, len(sel.participations), partsPath)
	return nil
}
