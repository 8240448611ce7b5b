// Package core wires the snapshot, filters and aggregates into the views.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/shardsquad/shardstats/core/agg"
	"github.com/shardsquad/shardstats/core/filter"
	"github.com/shardsquad/shardstats/core/snapshot"
	iocharts "github.com/shardsquad/shardstats/internal/charts"
	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/internal/outwriter"
	"github.com/shardsquad/shardstats/schema"
)

// SnapshotLoader returns the current snapshot of normalized facts.
type SnapshotLoader interface {
	Load(ctx context.Context) (*snapshot.Snapshot, error)
}

var _ SnapshotLoader = (*snapshot.Cache)(nil)

// ExecutorFunc defines the function signature for executing the different views.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) error

// ErrNoData is returned when no snapshot could be produced at all.
var ErrNoData = errors.New("no data available")

var writer = outwriter.NewOutWriter()

// selection is the filtered slice of a snapshot a view works on.
type selection struct {
	filter         schema.MatchFilter
	matches        []schema.MatchRecord
	participations []schema.CharacterParticipation
	info           schema.SnapshotInfo
	options        schema.FilterOptions
}

// loadSnapshot loads the snapshot, tolerating a source failure when a stale copy exists.
func loadSnapshot(ctx context.Context, loader SnapshotLoader) (*snapshot.Snapshot, error) {
	snap, err := loader.Load(ctx)
	if err != nil {
		if errors.Is(err, snapshot.ErrSourceFetch) && snap != nil {
			contract.LogWarn("Serving stale snapshot", err)
			return snap, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrNoData, err)
	}
	return snap, nil
}

// headerWriter picks the stream for the view header so it never mixes with CSV or JSON on stdout.
func headerWriter(cfg *contract.Config) io.Writer {
	if cfg.Output == schema.TextOut && cfg.OutputFile == "" {
		return os.Stdout
	}
	return os.Stderr
}

// selectData loads the snapshot and narrows it with the shared filter.
func selectData(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) (selection, error) {
	snap, err := loadSnapshot(ctx, loader)
	if err != nil {
		return selection{}, err
	}

	resolved := filter.Resolve(cfg.Filter, snap.Matches)
	matches := filter.Apply(snap.Matches, resolved)
	sel := selection{
		filter:         resolved,
		matches:        matches,
		participations: filter.RestrictParticipations(snap.Participations, matches),
		options:        filter.BuildOptions(snap.Matches),
		info: schema.SnapshotInfo{
			LoadedAt: snap.LoadedAt,
			Origin:   snap.Origin,
			Stale:    snap.Stale,
			Matches:  len(snap.Matches),
		},
	}

	if !shouldSuppressHeader(ctx) {
		outwriter.LogViewHeader(headerWriter(cfg), resolved, sel.info)
	}
	return sel, nil
}

// GetOverviewResults computes the KPIs and the defeats per wave series.
func GetOverviewResults(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) (schema.OverviewResult, error) {
	sel, err := selectData(ctx, cfg, loader)
	if err != nil {
		return schema.OverviewResult{}, err
	}
	return schema.OverviewResult{
		Filter:        sel.filter,
		KPIs:          agg.Overview(sel.matches),
		DefeatsByWave: agg.DefeatsByWave(sel.matches),
		Snapshot:      sel.info,
	}, nil
}

// GetPlayersResults computes the top players by matches played.
func GetPlayersResults(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) (schema.PlayersResult, error) {
	sel, err := selectData(ctx, cfg, loader)
	if err != nil {
		return schema.PlayersResult{}, err
	}
	return schema.PlayersResult{
		Filter:   sel.filter,
		Players:  agg.PlayerRecords(sel.matches, cfg.ResultLimit),
		Snapshot: sel.info,
	}, nil
}

// GetCharactersResults computes the rankings and detail tables per role among wins.
func GetCharactersResults(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) (schema.CharactersResult, error) {
	sel, err := selectData(ctx, cfg, loader)
	if err != nil {
		return schema.CharactersResult{}, err
	}
	return schema.CharactersResult{
		Filter:   sel.filter,
		Roles:    agg.RoleSummaries(sel.participations, cfg.Role),
		Snapshot: sel.info,
	}, nil
}

// GetMatchesResults lists the filtered matches, newest first as loaded.
// Total counts every match passing the filters; Matches holds at most ResultLimit rows.
// Choices are drawn from the matches passing the match filter, before the raw filters.
func GetMatchesResults(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) (schema.MatchesResult, error) {
	sel, err := selectData(ctx, cfg, loader)
	if err != nil {
		return schema.MatchesResult{}, err
	}

	matches := filter.ApplyRaw(sel.matches, cfg.RawFilter)
	shown := matches
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}
	rows := make([]schema.MatchRow, 0, len(shown))
	for _, m := range shown {
		rows = append(rows, schema.ToMatchRow(m))
	}
	return schema.MatchesResult{
		Filter:    sel.filter,
		RawFilter: cfg.RawFilter,
		Total:     len(matches),
		Matches:   rows,
		Choices:   filter.BuildOptions(sel.matches),
		Snapshot:  sel.info,
	}, nil
}

// GetOptionsResults lists the selectable filter values of the whole snapshot.
func GetOptionsResults(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) (schema.OptionsResult, error) {
	sel, err := selectData(WithSuppressHeader(ctx), cfg, loader)
	if err != nil {
		return schema.OptionsResult{}, err
	}
	return schema.OptionsResult{Options: sel.options, Snapshot: sel.info}, nil
}

// ExecuteOverview runs the overview view and writes its output.
func ExecuteOverview(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) error {
	start := time.Now()
	result, err := GetOverviewResults(ctx, cfg, loader)
	if err != nil {
		return err
	}
	if err := writer.WriteOverview(result, cfg, time.Since(start)); err != nil {
		return err
	}
	return writeCharts(cfg, func() ([]*charts.Bar, error) {
		bar, err := iocharts.DefeatsChart(result.DefeatsByWave)
		return []*charts.Bar{bar}, err
	})
}

// ExecutePlayers runs the players view and writes its output.
func ExecutePlayers(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) error {
	start := time.Now()
	result, err := GetPlayersResults(ctx, cfg, loader)
	if err != nil {
		return err
	}
	if err := writer.WritePlayers(result, cfg, time.Since(start)); err != nil {
		return err
	}
	return writeCharts(cfg, func() ([]*charts.Bar, error) {
		bar, err := iocharts.PlayersChart(result.Players)
		return []*charts.Bar{bar}, err
	})
}

// ExecuteCharacters runs the characters view and writes its output.
func ExecuteCharacters(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) error {
	start := time.Now()
	result, err := GetCharactersResults(ctx, cfg, loader)
	if err != nil {
		return err
	}
	if err := writer.WriteCharacters(result, cfg, time.Since(start)); err != nil {
		return err
	}
	return writeCharts(cfg, func() ([]*charts.Bar, error) {
		var bars []*charts.Bar
		for _, summary := range result.Roles {
			if len(summary.Table) == 0 {
				continue
			}
			bar, err := iocharts.CharacterChart(summary)
			if err != nil {
				return nil, err
			}
			bars = append(bars, bar)
		}
		return bars, nil
	})
}

// ExecuteMatches runs the raw matches view and writes its output.
func ExecuteMatches(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) error {
	start := time.Now()
	result, err := GetMatchesResults(ctx, cfg, loader)
	if err != nil {
		return err
	}
	return writer.WriteMatches(result, cfg, time.Since(start))
}

// ExecuteOptions lists the filter values present in the snapshot.
func ExecuteOptions(ctx context.Context, cfg *contract.Config, loader SnapshotLoader) error {
	result, err := GetOptionsResults(ctx, cfg, loader)
	if err != nil {
		return err
	}
	return writer.WriteOptions(result, cfg)
}

// writeCharts renders the view charts when a chart file is configured.
func writeCharts(cfg *contract.Config, build func() ([]*charts.Bar, error)) error {
	if cfg.ChartFile == "" {
		return nil
	}
	bars, err := build()
	if err != nil {
		return fmt.Errorf("failed to build chart: %w", err)
	}
	if len(bars) == 0 {
		contract.LogWarn("Nothing to chart", errors.New("empty selection"))
		return nil
	}
	if err := iocharts.WriteChartFile(cfg.ChartFile, bars...); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "Wrote chart to %s\n", cfg.ChartFile)
	return nil
}
