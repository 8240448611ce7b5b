package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/internal/parquet"
)

// ExecuteHistoryExport writes every recorded refresh run to outputFile + ".refresh_runs.parquet".
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is disabled. Set --history-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no refresh history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total refresh runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve refresh runs: %w", err)
	}

	runsFile := outputFile + ".refresh_runs.parquet"
	rows := parquet.ConvertRefreshRunRecords(runs)
	if err := parquet.WriteRefreshRunsParquet(rows, runsFile); err != nil {
		return fmt.Errorf("failed to write refresh runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d refresh runs to: %s\n", len(rows), runsFile)
	return nil
}
