package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
)

// WriteOptionResults lists the filter values present in the snapshot.
func WriteOptionResults(result schema.OptionsResult, cfg *contract.Config) error {
	opts := result.Options

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, opts)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForOptions(w, opts)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOptionList(w, opts)
		}, "Wrote options")
	}
	return nil
}

func writeOptionList(w io.Writer, opts schema.FilterOptions) error {
	latest := opts.LatestVersion
	if latest == "" {
		latest = schema.EmptyMark
	}
	sections := []struct {
		title  string
		values []string
	}{
		{"🏷️  Versions", opts.Versions},
		{"⚔️  Difficulties", opts.Difficulties},
		{"👤 Players", opts.PlayerNames},
		{"🆔 Player IDs", opts.PlayerIDs},
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "%s (%d): %s\n", s.title, len(s.values), strings.Join(append([]string{schema.Wildcard}, s.values...), ", ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Latest version: %s\n", latest)
	return err
}

func writeCSVResultsForOptions(w io.Writer, opts schema.FilterOptions) error {
	return writeCSVWithHeader(w, []string{"field", "value"}, func(cw *csv.Writer) error {
		fields := []struct {
			name   string
			values []string
		}{
			{"version", opts.Versions},
			{"difficulty", opts.Difficulties},
			{"steam_name", opts.PlayerNames},
			{"steam_id", opts.PlayerIDs},
		}
		for _, f := range fields {
			for _, v := range f.values {
				if err := cw.Write([]string{f.name, v}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
