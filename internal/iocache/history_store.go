package iocache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
)

// historyTable is created by the embedded migrations.
const historyTable = "shardstats_refresh_runs"

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history store and brings its schema to the latest version.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := runMigrations(db, backend, -1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare history tables: %w", err)
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// formatTime returns the value bound for a timestamp column.
// SQLite stores RFC3339 text; the other backends take native times.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

// parseDBTime converts a scanned timestamp column into a time.
func parseDBTime(v any) (time.Time, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv, nil
	case []byte:
		return parseTimeText(string(tv))
	case string:
		return parseTimeText(tv)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// RecordRun stores one refresh attempt and returns its id.
func (hs *HistoryStoreImpl) RecordRun(run schema.RefreshRun) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	var errMsg sql.NullString
	if run.Err != nil {
		errMsg = sql.NullString{String: run.Err.Error(), Valid: true}
	}
	args := []any{
		formatTime(run.StartTime, hs.backend),
		run.Duration.Milliseconds(),
		run.Origin,
		run.Matches,
		run.Participations,
		errMsg,
	}

	binds := make([]string, len(args))
	for i := range args {
		binds[i] = contract.Placeholder(hs.backend, i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (start_time, duration_ms, origin, matches, participations, error_message) VALUES (%s)`,
		contract.QuoteTableName(historyTable, hs.backend), strings.Join(binds, ", "))

	var runID int64
	if hs.backend == schema.PostgreSQLBackend {
		if err := hs.db.QueryRow(query+" RETURNING run_id", args...).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to insert refresh run: %w", err)
		}
		return runID, nil
	}

	result, err := hs.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert refresh run: %w", err)
	}
	if runID, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("failed to read refresh run id: %w", err)
	}
	return runID, nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(hs.backend),
		Connected: hs.db != nil,
	}
	if hs.db == nil {
		return status, nil
	}

	quoted := contract.QuoteTableName(historyTable, hs.backend)
	row := hs.db.QueryRow(fmt.Sprintf(
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN error_message IS NULL THEN 0 ELSE 1 END), 0), COALESCE(SUM(matches), 0) FROM %s", quoted))
	if err := row.Scan(&status.TotalRuns, &status.FailedRuns, &status.TotalMatches); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	if status.TotalRuns == 0 {
		return status, nil
	}

	var last any
	row = hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoted))
	if err := row.Scan(&status.LastRunID, &last); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	lastTime, err := parseDBTime(last)
	if err != nil {
		return status, fmt.Errorf("failed to parse last run time: %w", err)
	}
	status.LastRunTime = lastTime

	var oldest any
	row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quoted))
	if err := row.Scan(&oldest); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	oldestTime, err := parseDBTime(oldest)
	if err != nil {
		return status, fmt.Errorf("failed to parse oldest run time: %w", err)
	}
	status.OldestRunTime = oldestTime

	return status, nil
}

// GetAllRuns retrieves all refresh runs, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RefreshRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, duration_ms, origin, matches, participations, error_message FROM %s ORDER BY run_id",
		contract.QuoteTableName(historyTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RefreshRunRecord
	for rows.Next() {
		var (
			rec     schema.RefreshRunRecord
			start   any
			errText sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &start, &rec.DurationMs, &rec.Origin, &rec.Matches, &rec.Participations, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan refresh run: %w", err)
		}
		if rec.StartTime, err = parseDBTime(start); err != nil {
			return nil, fmt.Errorf("failed to parse start time of run %d: %w", rec.RunID, err)
		}
		if errText.Valid {
			msg := errText.String
			rec.ErrorMessage = &msg
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh runs: %w", err)
	}
	return records, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
