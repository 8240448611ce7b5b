package schema

import "time"

// CacheStatus represents the status of the snapshot cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the refresh history store.
type HistoryStatus struct {
	Backend       string    `json:"backend"`
	Connected     bool      `json:"connected"`
	TotalRuns     int       `json:"total_runs"`
	FailedRuns    int       `json:"failed_runs"`
	LastRunID     int64     `json:"last_run_id"`
	LastRunTime   time.Time `json:"last_run_time"`
	OldestRunTime time.Time `json:"oldest_run_time"`
	TotalMatches  int64     `json:"total_matches"`
}

// RefreshRun is a single snapshot refresh attempt as recorded by the history store.
type RefreshRun struct {
	StartTime      time.Time
	Duration       time.Duration
	Origin         string
	Matches        int
	Participations int
	Err            error
}

// RefreshRunRecord represents a row from the refresh runs table.
type RefreshRunRecord struct {
	RunID          int64
	StartTime      time.Time
	DurationMs     int64
	Origin         string
	Matches        int32
	Participations int32
	ErrorMessage   *string
}
