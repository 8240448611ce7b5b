package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/shardsquad/shardstats/schema"
)

// Win rate label constants.
const (
	StrongValue = "Strong" // Strong value
	EvenValue   = "Even"   // Even value
	WeakValue   = "Weak"   // Weak value
)

// Color variables for console output.
var (
	StrongColor = color.New(color.FgGreen, color.Bold) // StrongColor marks a winning record.
	EvenColor   = color.New(color.FgYellow)            // EvenColor marks a balanced record.
	WeakColor   = color.New(color.FgRed)               // WeakColor marks a losing record.
)

// GetPlainLabel returns a plain text label for a win rate percentage.
// This is the label used for CSV, JSON, and table printing.
func GetPlainLabel(winRate float64) string {
	switch {
	case winRate >= 60:
		return StrongValue
	case winRate >= 40:
		return EvenValue
	default:
		return WeakValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(winRate float64) string {
	text := GetPlainLabel(winRate)

	switch text {
	case StrongValue:
		return StrongColor.Sprint(text)
	case EvenValue:
		return EvenColor.Sprint(text)
	default:
		return WeakColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".shardstats_cache.db"
	}
	return filepath.Join(homeDir, ".shardstats_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for refresh history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".shardstats_history.db"
	}
	return filepath.Join(homeDir, ".shardstats_history.db")
}

// TruncateText shortens s to maxWidth runes with an ellipsis suffix.
// maxWidth must be greater than 3 for truncation to happen.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseTriState parses a multiplayer selection.
// Accepts the boolean spellings of ParseBoolString plus "any" and "all".
func ParseTriState(s string) (schema.TriState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", schema.Wildcard:
		return schema.TriAny, nil
	}
	b, err := ParseBoolString(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid tri-state: %s (expected any/yes/no)", s)
	}
	if b {
		return schema.TriYes, nil
	}
	return schema.TriNo, nil
}
