// Package main provides a performance benchmarking tool for the shardstats CLI.
// It measures execution times of each view, running each test multiple times,
// treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - shardstats binary installed and available in PATH
// - A reachable match source configured through DATABASE_URL or SHARDSTATS_* variables
//
// Usage: go run benchmark/main.go [fetch-limit ...]
//
//	fetch-limit: Snapshot sizes to benchmark (default 1000 5000 10000)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	FetchLimit  int
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	FetchLimits []int
	Commands    map[string][]string
}

func main() {
	limits := []int{1000, 5000, 10000}
	if len(os.Args) > 1 {
		limits = limits[:0]
		for _, arg := range os.Args[1:] {
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				fmt.Printf("Usage: %s [fetch-limit ...]\n", os.Args[0])
				os.Exit(1)
			}
			limits = append(limits, n)
		}
	}

	config := BenchmarkConfig{
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		FetchLimits: limits,
		Commands: map[string][]string{
			"overview":   {"-g", "all", "-d", "all"},
			"players":    {"-g", "all", "-d", "all"},
			"characters": {"-g", "all", "-d", "all"},
			"matches":    {"-g", "all", "-d", "all", "--limit", "100"},
		},
	}

	if _, err := exec.LookPath("shardstats"); err != nil {
		fmt.Printf("Prerequisites check failed: shardstats binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// clearCache removes stored snapshots so the next cached run starts cold.
func clearCache() {
	clearCmd := exec.Command("shardstats", "cache", "clear", "--cache-backend", "sqlite")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
}

// runBenchmarks executes all benchmark tests across configured snapshot sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.FetchLimits), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, limit := range config.FetchLimits {
		fmt.Printf("Benchmarking fetch-limit %d\n", limit)
		for _, command := range []string{"overview", "players", "characters", "matches"} {
			results = append(results, runBenchmarkSuite(config, limit, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, limit int, command string) BenchmarkResult {
	fmt.Printf("Running %s with %d matches\n", command, limit)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, limit, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: every run reads the source
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: the first run fills the snapshot store, the rest read it
	clearCache()
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		FetchLimit:  limit,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a shardstats command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, limit int, command, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, "--cache-backend", cacheBackend, "--fetch-limit", strconv.Itoa(limit), "--color", "no"}
	args = append(args, config.Commands[command]...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("shardstats", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Computed in") &&
		strings.Contains(outputStr, "Cache backend:") &&
		!strings.Contains(outputStr, "Source unavailable")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/shardstats_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"fetch_limit", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{strconv.Itoa(result.FetchLimit), result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"overview", "players", "characters", "matches"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %6d matches: No-cache: %s, Cold: %s, Warm: %s\n", result.FetchLimit, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
