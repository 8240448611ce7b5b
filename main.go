// main is the entry point for the shardstats CLI.
package main

import (
	"github.com/shardsquad/shardstats/cmd"
	"github.com/shardsquad/shardstats/internal/contract"
)

func main() {
	err := cmd.Execute()
	cmd.Cleanup()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("Error", err)
	}
}
