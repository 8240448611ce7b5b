// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shardsquad/shardstats/core"
	"github.com/shardsquad/shardstats/internal/contract"
)

// NewMCPServer initializes and configures the shardstats MCP server without starting it.
// Every tool reads from the same loader so concurrent calls share one snapshot.
func NewMCPServer(baseCfg *contract.Config, loader core.SnapshotLoader, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ShardSquad Match Stats Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		loader:  loader,
	}

	filterArgs := []mcp.ToolOption{
		mcp.WithString("version", mcp.Description("Game version to analyze ('latest', 'all' or an exact version). Defaults to 'latest'.")),
		mcp.WithString("difficulty", mcp.Description("Difficulty to analyze ('all' or an exact value). Defaults to '1'.")),
		mcp.WithString("multiplayer", mcp.Description("Multiplayer selection. Defaults to 'no'."), mcp.Enum("any", "yes", "no")),
	}
	withFilters := func(opts ...mcp.ToolOption) []mcp.ToolOption {
		return append(append([]mcp.ToolOption{}, filterArgs...), opts...)
	}

	// --- 1. Tool: get_overview ---
	s.AddTool(mcp.NewTool("get_overview", withFilters(
		mcp.WithDescription("Summarize matches: total, win rate, wave with most defeats, top winner and defeats per wave."),
	)...), h.handleGetOverview)

	// --- 2. Tool: get_players ---
	s.AddTool(mcp.NewTool("get_players", withFilters(
		mcp.WithDescription("List the players with the most matches and their wins and losses."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of players returned. Defaults to 15.")),
	)...), h.handleGetPlayers)

	// --- 3. Tool: get_characters ---
	s.AddTool(mcp.NewTool("get_characters", withFilters(
		mcp.WithDescription("Rank main and secondary characters among winning matches by usage, DPS, boss damage and balance."),
		mcp.WithString("role", mcp.Description("Character role to report. Defaults to 'all'."), mcp.Enum("main", "secondary", "all")),
	)...), h.handleGetCharacters)

	// --- 4. Tool: get_matches ---
	s.AddTool(mcp.NewTool("get_matches", withFilters(
		mcp.WithDescription("List individual matches, newest first."),
		mcp.WithString("outcome", mcp.Description("Match outcome. Defaults to 'all'."), mcp.Enum("all", "win", "loss")),
		mcp.WithString("player_name", mcp.Description("Only matches of this steam name.")),
		mcp.WithString("player_id", mcp.Description("Only matches of this steam id.")),
		mcp.WithString("raw_version", mcp.Description("Only matches of this version, applied after the shared version filter.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of matches returned.")),
	)...), h.handleGetMatches)

	// --- 5. Tool: get_filter_options ---
	s.AddTool(mcp.NewTool("get_filter_options",
		mcp.WithDescription("List the versions, difficulties and players present in the loaded matches."),
	), h.handleGetFilterOptions)

	return s
}

// StartMCPServer starts the shardstats MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, loader core.SnapshotLoader, version string) error {
	s := NewMCPServer(baseCfg, loader, version)
	return server.ServeStdio(s)
}
