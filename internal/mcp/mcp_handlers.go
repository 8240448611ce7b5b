package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shardsquad/shardstats/core"
	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/shardsquad/shardstats/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	loader  core.SnapshotLoader
}

// configFor clones the base config and applies the shared filter arguments.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if v := strings.TrimSpace(request.GetString("version", "")); v != "" {
		cfg.Filter.Version = v
	}
	if d := strings.TrimSpace(request.GetString("difficulty", "")); d != "" {
		cfg.Filter.Difficulty = d
	}
	if m := request.GetString("multiplayer", ""); m != "" {
		sel, err := contract.ParseTriState(m)
		if err != nil {
			return nil, fmt.Errorf("invalid multiplayer: %w", err)
		}
		cfg.Filter.Multiplayer = sel
	}
	if l := request.GetInt("limit", 0); l != 0 {
		if l < 0 || l > contract.MaxResultLimit {
			return nil, fmt.Errorf("limit must be between 1 and %d", contract.MaxResultLimit)
		}
		cfg.ResultLimit = l
	}
	return cfg, nil
}

func textResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := core.GetOverviewResults(core.WithSuppressHeader(ctx), cfg, h.loader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("overview failed: %v", err)), nil
	}
	return textResult(result)
}

func (h *toolHandler) handleGetPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := core.GetPlayersResults(core.WithSuppressHeader(ctx), cfg, h.loader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("players failed: %v", err)), nil
	}
	return textResult(result)
}

func (h *toolHandler) handleGetCharacters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if r := request.GetString("role", ""); r != "" {
		role := schema.Role(strings.ToLower(r))
		if _, ok := schema.ValidRoles[role]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid role '%s'. must be main, secondary, all", r)), nil
		}
		cfg.Role = role
	}

	result, err := core.GetCharactersResults(core.WithSuppressHeader(ctx), cfg, h.loader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("characters failed: %v", err)), nil
	}
	return textResult(result)
}

func (h *toolHandler) handleGetMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if o := request.GetString("outcome", ""); o != "" {
		outcome := schema.Outcome(strings.ToLower(o))
		if _, ok := schema.ValidOutcomes[outcome]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid outcome '%s'. must be all, win, loss", o)), nil
		}
		cfg.RawFilter.Outcome = outcome
	}
	cfg.RawFilter.PlayerName = strings.TrimSpace(request.GetString("player_name", cfg.RawFilter.PlayerName))
	cfg.RawFilter.PlayerID = strings.TrimSpace(request.GetString("player_id", cfg.RawFilter.PlayerID))
	cfg.RawFilter.Version = strings.TrimSpace(request.GetString("raw_version", cfg.RawFilter.Version))

	result, err := core.GetMatchesResults(core.WithSuppressHeader(ctx), cfg, h.loader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("matches failed: %v", err)), nil
	}
	return textResult(result)
}

func (h *toolHandler) handleGetFilterOptions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := core.GetOptionsResults(core.WithSuppressHeader(ctx), h.baseCfg.Clone(), h.loader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("options failed: %v", err)), nil
	}
	return textResult(result)
}
