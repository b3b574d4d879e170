package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/hunterstats/core/report"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	svc contract.StatsService
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section := request.GetString("section", "")
	if section != "" && !slices.Contains(report.SectionKeys, section) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown section '%s'. must be one of %s", section, strings.Join(report.SectionKeys, ", "))), nil
	}

	rep, err := h.svc.Preview(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}
	if section == "" {
		return jsonResult(rep), nil
	}

	idx := slices.IndexFunc(rep.Sections, func(s schema.ReportSection) bool { return s.Key == section })
	if idx < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("section '%s' is not present in today's report", section)), nil
	}
	return jsonResult(rep.Sections[idx]), nil
}

func (h *toolHandler) handleGetDailyHeroes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 0)
	if limit < 0 || limit > contract.MaxTopUsers {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", contract.MaxTopUsers)), nil
	}

	heroes, err := h.svc.Heroes(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("heroes failed: %v", err)), nil
	}
	if heroes == nil {
		heroes = []schema.Hero{}
	}
	return jsonResult(heroes), nil
}

func (h *toolHandler) handleGetUserStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user := strings.TrimSpace(request.GetString("user", ""))
	if user == "" {
		return mcp.NewToolResultError("user is required"), nil
	}

	stats, err := h.svc.UserStats(ctx, user)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("user stats failed: %v", err)), nil
	}
	if !stats.Found {
		return mcp.NewToolResultError(fmt.Sprintf("no user matches '%s'", user)), nil
	}
	return jsonResult(stats), nil
}
