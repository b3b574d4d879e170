// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"strings"

	"github.com/huangsam/hunterstats/core/report"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the hunterstats MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(svc contract.StatsService) *server.MCPServer {
	s := server.NewMCPServer(
		"Hunterstats Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{svc: svc}

	// --- 1. Tool: get_report ---
	s.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Assemble the daily puzzle report (completion, pool speed, heroes, milestones) without persisting it."),
		mcp.WithString("section", mcp.Description("Return only this section ("+strings.Join(report.SectionKeys, ", ")+")."), mcp.Enum(report.SectionKeys...)),
	), h.handleGetReport)

	// --- 2. Tool: get_daily_heroes ---
	s.AddTool(mcp.NewTool("get_daily_heroes",
		mcp.WithDescription("List the users that added the most ranges over the trailing event window."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of heroes returned.")),
	), h.handleGetDailyHeroes)

	// --- 3. Tool: get_user_stats ---
	s.AddTool(mcp.NewTool("get_user_stats",
		mcp.WithDescription("Per-day speed and range statistics for one user, matched by case-insensitive name prefix."),
		mcp.WithString("user", mcp.Description("User name or name prefix."), mcp.Required()),
	), h.handleGetUserStats)

	return s
}

// StartMCPServer starts the hunterstats MCP server on stdio.
func StartMCPServer(_ context.Context, svc contract.StatsService) error {
	s := NewMCPServer(svc)
	return server.ServeStdio(s)
}
