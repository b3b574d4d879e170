package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/hunterstats/core/report"
	mcp_internal "github.com/huangsam/hunterstats/internal/mcp"
	"github.com/huangsam/hunterstats/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	report    schema.Report
	heroes    []schema.Hero
	stats     map[string]schema.UserStats
	err       error
	lastLimit int
}

func (f *fakeService) Preview(context.Context) (schema.Report, error) { return f.report, f.err }

func (f *fakeService) Heroes(_ context.Context, limit int) ([]schema.Hero, error) {
	f.lastLimit = limit
	if limit > 0 && len(f.heroes) > limit {
		return f.heroes[:limit], f.err
	}
	return f.heroes, f.err
}

func (f *fakeService) UserStats(_ context.Context, query string) (schema.UserStats, error) {
	stats, ok := f.stats[query]
	if !ok {
		return schema.UserStats{Query: query}, f.err
	}
	return stats, f.err
}

func (f *fakeService) IngestJSON(context.Context, []byte) (schema.IngestResult, error) {
	return schema.IngestResult{}, errors.New("not used")
}

func call(t *testing.T, svc *fakeService, tool string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(svc)
	st := s.GetTool(tool)
	require.NotNil(t, st, "Tool %s should exist", tool)

	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: tool, Arguments: args}}
	res, err := st.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func newFake() *fakeService {
	return &fakeService{
		report: schema.Report{Sections: []schema.ReportSection{
			{Key: report.SectionHeader, Heading: "🌟 BTC Hunters Stats 🌟"},
			{Key: report.SectionTopUsers, Heading: "🥇 Top 10 Users:", Lines: []string{"1. alice - 1,500 ranges"}},
		}},
		heroes: []schema.Hero{
			{Rank: 1, User: "alice", RangeDelta: 300, Speed: 60},
			{Rank: 2, User: "bob", RangeDelta: 10, Speed: 12},
		},
		stats: map[string]schema.UserStats{
			"ali": {Query: "ali", User: "alice", Found: true, Days: []string{"03-10"}},
		},
	}
}

func TestGetReport(t *testing.T) {
	t.Run("whole report", func(t *testing.T) {
		res := call(t, newFake(), "get_report", map[string]any{})
		require.False(t, res.IsError)
		var rep schema.Report
		require.NoError(t, json.Unmarshal([]byte(text(res)), &rep))
		assert.Len(t, rep.Sections, 2)
	})

	t.Run("one section", func(t *testing.T) {
		res := call(t, newFake(), "get_report", map[string]any{"section": report.SectionTopUsers})
		require.False(t, res.IsError)
		var section schema.ReportSection
		require.NoError(t, json.Unmarshal([]byte(text(res)), &section))
		assert.Equal(t, []string{"1. alice - 1,500 ranges"}, section.Lines)
	})

	t.Run("unknown section", func(t *testing.T) {
		res := call(t, newFake(), "get_report", map[string]any{"section": "weather"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "unknown section 'weather'")
	})

	t.Run("absent section", func(t *testing.T) {
		res := call(t, newFake(), "get_report", map[string]any{"section": report.SectionAllTimeBest})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "not present")
	})

	t.Run("service failure", func(t *testing.T) {
		svc := newFake()
		svc.err = errors.New("store offline")
		res := call(t, svc, "get_report", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "store offline")
	})
}

func TestGetDailyHeroes(t *testing.T) {
	svc := newFake()
	res := call(t, svc, "get_daily_heroes", map[string]any{"limit": 1.0})
	require.False(t, res.IsError)
	assert.Equal(t, 1, svc.lastLimit)

	var heroes []schema.Hero
	require.NoError(t, json.Unmarshal([]byte(text(res)), &heroes))
	require.Len(t, heroes, 1)
	assert.Equal(t, "alice", heroes[0].User)

	res = call(t, svc, "get_daily_heroes", map[string]any{"limit": -3.0})
	assert.True(t, res.IsError)

	empty := &fakeService{}
	res = call(t, empty, "get_daily_heroes", nil)
	require.False(t, res.IsError)
	assert.JSONEq(t, "[]", text(res))
}

func TestGetUserStats(t *testing.T) {
	res := call(t, newFake(), "get_user_stats", map[string]any{"user": "ali"})
	require.False(t, res.IsError)
	var stats schema.UserStats
	require.NoError(t, json.Unmarshal([]byte(text(res)), &stats))
	assert.Equal(t, "alice", stats.User)

	res = call(t, newFake(), "get_user_stats", map[string]any{"user": "  "})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "user is required")

	res = call(t, newFake(), "get_user_stats", map[string]any{"user": "zed"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "no user matches 'zed'")
}
