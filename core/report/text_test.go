package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/assert"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		limit    int
		expected []string
	}{
		{"fits", "a\nb", 10, []string{"a\nb"}},
		{"splits on lines", "a\nb\nc", 3, []string{"a\nb", "c"}},
		{"long line is cut", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"blank parts dropped", "\n\n\nabc\n", 10, []string{"abc\n"}},
		{"runes not bytes", "ååå\nä", 3, []string{"ååå", "ä"}},
		{"empty", "", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChunkText(tt.text, tt.limit))
		})
	}
}

func TestChunkTextRespectsLimit(t *testing.T) {
	text := strings.Repeat("🚀 rocket line\nshort\n\n", 500)
	parts := ChunkText(text, 100)
	assert.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 100)
	}
}

func TestRender(t *testing.T) {
	sections := []schema.ReportSection{
		{Key: "one", Heading: "A&B", Lines: []string{"x<y"}},
		{Key: "two", Lines: []string{"plain"}},
	}
	assert.Equal(t, "A&B\nx<y\n\nplain\n", RenderText(sections))
	assert.Equal(t, "<b>A&amp;B</b>\nx&lt;y\n\nplain\n", RenderHTML(sections))
}
