package report

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/huangsam/hunterstats/schema"
)

// DefaultMessageLimit is the transport size limit for one message part, in runes.
const DefaultMessageLimit = 4000

// RenderText lays out the sections as plain text, one blank line between sections.
func RenderText(sections []schema.ReportSection) string {
	return render(sections, func(s string) string { return s }, func(s string) string { return s })
}

// RenderHTML lays out the sections for an HTML-aware notifier with bold headings.
func RenderHTML(sections []schema.ReportSection) string {
	return render(sections, func(s string) string {
		return "<b>" + html.EscapeString(s) + "</b>"
	}, html.EscapeString)
}

func render(sections []schema.ReportSection, heading, line func(string) string) string {
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		if s.Heading != "" {
			sb.WriteString(heading(s.Heading))
			sb.WriteString("\n")
		}
		for _, l := range s.Lines {
			sb.WriteString(line(l))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ChunkText splits text on line boundaries into parts of at most limit runes.
// A single line longer than limit is split mid-line. Blank parts are dropped.
func ChunkText(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			parts = append(parts, cur.String())
		}
		cur.Reset()
		curLen = 0
	}

	for _, line := range strings.Split(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
		}
		n := utf8.RuneCountInString(line)
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteString("\n")
		}
		cur.WriteString(line)
		curLen += sep + n
	}
	flush()
	return parts
}
