package report

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/core/window"
	"github.com/huangsam/hunterstats/schema"
)

// Per-user statistics parameters.
const (
	queryPrefixRunes = 10
	movingAvgDays    = 7
	minActiveSpeed   = 1.0
)

type indexedName struct {
	norm string
	key  string
}

// NameIndex resolves user queries to canonical user names by case-insensitive prefix.
type NameIndex struct {
	names []indexedName
}

// NewNameIndex builds an index over the canonical names.
func NewNameIndex(names []string) NameIndex {
	idx := NameIndex{names: make([]indexedName, 0, len(names))}
	for _, n := range names {
		idx.names = append(idx.names, indexedName{norm: strings.ToLower(n), key: n})
	}
	slices.SortFunc(idx.names, func(a, b indexedName) int {
		return cmp.Or(cmp.Compare(a.norm, b.norm), cmp.Compare(a.key, b.key))
	})
	return idx
}

// Lookup returns the first canonical name, in lowercase order, that starts with the
// lowercased first ten runes of query.
func (x NameIndex) Lookup(query string) (string, bool) {
	prefix := normalizeQuery(query)
	if prefix == "" {
		return "", false
	}
	i, _ := slices.BinarySearchFunc(x.names, prefix, func(n indexedName, target string) int {
		return cmp.Compare(n.norm, target)
	})
	if i < len(x.names) && strings.HasPrefix(x.names[i].norm, prefix) {
		return x.names[i].key, true
	}
	return "", false
}

func normalizeQuery(query string) string {
	runes := []rune(strings.TrimSpace(query))
	if len(runes) > queryPrefixRunes {
		runes = runes[:queryPrefixRunes]
	}
	return strings.ToLower(string(runes))
}

// BuildUserStats computes the last days civil days of statistics for the user matching query.
func BuildUserStats(cal window.Calendar, users schema.UserSeriesCollection, index NameIndex, query string, days int) schema.UserStats {
	stats := schema.UserStats{Query: query, GeneratedAt: cal.Now}
	user, ok := index.Lookup(query)
	if !ok {
		return stats
	}
	stats.User, stats.Found = user, true
	own := series.Sorted(users.Data[user])

	for d := days - 1; d >= 0; d-- {
		stats.Days = append(stats.Days, cal.DayLabel(d))

		var speeds []float64
		var first, last *schema.UserPoint
		for i := range own {
			p := &own[i]
			if !cal.InDay(p.Timestamp, d) {
				continue
			}
			if first == nil {
				first = p
			}
			last = p
			if p.Speed > minActiveSpeed {
				speeds = append(speeds, p.Speed)
			}
		}
		stats.DailySpeed = append(stats.DailySpeed, mean(speeds))
		var ranges int64
		if first != nil {
			ranges = max(last.Ranges-first.Ranges, 0)
		}
		stats.DailyRanges = append(stats.DailyRanges, ranges)

		var all []float64
		for _, points := range users.Data {
			for _, p := range points {
				if p.Speed > minActiveSpeed && cal.InDay(p.Timestamp, d) {
					all = append(all, p.Speed)
				}
			}
		}
		stats.OverallDailySpeed = append(stats.OverallDailySpeed, mean(all))
	}

	ranges := make([]float64, len(stats.DailyRanges))
	for i, r := range stats.DailyRanges {
		ranges[i] = float64(r)
	}
	stats.RangesAvg = window.PadLeft(window.Trimmed(ranges, movingAvgDays), days)
	stats.OverallSpeedAvg = window.PadLeft(window.Trimmed(stats.OverallDailySpeed, movingAvgDays), days)

	cutoff := series.Cutoff(cal.Now, days)
	var total []float64
	for _, name := range slices.Sorted(maps.Keys(users.Data)) {
		contributed := false
		for _, p := range users.Data[name] {
			if p.Speed > minActiveSpeed && p.Timestamp >= cutoff {
				total = append(total, p.Speed)
				contributed = true
			}
		}
		if contributed {
			stats.ContributingUsers++
		}
	}
	stats.OverallAvgSpeed = mean(total)
	return stats
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
