package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// relativeTimeRe captures "N [units] ago", e.g. "2 hours ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// lookbackDurationRe captures "N [units]", e.g. "30 days".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseRelativeTime converts strings like "2 hours ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.Add(time.Duration(-value) * 7 * 24 * time.Hour), nil
	case "day":
		return now.Add(time.Duration(-value) * 24 * time.Hour), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default:
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// ParseLookbackDuration converts strings like "30 days", "720h" or "P30D" into a time.Duration.
// Go duration syntax is tried first, then the human-readable form, then ISO-8601.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return nonZero(d)
	}

	lower := strings.ToLower(s)
	if matches := lookbackDurationRe.FindStringSubmatch(lower); len(matches) > 0 {
		value, _ := strconv.Atoi(matches[1])
		var unit time.Duration
		switch matches[2] {
		case "year":
			unit = 365 * 24 * time.Hour // Approximation
		case "month":
			unit = 30 * 24 * time.Hour // Approximation
		case "week":
			unit = 7 * 24 * time.Hour
		case "day":
			unit = 24 * time.Hour
		case "hour":
			unit = time.Hour
		default:
			unit = time.Minute
		}
		return nonZero(time.Duration(value) * unit)
	}

	if strings.HasPrefix(s, "P") || strings.HasPrefix(s, "-P") {
		d, err := duration.Parse(s)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
		}
		return nonZero(d.ToTimeDuration())
	}

	return 0, fmt.Errorf("invalid lookback duration format: %s", s)
}

func nonZero(d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, errors.New("duration must be positive")
	}
	return d, nil
}

// ParseAsOf resolves the instant a report is computed for. An empty string means now.
// Absolute times use DateTimeFormat; anything else must be a relative time like "6 hours ago".
func ParseAsOf(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		if t.After(now) {
			return time.Time{}, fmt.Errorf("as-of time %s is in the future", s)
		}
		return t, nil
	}
	return ParseRelativeTime(s, now)
}
