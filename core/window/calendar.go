// Package window computes civil-day aligned statistics, smoothing, and completion projections.
package window

import "time"

// DayLabelFormat is the label used for a civil day.
const DayLabelFormat = "2006-01-02"

// Calendar anchors day boundaries to midnight in a fixed named timezone.
type Calendar struct {
	Location *time.Location
	Now      time.Time
}

// NewCalendar creates a calendar for the given timezone and instant.
// A nil location falls back to UTC.
func NewCalendar(loc *time.Location, now time.Time) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, Now: now}
}

// DayBoundary returns midnight of the civil day daysAgo days before today, in epoch seconds.
func (c Calendar) DayBoundary(daysAgo int) int64 {
	y, m, d := c.Now.In(c.Location).Date()
	return time.Date(y, m, d-daysAgo, 0, 0, 0, 0, c.Location).Unix()
}

// DayLabel returns the YYYY-MM-DD label of the civil day daysAgo days before today.
func (c Calendar) DayLabel(daysAgo int) string {
	return time.Unix(c.DayBoundary(daysAgo), 0).In(c.Location).Format(DayLabelFormat)
}

// InDay reports whether ts falls in the civil day daysAgo days before today.
// Today's window ends at Now, inclusive.
func (c Calendar) InDay(ts int64, daysAgo int) bool {
	if ts < c.DayBoundary(daysAgo) {
		return false
	}
	if daysAgo <= 0 {
		return ts <= c.Now.Unix()
	}
	return ts < c.DayBoundary(daysAgo-1)
}
