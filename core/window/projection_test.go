package window

import (
	"testing"
	"time"

	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/assert"
)

func TestEstimateCompletionTime(t *testing.T) {
	tests := []struct {
		name     string
		history  []schema.TimePoint
		current  float64
		expected time.Duration
		ok       bool
	}{
		{
			name:     "steady progress",
			history:  []schema.TimePoint{{Timestamp: 0, Value: 10}, {Timestamp: 100, Value: 11}, {Timestamp: 200, Value: 12}},
			current:  12,
			expected: 3800 * time.Second,
			ok:       true,
		},
		{
			name:     "regressions are discarded",
			history:  []schema.TimePoint{{Timestamp: 0, Value: 10}, {Timestamp: 100, Value: 9}, {Timestamp: 200, Value: 10}},
			current:  10,
			expected: 4000 * time.Second,
			ok:       true,
		},
		{
			name:    "only last points count",
			history: []schema.TimePoint{{Timestamp: 0, Value: 1}, {Timestamp: 1, Value: 40}, {Timestamp: 100, Value: 40}, {Timestamp: 200, Value: 40}, {Timestamp: 300, Value: 40}, {Timestamp: 400, Value: 40}},
			current: 40,
			ok:      false,
		},
		{
			name:    "target reached",
			history: []schema.TimePoint{{Timestamp: 0, Value: 49}, {Timestamp: 100, Value: 51}},
			current: 51,
			ok:      false,
		},
		{
			name:    "too few points",
			history: []schema.TimePoint{{Timestamp: 0, Value: 10}},
			current: 10,
			ok:      false,
		},
		{
			name:    "no elapsed time",
			history: []schema.TimePoint{{Timestamp: 5, Value: 10}, {Timestamp: 5, Value: 11}},
			current: 11,
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EstimateCompletionTime(tt.history, tt.current, fixedNow, 50, 5)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.WithinDuration(t, fixedNow.Add(tt.expected), got, time.Millisecond)
			}
		})
	}
}
