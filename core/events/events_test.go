package events

import (
	"testing"
	"time"

	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// ago returns the timestamp h hours before fixedNow.
func ago(h float64) int64 {
	return fixedNow.Add(-time.Duration(h * float64(time.Hour))).Unix()
}

func collection(data map[string][]schema.UserPoint) schema.UserSeriesCollection {
	return schema.UserSeriesCollection{Data: data}
}

func TestDailyHeroes(t *testing.T) {
	users := collection(map[string][]schema.UserPoint{
		"zed":   {{Timestamp: ago(20), Ranges: 100}, {Timestamp: ago(1), Ranges: 150, Speed: 80}},
		"alice": {{Timestamp: ago(1), Ranges: 500, Speed: 90}, {Timestamp: ago(10), Ranges: 450}},
		"bob":   {{Timestamp: ago(30), Ranges: 0}, {Timestamp: ago(2), Ranges: 400, Speed: 70}},
		"carol": {{Timestamp: ago(5), Ranges: 900}, {Timestamp: ago(1), Ranges: 800, Speed: 60}},
		"dave":  {{Timestamp: ago(3), Ranges: 10}, {Timestamp: ago(2), Ranges: 300, Speed: 200}},
	})

	heroes := DailyHeroes(users, fixedNow, DefaultWindow)
	require.Len(t, heroes, 4, "bob has a single in-window sample")

	assert.Equal(t, schema.Hero{Rank: 1, User: "dave", RangeDelta: 290, Speed: 200}, heroes[0])
	assert.Equal(t, schema.Hero{Rank: 2, User: "alice", RangeDelta: 50, Speed: 90}, heroes[1], "unsorted input is ordered by time")
	assert.Equal(t, schema.Hero{Rank: 3, User: "zed", RangeDelta: 50, Speed: 80}, heroes[2], "ties break alphabetically")
	assert.Equal(t, schema.Hero{Rank: 4, User: "carol", RangeDelta: 0, Speed: 60}, heroes[3], "regressions clamp to zero")
}

func TestDailyHeroesEmpty(t *testing.T) {
	assert.Empty(t, DailyHeroes(collection(nil), fixedNow, DefaultWindow))
}

func TestSpeedRocket(t *testing.T) {
	tests := []struct {
		name     string
		users    map[string][]schema.UserPoint
		expected schema.SpeedRocket
		ok       bool
	}{
		{
			name: "highest sample wins",
			users: map[string][]schema.UserPoint{
				"alice": {{Timestamp: ago(2), Speed: 100}, {Timestamp: ago(1), Speed: 140}},
				"bob":   {{Timestamp: ago(3), Speed: 130}},
			},
			expected: schema.SpeedRocket{User: "alice", Speed: 140},
			ok:       true,
		},
		{
			name: "samples outside the window are ignored",
			users: map[string][]schema.UserPoint{
				"alice": {{Timestamp: ago(25), Speed: 900}},
				"bob":   {{Timestamp: ago(3), Speed: 130}},
			},
			expected: schema.SpeedRocket{User: "bob", Speed: 130},
			ok:       true,
		},
		{
			name: "ties go to the first name",
			users: map[string][]schema.UserPoint{
				"zoe":   {{Timestamp: ago(1), Speed: 150}},
				"mike":  {{Timestamp: ago(2), Speed: 150}},
				"aaron": {{Timestamp: ago(5), Speed: 10}},
			},
			expected: schema.SpeedRocket{User: "mike", Speed: 150},
			ok:       true,
		},
		{
			name:  "no samples",
			users: map[string][]schema.UserPoint{"alice": {{Timestamp: ago(48), Speed: 1}}},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SpeedRocket(collection(tt.users), fixedNow, DefaultWindow)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// steady returns hourly samples at the given speed covering the last hours hours.
func steady(hours int, speed float64) []schema.UserPoint {
	var out []schema.UserPoint
	for h := hours; h >= 0; h-- {
		out = append(out, schema.UserPoint{Timestamp: ago(float64(h)), Speed: speed})
	}
	return out
}

func TestShootingStar(t *testing.T) {
	t.Run("low speed never qualifies", func(t *testing.T) {
		users := collection(map[string][]schema.UserPoint{"slow": steady(23, 119)})
		_, ok := ShootingStar(users, fixedNow, DefaultWindow)
		assert.False(t, ok)
	})

	t.Run("needs a fast start", func(t *testing.T) {
		points := steady(12, 200)
		points[0].Speed = 40
		_, ok := ShootingStar(collection(map[string][]schema.UserPoint{"late": points}), fixedNow, DefaultWindow)
		assert.False(t, ok)
	})

	t.Run("needs six hours", func(t *testing.T) {
		_, ok := ShootingStar(collection(map[string][]schema.UserPoint{"brief": steady(5, 200)}), fixedNow, DefaultWindow)
		assert.False(t, ok)
	})

	t.Run("trapezoid average counts the crossing interval", func(t *testing.T) {
		points := steady(6, 130)
		points[0].Speed = 110 // (110+130)/2 = 120 meets the gate
		star, ok := ShootingStar(collection(map[string][]schema.UserPoint{"edge": points}), fixedNow, DefaultWindow)
		require.True(t, ok)
		assert.Equal(t, int64(21600), star.QualifyingSeconds)
	})

	t.Run("ranked by final speed then time", func(t *testing.T) {
		users := collection(map[string][]schema.UserPoint{
			"alice": steady(10, 150),
			"bob":   steady(20, 150),
			"carol": steady(8, 140),
		})
		star, ok := ShootingStar(users, fixedNow, DefaultWindow)
		require.True(t, ok)
		assert.Equal(t, schema.ShootingStar{User: "bob", FinalSpeed: 150, QualifyingSeconds: 20 * 3600}, star)
	})
}
