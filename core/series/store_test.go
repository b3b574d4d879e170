package series

import (
	"testing"
	"time"

	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestStoreHistorySorted(t *testing.T) {
	s := NewStore()
	s.Append("speed", schema.TimePoint{Timestamp: 30, Value: 3})
	s.Append("speed", schema.TimePoint{Timestamp: 10, Value: 1})
	s.Append("speed", schema.TimePoint{Timestamp: 20, Value: 2})

	assert.Equal(t, []float64{1, 2, 3}, Values(s.History("speed")))
	assert.Empty(t, s.History("missing"), "missing series is empty, not an error")
}

func TestStorePruneBoundary(t *testing.T) {
	now := fixedNow.Unix()
	s := NewStore()
	s.Append("completion", schema.TimePoint{Timestamp: now - 31*SecondsPerDay, Value: 1})
	s.Append("completion", schema.TimePoint{Timestamp: now - 29*SecondsPerDay, Value: 2})
	s.AppendUser("ranges", "alice", schema.UserPoint{Timestamp: now - 31*SecondsPerDay, Ranges: 1})
	s.AppendUser("ranges", "bob", schema.UserPoint{Timestamp: now - 31*SecondsPerDay, Ranges: 1})
	s.AppendUser("ranges", "bob", schema.UserPoint{Timestamp: now - 29*SecondsPerDay, Ranges: 5})

	s.Prune(fixedNow, 30)

	history := s.History("completion")
	require.Len(t, history, 1)
	assert.Equal(t, now-29*SecondsPerDay, history[0].Timestamp)

	users := s.Users("ranges")
	assert.NotContains(t, users.Data, "alice", "users without samples are dropped")
	require.Len(t, users.Data["bob"], 1)
	assert.Equal(t, int64(5), users.Data["bob"][0].Ranges)
}

func TestStoreReadsDoNotAlias(t *testing.T) {
	s := NewStore()
	s.Append("speed", schema.TimePoint{Timestamp: 1, Value: 1})

	rec := s.Scalar("speed")
	rec.History[0].Value = 99

	assert.Equal(t, 1.0, s.History("speed")[0].Value)
}

func TestStoreCurrentAndBest(t *testing.T) {
	s := NewStore()
	s.PutScalar("speed", schema.ScalarSeries{Current: 5})
	s.SetCurrent("speed", 7)
	s.SetBest("speed", 900, "alice")

	rec := s.Scalar("speed")
	assert.Equal(t, 7.0, rec.Current)
	assert.Equal(t, 900.0, rec.BestSpeed)
	assert.Equal(t, "alice", rec.BestSpeedHolder)
	assert.Equal(t, []string{"speed"}, s.ScalarKeys())
}

func TestBetween(t *testing.T) {
	points := pts([2]float64{0, 1}, [2]float64{10, 2}, [2]float64{20, 3})
	assert.Equal(t, []float64{2}, Values(Between(points, 10, 20)))
	assert.Equal(t, []float64{2, 3}, Values(Since(points, 10)))
}
