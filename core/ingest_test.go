package core

import (
	"context"
	"math"
	"testing"

	"github.com/huangsam/hunterstats/internal/records"
	"github.com/huangsam/hunterstats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestValidation(t *testing.T) {
	tests := []struct {
		name     string
		sample   schema.CollectorSample
		accepted int
		rejected int
	}{
		{
			name:     "all scalars",
			sample:   schema.CollectorSample{Pool: "Hunters", Completion: ptr(10), Speed: ptr(500), TotalRanges: ptr(1e6)},
			accepted: 3,
		},
		{
			name:     "NaN completion",
			sample:   schema.CollectorSample{Pool: "Hunters", Completion: ptr(math.NaN())},
			rejected: 1,
		},
		{
			name:     "infinite speed",
			sample:   schema.CollectorSample{Pool: "Hunters", Speed: ptr(math.Inf(1))},
			rejected: 1,
		},
		{
			name:     "negative total ranges",
			sample:   schema.CollectorSample{Pool: "Hunters", TotalRanges: ptr(-1)},
			rejected: 1,
		},
		{
			name: "bad users are rejected one by one",
			sample: schema.CollectorSample{Pool: "Hunters", Completion: ptr(10), Users: map[string]schema.UserReading{
				"alice": {Ranges: 100, Speed: 5},
				"  ":    {Ranges: 1, Speed: 1},
				"bob":   {Ranges: -5, Speed: 1},
				"carol": {Ranges: 5, Speed: math.NaN()},
			}},
			accepted: 2,
			rejected: 3,
		},
		{
			name: "users on a secondary pool",
			sample: schema.CollectorSample{Pool: "TTD", Speed: ptr(700), Users: map[string]schema.UserReading{
				"alice": {Ranges: 100, Speed: 5},
			}},
			accepted: 1,
			rejected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, newFileStore(t), nil)
			res, err := e.Ingest(context.Background(), tt.sample)
			require.NoError(t, err)
			assert.Equal(t, tt.sample.Pool, res.Pool)
			assert.Equal(t, tt.accepted, res.Accepted)
			assert.Equal(t, tt.rejected, res.Rejected)
			assert.Len(t, res.Warnings, tt.rejected)
		})
	}
}

func TestIngestUnknownPool(t *testing.T) {
	e := newTestEngine(t, newFileStore(t), nil)
	_, err := e.Ingest(context.Background(), schema.CollectorSample{Pool: "Nope", Speed: ptr(1)})
	assert.ErrorIs(t, err, ErrUnknownPool)
}

func TestIngestAppendsAndPrunes(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()
	key := records.SpeedKey("Hunters")

	_, err := e.Ingest(ctx, schema.CollectorSample{Pool: "Hunters", Timestamp: hoursAgo(40 * 24), Speed: ptr(100)})
	require.NoError(t, err)
	_, err = e.Ingest(ctx, schema.CollectorSample{Pool: "Hunters", Timestamp: hoursAgo(2), Speed: ptr(200)})
	require.NoError(t, err)
	_, err = e.Ingest(ctx, schema.CollectorSample{Pool: "Hunters", Speed: ptr(300)})
	require.NoError(t, err)

	rec := readScalar(t, store, key)
	assert.Equal(t, []schema.TimePoint{
		{Timestamp: hoursAgo(2), Value: 200},
		{Timestamp: testNow.Unix(), Value: 300},
	}, rec.History)
	assert.InDelta(t, 300.0, rec.Current, 1e-9)
}

func TestIngestMatchesUsersCaseInsensitively(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	ctx := context.Background()

	ingestUsers(t, e, hoursAgo(2), map[string]schema.UserReading{"Alice": {Ranges: 100, Speed: 10}})
	res, err := e.Ingest(ctx, schema.CollectorSample{Pool: "Hunters", Timestamp: hoursAgo(1), Users: map[string]schema.UserReading{
		"alice": {Ranges: 150, Speed: 12},
		"Bob":   {Ranges: 5, Speed: 1},
		"bob":   {Ranges: 6, Speed: 2},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 1, res.Rejected)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "duplicates Bob")

	data, _, _, err := store.Get(records.RangesKey("Hunters"))
	require.NoError(t, err)
	users, issues := records.DecodeUsers(records.RangesKey("Hunters"), data)
	assert.Empty(t, issues)
	assert.Len(t, users.Data, 2)
	assert.NotContains(t, users.Data, "alice")
	assert.Equal(t, []schema.UserPoint{
		{Timestamp: hoursAgo(2), Ranges: 100, Speed: 10},
		{Timestamp: hoursAgo(1), Ranges: 150, Speed: 12},
	}, users.Data["Alice"])
	assert.Equal(t, []schema.UserPoint{{Timestamp: hoursAgo(1), Ranges: 5, Speed: 1}}, users.Data["Bob"])
}

func TestIngestJSON(t *testing.T) {
	store := newFileStore(t)
	e := newTestEngine(t, store, nil)
	payload := `{"pool":"Hunters","speed":321.5,"users":{"alice":[1200,55.5],"bob":[1.5,3]}}`

	res, err := e.IngestJSON(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 1, res.Rejected)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "bob")

	data, _, _, err := store.Get(records.RangesKey("Hunters"))
	require.NoError(t, err)
	users, issues := records.DecodeUsers(records.RangesKey("Hunters"), data)
	assert.Empty(t, issues)
	assert.Equal(t, []schema.UserPoint{{Timestamp: testNow.Unix(), Ranges: 1200, Speed: 55.5}}, users.Data["alice"])
	assert.NotContains(t, users.Data, "bob")
}

func TestIngestJSONInvalid(t *testing.T) {
	e := newTestEngine(t, newFileStore(t), nil)

	_, err := e.IngestJSON(context.Background(), []byte(`{"pool":`))
	assert.Error(t, err)

	_, err = e.IngestJSON(context.Background(), []byte(`{"speed":1}`))
	assert.Error(t, err)
}
