package series

import "github.com/huangsam/hunterstats/schema"

// Resample buckets samples into fixed-width windows [b, b+interval) anchored at the first
// chronological sample. Empty buckets are omitted rather than filled. A non-positive interval
// returns the samples sorted and unaggregated.
func Resample(points []schema.TimePoint, interval int64, agg schema.Aggregation) []schema.TimePoint {
	if len(points) == 0 {
		return nil
	}
	sorted := Sorted(points)
	if interval <= 0 {
		return sorted
	}

	origin := sorted[0].Timestamp
	var out []schema.TimePoint
	var (
		bucket int64 = -1
		sum    float64
		count  int
		last   float64
	)
	flush := func() {
		if count == 0 {
			return
		}
		v := last
		if agg == schema.AggAvg {
			v = sum / float64(count)
		}
		out = append(out, schema.TimePoint{Timestamp: origin + bucket*interval, Value: v})
	}

	for _, p := range sorted {
		idx := (p.Timestamp - origin) / interval
		if idx != bucket {
			flush()
			bucket, sum, count = idx, 0, 0
		}
		sum += p.Value
		count++
		last = p.Value
	}
	flush()
	return out
}

// Latest returns the chronologically last sample.
func Latest(points []schema.TimePoint) (schema.TimePoint, bool) {
	if len(points) == 0 {
		return schema.TimePoint{}, false
	}
	sorted := Sorted(points)
	return sorted[len(sorted)-1], true
}
