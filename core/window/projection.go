package window

import (
	"math"
	"time"

	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/schema"
)

// maxProjectionSeconds keeps the projection inside time.Duration's range.
const maxProjectionSeconds = float64(math.MaxInt64 / int64(time.Second))

// EstimateCompletionTime projects when current reaches target from the progress rate of the
// last lastN samples. Only segments with positive elapsed time and positive progress count.
func EstimateCompletionTime(history []schema.TimePoint, current float64, now time.Time, target float64, lastN int) (time.Time, bool) {
	if len(history) < 2 {
		return time.Time{}, false
	}
	sorted := series.Sorted(history)
	if lastN > 0 && len(sorted) > lastN {
		sorted = sorted[len(sorted)-lastN:]
	}

	var sumDt, sumDv float64
	for i := 1; i < len(sorted); i++ {
		dt := float64(sorted[i].Timestamp - sorted[i-1].Timestamp)
		dv := sorted[i].Value - sorted[i-1].Value
		if dt <= 0 || dv <= 0 {
			continue
		}
		sumDt += dt
		sumDv += dv
	}
	if sumDt == 0 {
		return time.Time{}, false
	}

	rate := sumDv / sumDt
	remaining := target - current
	if rate <= 0 || remaining <= 0 {
		return time.Time{}, false
	}
	seconds := remaining / rate
	if seconds >= maxProjectionSeconds {
		return time.Time{}, false
	}
	return now.Add(time.Duration(seconds * float64(time.Second))), true
}
