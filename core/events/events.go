// Package events detects the transient daily awards: heroes, the speed rocket and the shooting star.
//
// Every detector looks at a rolling window ending now, not at civil days. Users are visited in
// ascending name order so that ties resolve alphabetically.
package events

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/schema"
)

// Shooting star gates.
const (
	StarStartSpeed     = 50.0
	StarGateSpeed      = 120.0
	StarMinimumSeconds = 21600
)

// DefaultWindow is the trailing window used by the daily report.
const DefaultWindow = 24 * time.Hour

// inWindow returns the user's samples inside the trailing window in chronological order.
func inWindow(points []schema.UserPoint, now time.Time, window time.Duration) []schema.UserPoint {
	from := now.Unix() - int64(window/time.Second)
	return series.Sorted(series.Since(points, from))
}

func sortedUsers(users schema.UserSeriesCollection) []string {
	return slices.Sorted(maps.Keys(users.Data))
}

// DailyHeroes ranks users with at least two samples in the window by the ranges they added.
// Regressions count as zero. Ranks start at 1.
func DailyHeroes(users schema.UserSeriesCollection, now time.Time, window time.Duration) []schema.Hero {
	var heroes []schema.Hero
	for _, user := range sortedUsers(users) {
		points := inWindow(users.Data[user], now, window)
		if len(points) < 2 {
			continue
		}
		first, last := points[0], points[len(points)-1]
		heroes = append(heroes, schema.Hero{
			User:       user,
			RangeDelta: max(last.Ranges-first.Ranges, 0),
			Speed:      last.Speed,
		})
	}

	slices.SortStableFunc(heroes, func(a, b schema.Hero) int {
		return cmp.Compare(b.RangeDelta, a.RangeDelta)
	})
	for i := range heroes {
		heroes[i].Rank = i + 1
	}
	return heroes
}

// SpeedRocket returns the highest instantaneous speed sample in the window.
func SpeedRocket(users schema.UserSeriesCollection, now time.Time, window time.Duration) (schema.SpeedRocket, bool) {
	var best schema.SpeedRocket
	found := false
	for _, user := range sortedUsers(users) {
		for _, p := range inWindow(users.Data[user], now, window) {
			if !found || p.Speed > best.Speed {
				best = schema.SpeedRocket{User: user, Speed: p.Speed}
				found = true
			}
		}
	}
	return best, found
}

// ShootingStar returns the user that sustained the gate speed the longest, ranked by final speed
// and then qualifying time.
func ShootingStar(users schema.UserSeriesCollection, now time.Time, window time.Duration) (schema.ShootingStar, bool) {
	var candidates []schema.ShootingStar
	for _, user := range sortedUsers(users) {
		if star, ok := qualify(user, inWindow(users.Data[user], now, window)); ok {
			candidates = append(candidates, star)
		}
	}
	if len(candidates) == 0 {
		return schema.ShootingStar{}, false
	}

	slices.SortStableFunc(candidates, func(a, b schema.ShootingStar) int {
		return cmp.Or(
			cmp.Compare(b.FinalSpeed, a.FinalSpeed),
			cmp.Compare(b.QualifyingSeconds, a.QualifyingSeconds),
		)
	})
	return candidates[0], true
}

func qualify(user string, points []schema.UserPoint) (schema.ShootingStar, bool) {
	if len(points) < 2 || points[0].Speed < StarStartSpeed {
		return schema.ShootingStar{}, false
	}
	var seconds int64
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if (prev.Speed+cur.Speed)/2 >= StarGateSpeed {
			seconds += cur.Timestamp - prev.Timestamp
		}
	}
	if seconds < StarMinimumSeconds {
		return schema.ShootingStar{}, false
	}
	return schema.ShootingStar{
		User:              user,
		FinalSpeed:        points[len(points)-1].Speed,
		QualifyingSeconds: seconds,
	}, true
}
