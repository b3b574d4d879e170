package series

import (
	"maps"
	"slices"
	"time"

	"github.com/huangsam/hunterstats/schema"
)

// Store is the in-memory view of every series touched by a run.
// Reads return copies, so callers never alias the stored slices.
type Store struct {
	scalars map[string]schema.ScalarSeries
	users   map[string]schema.UserSeriesCollection
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		scalars: make(map[string]schema.ScalarSeries),
		users:   make(map[string]schema.UserSeriesCollection),
	}
}

// PutScalar replaces the whole scalar record stored under key.
func (s *Store) PutScalar(key string, rec schema.ScalarSeries) {
	rec.History = slices.Clone(rec.History)
	s.scalars[key] = rec
}

// PutUsers replaces the whole per-user record stored under key.
func (s *Store) PutUsers(key string, rec schema.UserSeriesCollection) {
	s.users[key] = cloneUsers(rec)
}

// Append adds a point to a scalar series. Input order does not matter.
func (s *Store) Append(key string, p schema.TimePoint) {
	rec := s.scalars[key]
	rec.History = append(slices.Clip(rec.History), p)
	s.scalars[key] = rec
}

// SetCurrent records the latest observed value of a scalar series.
func (s *Store) SetCurrent(key string, v float64) {
	rec := s.scalars[key]
	rec.Current = v
	s.scalars[key] = rec
}

// SetBest records a new all-time best speed on a scalar record.
func (s *Store) SetBest(key string, speed float64, holder string) {
	rec := s.scalars[key]
	rec.BestSpeed = speed
	rec.BestSpeedHolder = holder
	s.scalars[key] = rec
}

// AppendUser adds a point to one user's sub-series.
func (s *Store) AppendUser(key, user string, p schema.UserPoint) {
	rec := s.users[key]
	if rec.Data == nil {
		rec.Data = make(map[string][]schema.UserPoint)
	}
	rec.Data[user] = append(slices.Clip(rec.Data[user]), p)
	s.users[key] = rec
}

// Scalar returns a copy of the record with its history in chronological order.
// A missing series yields an empty record.
func (s *Store) Scalar(key string) schema.ScalarSeries {
	rec := s.scalars[key]
	rec.History = Sorted(rec.History)
	return rec
}

// History returns the scalar series in chronological order.
func (s *Store) History(key string) []schema.TimePoint {
	return Sorted(s.scalars[key].History)
}

// Users returns a copy of the per-user record with every sub-series in chronological order.
func (s *Store) Users(key string) schema.UserSeriesCollection {
	rec := cloneUsers(s.users[key])
	for user, points := range rec.Data {
		rec.Data[user] = Sorted(points)
	}
	return rec
}

// UserHistory returns one user's samples in chronological order.
func (s *Store) UserHistory(key, user string) []schema.UserPoint {
	return Sorted(s.users[key].Data[user])
}

// ScalarKeys returns the keys of all scalar series in sorted order.
func (s *Store) ScalarKeys() []string {
	return slices.Sorted(maps.Keys(s.scalars))
}

// UserKeys returns the keys of all per-user records in sorted order.
func (s *Store) UserKeys() []string {
	return slices.Sorted(maps.Keys(s.users))
}

// Prune drops every point older than maxAgeDays from every series and user sub-series.
// Users left without samples are removed.
func (s *Store) Prune(now time.Time, maxAgeDays int) {
	cutoff := Cutoff(now, maxAgeDays)
	for key, rec := range s.scalars {
		rec.History = Prune(rec.History, cutoff)
		s.scalars[key] = rec
	}
	for key, rec := range s.users {
		data := make(map[string][]schema.UserPoint, len(rec.Data))
		for user, points := range rec.Data {
			if kept := Prune(points, cutoff); len(kept) > 0 {
				data[user] = kept
			}
		}
		s.users[key] = schema.UserSeriesCollection{Data: data}
	}
}

func cloneUsers(rec schema.UserSeriesCollection) schema.UserSeriesCollection {
	data := make(map[string][]schema.UserPoint, len(rec.Data))
	for user, points := range rec.Data {
		data[user] = slices.Clone(points)
	}
	return schema.UserSeriesCollection{Data: data}
}
