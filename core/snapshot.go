package core

import (
	"errors"
	"log/slog"
	"time"

	"github.com/huangsam/hunterstats/core/series"
	"github.com/huangsam/hunterstats/internal/contract"
	"github.com/huangsam/hunterstats/internal/records"
	"github.com/huangsam/hunterstats/schema"
)

// snapshot is the persisted state loaded at the start of a cycle.
// Only the records that existed in the store are marked as loaded.
type snapshot struct {
	series       *series.Store
	achievements schema.AchievementState
	loaded       map[string]bool
}

func newSnapshot() *snapshot {
	return &snapshot{
		series:       series.NewStore(),
		achievements: schema.AchievementState{},
		loaded:       make(map[string]bool),
	}
}

// readRecord fetches the raw record at key. Missing records and read failures
// both yield false: an absent record is an empty default, never an error.
func readRecord(state contract.StateStore, key string) ([]byte, bool) {
	if state == nil {
		return nil, false
	}
	data, version, _, err := state.Get(key)
	if errors.Is(err, contract.ErrStateNotFound) {
		slog.Debug("No persisted record", "key", key)
		return nil, false
	}
	if err != nil {
		contract.LogWarn("failed to read record "+key, err)
		return nil, false
	}
	if version > records.Version {
		slog.Warn("Record was written by a newer version", "key", key, "version", version)
	}
	return data, true
}

func logIssues(issues []records.Issue) {
	for _, issue := range issues {
		slog.Warn("Skipping malformed record entry", "key", issue.Key, "index", issue.Index, "user", issue.User, "reason", issue.Reason)
	}
}

func (s *snapshot) loadScalar(state contract.StateStore, key string) {
	data, ok := readRecord(state, key)
	if !ok {
		return
	}
	rec, issues := records.DecodeScalar(key, data)
	logIssues(issues)
	s.series.PutScalar(key, rec)
	s.loaded[key] = true
}

func (s *snapshot) loadUsers(state contract.StateStore, key string) {
	data, ok := readRecord(state, key)
	if !ok {
		return
	}
	rec, issues := records.DecodeUsers(key, data)
	logIssues(issues)
	s.series.PutUsers(key, rec)
	s.loaded[key] = true
}

func (s *snapshot) loadAchievements(state contract.StateStore) {
	data, ok := readRecord(state, records.AchievementsKey)
	if !ok {
		return
	}
	rec, issues := records.DecodeAchievements(records.AchievementsKey, data)
	logIssues(issues)
	s.achievements = rec
	s.loaded[records.AchievementsKey] = true
}

// loadSnapshot reads every record a report needs.
func loadSnapshot(state contract.StateStore, pools []string, primary string) *snapshot {
	snap := newSnapshot()
	for _, pool := range pools {
		snap.loadScalar(state, records.CompletionKey(pool))
		snap.loadScalar(state, records.SpeedKey(pool))
	}
	snap.loadScalar(state, records.TotalRangesKey(primary))
	snap.loadUsers(state, records.RangesKey(primary))
	snap.loadAchievements(state)
	return snap
}

func writeRecord(state contract.StateStore, key string, data []byte, now time.Time) error {
	if state == nil {
		return nil
	}
	return state.Set(key, data, records.Version, now.Unix())
}

func (s *snapshot) saveScalar(state contract.StateStore, key string, now time.Time) error {
	data, err := records.EncodeScalar(s.series.Scalar(key))
	if err != nil {
		return err
	}
	return writeRecord(state, key, data, now)
}

func (s *snapshot) saveUsers(state contract.StateStore, key string, now time.Time) error {
	data, err := records.EncodeUsers(s.series.Users(key))
	if err != nil {
		return err
	}
	return writeRecord(state, key, data, now)
}

func saveAchievements(state contract.StateStore, achievements schema.AchievementState, now time.Time) error {
	data, err := records.EncodeAchievements(achievements)
	if err != nil {
		return err
	}
	return writeRecord(state, records.AchievementsKey, data, now)
}
