package schema

import (
	"maps"
	"slices"
)

// MilestoneLevel is a fixed cumulative-range threshold with a display name and emoji.
type MilestoneLevel struct {
	Name      string `json:"name"`
	Threshold int64  `json:"threshold"`
	Emoji     string `json:"emoji"`
}

// Milestones is ordered by descending threshold. Lookups rely on this order.
var Milestones = []MilestoneLevel{
	{Name: "Diamond", Threshold: 1000000, Emoji: "💎"},
	{Name: "Pearl", Threshold: 500001, Emoji: "⚪️"},
	{Name: "Sapphire", Threshold: 250001, Emoji: "🔹"},
	{Name: "Ruby", Threshold: 100001, Emoji: "♦️"},
	{Name: "Emerald", Threshold: 50001, Emoji: "🟢"},
	{Name: "Platinum", Threshold: 25001, Emoji: "🪞"},
	{Name: "Gold", Threshold: 10001, Emoji: "🥇"},
	{Name: "Silver", Threshold: 5001, Emoji: "🥈"},
	{Name: "Bronze", Threshold: 1001, Emoji: "🥉"},
	{Name: "Copper", Threshold: 1, Emoji: "🟤"},
}

// AchievementState records, per user, the thresholds already notified.
// Thresholds are only ever added.
type AchievementState map[string]map[int64]struct{}

// Has reports whether the user already achieved the threshold.
func (s AchievementState) Has(user string, threshold int64) bool {
	_, ok := s[user][threshold]
	return ok
}

// With returns a copy of the state with the threshold added for the user.
func (s AchievementState) With(user string, threshold int64) AchievementState {
	out := s.Clone()
	if out[user] == nil {
		out[user] = make(map[int64]struct{})
	}
	out[user][threshold] = struct{}{}
	return out
}

// Clone returns a deep copy of the state.
func (s AchievementState) Clone() AchievementState {
	out := make(AchievementState, len(s))
	for user, set := range s {
		out[user] = maps.Clone(set)
	}
	return out
}

// Thresholds returns the user's achieved thresholds in ascending order.
func (s AchievementState) Thresholds(user string) []int64 {
	return slices.Sorted(maps.Keys(s[user]))
}

// Equal reports whether both states hold the same thresholds for the same users.
func (s AchievementState) Equal(other AchievementState) bool {
	if len(s) != len(other) {
		return false
	}
	for user, set := range s {
		o, ok := other[user]
		if !ok || len(o) != len(set) {
			return false
		}
		for th := range set {
			if _, ok := o[th]; !ok {
				return false
			}
		}
	}
	return true
}
