package report

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/huangsam/hunterstats/core/window"
)

// Comment categories.
const (
	CommentCompletion   = "completion"
	CommentSpeed        = "speed"
	CommentSpeedRocket  = "speed_rocket"
	CommentShootingStar = "shooting_star"
	CommentAchieved     = "achieved"
	CommentApproaching  = "approaching"
	CommentNoMilestones = "no_milestones"
)

// comments holds the templates per category. Placeholders are {user}, {milestone}, {emoji}
// and {remaining}.
var comments = map[string][]string{
	CommentCompletion: {
		"Slow and steady progress!",
		"Consistent progress as always!",
		"Every range brings us closer!",
		"Keep pushing forward!",
		"Solid improvement today!",
		"Right on track!",
	},
	CommentSpeed: {
		"Speed looks good!",
		"Excellent pace!",
		"Holding a steady tempo!",
		"Great momentum!",
		"Speed stays strong!",
		"Perfect pace!",
	},
	CommentSpeedRocket: {
		"{user} is today's speed rocket!",
		"Zoom! {user} is blasting past everyone!",
		"{user} is flying high with top speed!",
		"Speedster {user} is unstoppable!",
		"{user} broke through the speed barrier!",
	},
	CommentShootingStar: {
		"{user} is today's shooting star! 🌠",
		"{user} leaves a bright trail across the sky! 🌠",
		"Stellar run by {user}, today's shooting star! 🌠",
		"Sky-high and steady! {user} is today's shooting star! 🌠",
	},
	CommentAchieved: {
		"Great job, {user}! You've reached {milestone} ranges! {emoji}",
		"{user} unlocked a new tier with {milestone} ranges! {emoji}",
		"Congrats {user}! {milestone} ranges accomplished! {emoji}",
		"Well done, {user}! {milestone} ranges reached! {emoji}",
	},
	CommentApproaching: {
		"{user} is approaching the {milestone} milestone! Only {remaining} ranges left! 😮🙏",
		"Almost there! {user} needs only {remaining} more ranges to reach {milestone}! 😮🙏",
		"Heads up! {user} is {remaining} ranges away from {milestone}! 😮🙏",
	},
	CommentNoMilestones: {
		"No new milestones today, but the journey continues!",
		"No milestones reached today, keep pushing!",
		"Another day, another step forward!",
		"Progress is being made, keep it up!",
	},
}

// Picker chooses comments from a generator seeded by the report's civil date,
// so the same day and inputs always read the same.
type Picker struct {
	rng *rand.Rand
}

// NewPicker seeds a picker from the calendar's current civil day.
func NewPicker(cal window.Calendar) *Picker {
	h := fnv.New64a()
	_, _ = h.Write([]byte(cal.DayLabel(0)))
	seed := h.Sum64()
	return &Picker{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Pick returns a comment of the category. vars are placeholder and value pairs.
func (p *Picker) Pick(category string, vars ...string) string {
	options := comments[category]
	if len(options) == 0 {
		return "No comment available."
	}
	text := options[p.rng.IntN(len(options))]
	if len(vars) > 1 && len(vars)%2 == 0 {
		text = strings.NewReplacer(vars...).Replace(text)
	}
	return text
}
