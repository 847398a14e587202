package domain

import "math"

// Rules is the immutable configuration of the points economy. It is built
// once at startup (defaults overlaid with the config file) and injected into
// each component — there is no shared mutable table.
type Rules struct {
	BasePoints        map[ActivityType]int64
	WeekendBonus      int64
	FirstTimeBonus    int64
	StreakBonusPerDay int64
	StreakBonusCap    int64
	Tiers             []Tier
	BaseTimeMinutes   map[Difficulty]int
	PointsMultiplier  map[Difficulty]float64
}

// StreakBonus returns min(streakDays × per-day rate, cap) for the streak as
// of immediately before the event being awarded.
func (r Rules) StreakBonus(streakDays int) int64 {
	bonus := int64(streakDays) * r.StreakBonusPerDay
	if bonus > r.StreakBonusCap {
		bonus = r.StreakBonusCap
	}
	return bonus
}

// DefaultRules returns the production point economy.
func DefaultRules() Rules {
	return Rules{
		BasePoints: map[ActivityType]int64{
			ActivitySymptomLog:         15,
			ActivityDailyCheckIn:       10,
			ActivityChallengeCompleted: 25,
			ActivityForumPost:          10,
			ActivityForumComment:       5,
			ActivityChatSession:        5,
		},
		WeekendBonus:      5,
		FirstTimeBonus:    25,
		StreakBonusPerDay: 2,
		StreakBonusCap:    20,
		Tiers:             DefaultTiers(),
		BaseTimeMinutes: map[Difficulty]int{
			DifficultyEasy:   15,
			DifficultyMedium: 30,
			DifficultyHard:   45,
		},
		PointsMultiplier: map[Difficulty]float64{
			DifficultyEasy:   0.8,
			DifficultyMedium: 1.0,
			DifficultyHard:   1.3,
		},
	}
}

// DefaultTiers is the static tier table. Bands are inclusive on both ends
// and partition [0, ∞); the top band runs to MaxInt64.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Beginner", MinPoints: 0, MaxPoints: 99},
		{Name: "Explorer", MinPoints: 100, MaxPoints: 499},
		{Name: "Achiever", MinPoints: 500, MaxPoints: 1499},
		{Name: "Champion", MinPoints: 1500, MaxPoints: 4999},
		{Name: "Legend", MinPoints: 5000, MaxPoints: math.MaxInt64},
	}
}
