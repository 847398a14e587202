// Package recommend derives user health profiles and turns external
// challenge candidates into difficulty-adapted, confidence-scored,
// ranked recommendations.
package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// recentWindow bounds what counts as "recent" challenge and achievement
// activity when scoring engagement.
const recentWindow = 7 * 24 * time.Hour

// preferenceSample is how many of the newest completions inform the
// difficulty preference.
const preferenceSample = 5

// defaultCategory stands in when an account has no completed challenges yet.
const defaultCategory = "general"

// ProfileBuilder aggregates an account's challenge and achievement history
// into derived features. Profiles are computed on demand and never persisted.
type ProfileBuilder struct {
	accounts   domain.AccountStore
	challenges domain.ChallengeStore
}

// NewProfileBuilder creates a profile builder.
func NewProfileBuilder(accounts domain.AccountStore, challenges domain.ChallengeStore) *ProfileBuilder {
	return &ProfileBuilder{accounts: accounts, challenges: challenges}
}

// Build derives the profile as of now.
func (b *ProfileBuilder) Build(accountID string) (domain.UserHealthProfile, error) {
	return b.BuildAt(accountID, time.Now())
}

// BuildAt derives the profile as of the given time. Accepts a time parameter
// for testability.
func (b *ProfileBuilder) BuildAt(accountID string, now time.Time) (domain.UserHealthProfile, error) {
	var profile domain.UserHealthProfile

	acct, err := b.accounts.GetAccount(accountID)
	if err != nil {
		return profile, fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return profile, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}

	challenges, err := b.challenges.UserChallenges(accountID)
	if err != nil {
		return profile, fmt.Errorf("load challenges: %w", err)
	}
	achievements, err := b.challenges.UserAchievements(accountID)
	if err != nil {
		return profile, fmt.Errorf("load achievements: %w", err)
	}

	completed := completedOf(challenges)

	completionRate := 0.0
	if len(challenges) > 0 {
		completionRate = float64(len(completed)) / float64(len(challenges))
	}

	recentChallenges := 0
	for _, c := range completed {
		if now.Sub(c.CompletedAt) <= recentWindow {
			recentChallenges++
		}
	}
	recentAchievements := 0
	for _, a := range achievements {
		if now.Sub(a.EarnedAt) <= recentWindow {
			recentAchievements++
		}
	}

	engagement := clamp(float64(recentChallenges)*20+completionRate*50+float64(recentAchievements)*10, 0, 100)

	level := len(completed)/5 + 1 + int(acct.LifetimePoints/100) + completionBonus(completionRate)
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}

	return domain.UserHealthProfile{
		CompletionRate:       completionRate,
		PreferredCategories:  preferredCategories(completed),
		EngagementScore:      engagement,
		CurrentLevel:         level,
		DifficultyPreference: difficultyPreference(completed, completionRate),
		StreakCount:          completionStreak(completed, now),
		LifetimePoints:       acct.LifetimePoints,
	}, nil
}

// completedOf filters to completed challenges, newest completion first.
func completedOf(challenges []domain.UserChallenge) []domain.UserChallenge {
	var completed []domain.UserChallenge
	for _, c := range challenges {
		if c.Status == domain.ChallengeCompleted && !c.CompletedAt.IsZero() {
			completed = append(completed, c)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(completed[j].CompletedAt)
	})
	return completed
}

// completionBonus rewards consistently high completion rates in the level
// formula: +2 above 80%, +1 above 60%.
func completionBonus(rate float64) int {
	switch {
	case rate > 0.8:
		return 2
	case rate > 0.6:
		return 1
	default:
		return 0
	}
}

// preferredCategories returns the top three categories by completion
// frequency, ties broken alphabetically. An empty history yields the single
// general category.
func preferredCategories(completed []domain.UserChallenge) []string {
	if len(completed) == 0 {
		return []string{defaultCategory}
	}

	freq := make(map[string]int)
	for _, c := range completed {
		freq[c.Category]++
	}

	categories := make([]string, 0, len(freq))
	for cat := range freq {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		if freq[categories[i]] != freq[categories[j]] {
			return freq[categories[i]] > freq[categories[j]]
		}
		return categories[i] < categories[j]
	})

	if len(categories) > 3 {
		categories = categories[:3]
	}
	return categories
}

// difficultyPreference is the most frequent difficulty among the last five
// completions, escalated one notch when the completion rate is strong and
// forced to easy when the user struggles. Ties go to the most recent
// completion's difficulty.
func difficultyPreference(completed []domain.UserChallenge, completionRate float64) domain.Difficulty {
	if completionRate < 0.5 {
		return domain.DifficultyEasy
	}

	sample := completed
	if len(sample) > preferenceSample {
		sample = sample[:preferenceSample]
	}

	pref := domain.DifficultyEasy
	if len(sample) > 0 {
		counts := make(map[domain.Difficulty]int)
		for _, c := range sample {
			counts[c.Difficulty]++
		}
		best := 0
		for _, c := range sample { // recent-first: first to reach max wins ties
			if counts[c.Difficulty] > best {
				best = counts[c.Difficulty]
				pref = c.Difficulty
			}
		}
	}

	switch {
	case completionRate > 0.9 && pref == domain.DifficultyEasy:
		return domain.DifficultyMedium
	case completionRate > 0.8 && pref == domain.DifficultyMedium:
		return domain.DifficultyHard
	}
	return pref
}

// completionStreak counts consecutive completed-challenge days walking
// backward from now, tolerating gaps of at most one day between consecutive
// completions before breaking.
func completionStreak(completed []domain.UserChallenge, now time.Time) int {
	if len(completed) == 0 {
		return 0
	}

	// Unique completion days, newest first.
	seen := make(map[string]bool)
	var days []time.Time
	for _, c := range completed {
		key := domain.DayKey(c.CompletedAt)
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, dayStart(c.CompletedAt))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 0
	prev := dayStart(now)
	for _, d := range days {
		gap := int(prev.Sub(d).Hours() / 24)
		if gap > 2 { // more than a one-day gap
			break
		}
		streak++
		prev = d
	}
	return streak
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
