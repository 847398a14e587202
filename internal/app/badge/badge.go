// Package badge evaluates unlock rules and awards each badge exactly once.
// Idempotency lives at the storage boundary: the (account, badge) primary key
// arbitrates concurrent triggers, not an in-memory check.
package badge

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wellspring-health/wellspring/internal/domain"
	"github.com/wellspring-health/wellspring/internal/infra/metrics"
)

// Engine checks unlock conditions against progress counts.
type Engine struct {
	store      domain.BadgeStore
	activities domain.ActivityStore
	defs       []domain.BadgeDefinition
}

// NewEngine creates a badge engine with the full catalog.
func NewEngine(store domain.BadgeStore, activities domain.ActivityStore) *Engine {
	return &Engine{
		store:      store,
		activities: activities,
		defs:       Catalog(),
	}
}

// CheckUnlocks evaluates every definition whose kind matches the trigger
// context and awards those newly met. For each fresh unlock it appends a flat
// BADGE_EARNED activity to the ledger; it never re-enters itself, so a badge
// bonus cannot trigger further badge evaluation.
//
// Returns the newly unlocked definitions (already-held badges are skipped).
func (e *Engine) CheckUnlocks(accountID string, counts domain.ProgressCounts, now time.Time) ([]domain.BadgeDefinition, error) {
	var unlocked []domain.BadgeDefinition

	for _, def := range e.defs {
		if !eligible(def, counts, now) {
			continue
		}

		// Fast path: skip badges we already hold.
		has, err := e.store.HasBadge(accountID, def.ID)
		if err != nil {
			return nil, err
		}
		if has {
			continue
		}

		// The insert arbitrates races: only one concurrent trigger sees
		// isNew == true.
		isNew, err := e.store.AwardBadge(accountID, def.ID, now)
		if err != nil {
			return nil, err
		}
		if !isNew {
			continue
		}

		if err := e.appendBonus(accountID, def, now); err != nil {
			return nil, fmt.Errorf("badge %s bonus: %w", def.ID, err)
		}
		metrics.BadgesUnlocked.WithLabelValues(def.ID).Inc()
		unlocked = append(unlocked, def)
	}

	return unlocked, nil
}

// Definitions returns the full catalog (for display).
func (e *Engine) Definitions() []domain.BadgeDefinition {
	return e.defs
}

// Badges returns the account's earned badges.
func (e *Engine) Badges(accountID string) ([]domain.UserBadge, error) {
	return e.store.ListBadges(accountID)
}

// appendBonus records the flat badge bonus in the ledger and the day's
// aggregate. Account totals are applied by the points ledger afterward — it
// owns all account writes.
func (e *Engine) appendBonus(accountID string, def domain.BadgeDefinition, now time.Time) error {
	if def.Bonus <= 0 {
		return nil
	}
	activity := domain.PointActivity{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Type:        domain.ActivityBadgeEarned,
		Points:      def.Bonus,
		Timestamp:   now,
		Description: "Badge earned: " + def.Name,
	}
	if err := e.activities.InsertActivity(activity); err != nil {
		return err
	}
	return e.activities.UpsertDailyActivity(accountID, domain.DayKey(now), def.Bonus, activity.ID)
}

// eligible reports whether a definition's unlock condition is met in this
// trigger context.
func eligible(def domain.BadgeDefinition, counts domain.ProgressCounts, now time.Time) bool {
	switch def.Kind {
	case domain.BadgeKindActivityCount:
		return counts.Trigger == def.Activity && counts.ActivityCount >= def.Threshold
	case domain.BadgeKindStreak:
		return counts.StreakDays >= def.Threshold
	case domain.BadgeKindCommunityPosts:
		return communityTrigger(counts.Trigger) && counts.CommunityPosts >= def.Threshold
	case domain.BadgeKindTierReached:
		return counts.TierReached != "" && counts.TierReached == def.Tier
	case domain.BadgeKindTimeOfDay:
		return hourInWindow(now.Hour(), def.HourFrom, def.HourTo)
	default:
		return false
	}
}

func communityTrigger(t domain.ActivityType) bool {
	return t == domain.ActivityForumPost || t == domain.ActivityForumComment
}

// hourInWindow checks [from, to) on the wall clock, wrapping past midnight
// when from > to (e.g. 22–2).
func hourInWindow(hour, from, to int) bool {
	if from <= to {
		return hour >= from && hour < to
	}
	return hour >= from || hour < to
}
