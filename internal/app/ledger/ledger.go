// Package ledger implements the points ledger: base values, bonuses, tier
// recomputation, streak maintenance, and badge triggering, all within one
// logical transaction per award.
package ledger

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/wellspring-health/wellspring/internal/app/badge"
	"github.com/wellspring-health/wellspring/internal/domain"
	"github.com/wellspring-health/wellspring/internal/infra/metrics"
)

// maxUpdateRetries bounds the optimistic read-modify-write loop on account
// rows. Conflicts re-read and re-apply the delta; the ledger append itself is
// idempotent on its UUID, so a retry never double-counts.
const maxUpdateRetries = 3

// recentActivityLimit is how many ledger records a points summary includes.
const recentActivityLimit = 10

// Notifier queues user-facing celebrations for ledger events. Volume policy
// (daily caps, quiet hours) is the notifier's concern; a failure or
// suppression never fails an award.
type Notifier interface {
	BadgeUnlocked(accountID string, def domain.BadgeDefinition, now time.Time) (int64, error)
	TierUp(accountID, tier string, now time.Time) (int64, error)
}

// Service is the points ledger. It is the only writer of account rows.
type Service struct {
	accounts   domain.AccountStore
	activities domain.ActivityStore
	badges     *badge.Engine
	streaks    *Tracker
	rules      domain.Rules
	notifier   Notifier
}

// NewService creates a points ledger.
func NewService(accounts domain.AccountStore, activities domain.ActivityStore, badges *badge.Engine, rules domain.Rules) *Service {
	return &Service{
		accounts:   accounts,
		activities: activities,
		badges:     badges,
		streaks:    NewTracker(activities),
		rules:      rules,
	}
}

// SetNotifier attaches a notifier for tier-up and badge-unlock celebrations.
// Without one, awards proceed silently.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

// AwardPoints records a point-earning event at the current time.
func (s *Service) AwardPoints(accountID string, t domain.ActivityType, meta domain.ActivityMetadata) (domain.AwardResult, error) {
	return s.AwardPointsAt(accountID, t, meta, time.Now())
}

// AwardPointsAt records a point-earning event at the given time. Accepts a
// time parameter for testability.
//
// Bonuses are computed from the state read before this event's own increment
// is applied: the weekend bonus from the event date, the first-time bonus
// from an indexed existence check, and the streak bonus from the streak as it
// stood entering the event. InvalidActivityType, MalformedMetadata, and
// AccountNotFound fail the call before any write happens.
func (s *Service) AwardPointsAt(accountID string, t domain.ActivityType, meta domain.ActivityMetadata, now time.Time) (domain.AwardResult, error) {
	var result domain.AwardResult

	base, ok := s.rules.BasePoints[t]
	if !ok {
		return result, fmt.Errorf("%w: %q", domain.ErrInvalidActivityType, t)
	}
	if meta != nil && meta.ActivityKind() != t {
		return result, fmt.Errorf("%w: %s metadata on a %s event", domain.ErrMalformedMetadata, meta.ActivityKind(), t)
	}

	started := time.Now()
	defer func() { metrics.AwardLatency.Observe(time.Since(started).Seconds()) }()

	acct, err := s.accounts.GetAccount(accountID)
	if err != nil {
		return result, fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return result, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}

	// Bonuses from pre-event state.
	var bonus domain.BonusBreakdown
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		bonus.Weekend = s.rules.WeekendBonus
	}
	seen, err := s.activities.HasActivity(accountID, t)
	if err != nil {
		return result, fmt.Errorf("first-time check: %w", err)
	}
	if !seen {
		bonus.FirstTime = s.rules.FirstTimeBonus
	}
	bonus.Streak = s.rules.StreakBonus(acct.StreakDays)

	total := base + bonus.Weekend + bonus.FirstTime + bonus.Streak

	description := string(t)
	if meta != nil {
		description = meta.Describe()
	}
	activity := domain.PointActivity{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Type:        t,
		Points:      total,
		Bonus:       bonus,
		Timestamp:   now,
		Description: description,
	}
	if err := s.activities.InsertActivity(activity); err != nil {
		return result, fmt.Errorf("append activity: %w", err)
	}

	today := domain.DayKey(now)
	if err := s.activities.UpsertDailyActivity(accountID, today, total, activity.ID); err != nil {
		return result, fmt.Errorf("upsert daily aggregate: %w", err)
	}

	// Apply the delta, recompute tier, and advance the streak — one logical
	// transaction against the account row.
	var tierChanged bool
	var newTier domain.TierInfo
	updated, err := s.mutateAccount(accountID, func(a *domain.Account) error {
		before := TierFor(s.rules.Tiers, a.LifetimePoints)
		a.LifetimePoints += total
		a.SpendablePoints += total
		newTier = TierFor(s.rules.Tiers, a.LifetimePoints)
		tierChanged = newTier.Name != before.Name
		a.Tier = newTier.Name
		return s.streaks.Update(a, now)
	})
	if err != nil {
		return result, err
	}

	metrics.PointsAwarded.WithLabelValues(string(t)).Add(float64(total))
	if tierChanged {
		metrics.TierChanges.WithLabelValues(newTier.Name).Inc()
	}

	// Badge evaluation runs last, against the updated counters.
	counts, err := s.progressCounts(updated, t, tierChanged, newTier.Name)
	if err != nil {
		return result, err
	}
	unlocked, err := s.badges.CheckUnlocks(accountID, counts, now)
	if err != nil {
		return result, fmt.Errorf("badge check: %w", err)
	}

	// Badge bonuses land on the account here — the engine only appends the
	// ledger records, and never re-enters itself.
	var badgeBonus int64
	badgeIDs := make([]string, 0, len(unlocked))
	for _, def := range unlocked {
		badgeBonus += def.Bonus
		badgeIDs = append(badgeIDs, def.ID)
	}
	if badgeBonus > 0 {
		if _, err := s.mutateAccount(accountID, func(a *domain.Account) error {
			a.LifetimePoints += badgeBonus
			a.SpendablePoints += badgeBonus
			a.Tier = TierFor(s.rules.Tiers, a.LifetimePoints).Name
			return nil
		}); err != nil {
			return result, fmt.Errorf("apply badge bonus: %w", err)
		}
	}

	if s.notifier != nil {
		if tierChanged {
			if _, err := s.notifier.TierUp(accountID, newTier.Name, now); err != nil {
				log.Printf("[ledger] tier-up notification skipped: %v", err)
			}
		}
		for _, def := range unlocked {
			if _, err := s.notifier.BadgeUnlocked(accountID, def, now); err != nil {
				log.Printf("[ledger] badge notification skipped: %v", err)
			}
		}
	}

	result = domain.AwardResult{
		TotalPointsAwarded: total,
		NewTier:            newTier.Name,
		TierChanged:        tierChanged,
		BadgesUnlocked:     badgeIDs,
	}
	return result, nil
}

// GetPointsSummary returns the account's current standing.
func (s *Service) GetPointsSummary(accountID string) (domain.PointsSummary, error) {
	return s.GetPointsSummaryAt(accountID, time.Now())
}

// GetPointsSummaryAt returns the standing as of the given time. Reading a
// summary also settles an expired streak: two consecutive inactive days
// lazily reset the count to zero.
func (s *Service) GetPointsSummaryAt(accountID string, now time.Time) (domain.PointsSummary, error) {
	var summary domain.PointsSummary

	acct, err := s.accounts.GetAccount(accountID)
	if err != nil {
		return summary, fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return summary, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}

	settled := *acct
	if err := s.streaks.Update(&settled, now); err != nil {
		return summary, err
	}
	if settled.StreakDays != acct.StreakDays {
		updated, err := s.mutateAccount(accountID, func(a *domain.Account) error {
			return s.streaks.Update(a, now)
		})
		if err != nil {
			return summary, err
		}
		acct = updated
	}

	tier := TierFor(s.rules.Tiers, acct.LifetimePoints)

	var todayPoints int64
	if day, err := s.activities.GetDailyActivity(accountID, domain.DayKey(now)); err != nil {
		return summary, err
	} else if day != nil {
		todayPoints = day.TotalPoints
	}

	recent, err := s.activities.RecentActivities(accountID, recentActivityLimit)
	if err != nil {
		return summary, err
	}
	badges, err := s.badges.Badges(accountID)
	if err != nil {
		return summary, err
	}

	return domain.PointsSummary{
		CurrentPoints:     acct.SpendablePoints,
		LifetimePoints:    acct.LifetimePoints,
		Tier:              tier.Name,
		NextTierThreshold: tier.NextTierThreshold,
		StreakDays:        acct.StreakDays,
		TodayPoints:       todayPoints,
		RecentActivities:  recent,
		Badges:            badges,
	}, nil
}

// CreateAccount registers a new account at the lowest tier.
func (s *Service) CreateAccount(accountID string, now time.Time) (domain.Account, error) {
	acct := domain.Account{
		ID:        accountID,
		Tier:      TierFor(s.rules.Tiers, 0).Name,
		CreatedAt: now,
	}
	if err := s.accounts.CreateAccount(acct); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

// progressCounts assembles the badge trigger context from updated counters.
func (s *Service) progressCounts(acct *domain.Account, trigger domain.ActivityType, tierChanged bool, tierName string) (domain.ProgressCounts, error) {
	activityCount, err := s.activities.ActivityCount(acct.ID, trigger)
	if err != nil {
		return domain.ProgressCounts{}, fmt.Errorf("activity count: %w", err)
	}
	communityPosts := 0
	if trigger == domain.ActivityForumPost || trigger == domain.ActivityForumComment {
		communityPosts, err = s.activities.ActivityCount(acct.ID, domain.ActivityForumPost)
		if err != nil {
			return domain.ProgressCounts{}, fmt.Errorf("community count: %w", err)
		}
	}
	counts := domain.ProgressCounts{
		Trigger:        trigger,
		ActivityCount:  activityCount,
		StreakDays:     acct.StreakDays,
		CommunityPosts: communityPosts,
	}
	if tierChanged {
		counts.TierReached = tierName
	}
	return counts, nil
}

// mutateAccount runs a bounded optimistic read-modify-write cycle: read the
// row, apply mutate, write back version-guarded, retry on conflict.
func (s *Service) mutateAccount(accountID string, mutate func(*domain.Account) error) (*domain.Account, error) {
	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		acct, err := s.accounts.GetAccount(accountID)
		if err != nil {
			return nil, fmt.Errorf("get account: %w", err)
		}
		if acct == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
		}
		if err := mutate(acct); err != nil {
			return nil, err
		}
		err = s.accounts.UpdateAccount(*acct)
		if err == nil {
			return acct, nil
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, fmt.Errorf("update account: %w", err)
		}
		metrics.AwardConflicts.Inc()
		lastErr = err
	}
	return nil, lastErr
}
