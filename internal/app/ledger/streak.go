package ledger

import (
	"fmt"
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// Tracker maintains consecutive-active-day counts from the daily aggregates.
// A day is "active" when its aggregate has more than zero points.
type Tracker struct {
	activities domain.ActivityStore
}

// NewTracker creates a streak tracker.
func NewTracker(activities domain.ActivityStore) *Tracker {
	return &Tracker{activities: activities}
}

// Update applies the streak rule to the account in place:
//
//   - active today and active yesterday: streak extends by one
//   - active today only: streak restarts at one
//   - inactive today, active yesterday: streak is left alone — it has not
//     expired yet and resets only on the next day's evaluation
//   - inactive both days: streak resets to zero
//
// LastActiveDay guards the extend case so that a second activity on the same
// day cannot extend the streak twice. LongestStreak tracks the high-water
// mark. The caller persists the account.
func (t *Tracker) Update(acct *domain.Account, now time.Time) error {
	today := domain.DayKey(now)
	yesterday := domain.DayKey(now.AddDate(0, 0, -1))

	todayActive, err := t.activeOn(acct.ID, today)
	if err != nil {
		return fmt.Errorf("read today's aggregate: %w", err)
	}
	yesterdayActive, err := t.activeOn(acct.ID, yesterday)
	if err != nil {
		return fmt.Errorf("read yesterday's aggregate: %w", err)
	}

	switch {
	case todayActive && yesterdayActive:
		if acct.LastActiveDay != today {
			acct.StreakDays++
		}
	case todayActive:
		acct.StreakDays = 1
	case yesterdayActive:
		// Not yet expired
	default:
		acct.StreakDays = 0
	}

	if todayActive {
		acct.LastActiveDay = today
	}
	if acct.StreakDays > acct.LongestStreak {
		acct.LongestStreak = acct.StreakDays
	}
	return nil
}

// activeOn reports whether the account earned any points on the given day.
func (t *Tracker) activeOn(accountID, date string) (bool, error) {
	day, err := t.activities.GetDailyActivity(accountID, date)
	if err != nil {
		return false, err
	}
	return day != nil && day.TotalPoints > 0, nil
}
