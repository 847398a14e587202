package domain

import (
	"context"
	"time"
)

// ─── Repository Ports ───────────────────────────────────────────────────────
// Business logic depends on these interfaces, never on the sqlite package
// directly, so tests can substitute fakes and the storage engine can change
// without touching the services.

// AccountStore owns account rows. Writes go through the version-guarded
// UpdateAccount; a lost race returns ErrConcurrentUpdate.
type AccountStore interface {
	// GetAccount returns (nil, nil) when the account does not exist.
	GetAccount(id string) (*Account, error)
	CreateAccount(a Account) error
	// UpdateAccount persists a only if a.Version still matches the stored
	// row, then bumps the version. Returns ErrConcurrentUpdate on mismatch.
	UpdateAccount(a Account) error
}

// ActivityStore owns the append-only point ledger and daily aggregates.
type ActivityStore interface {
	// InsertActivity is idempotent on the activity ID: replaying the same
	// record is a no-op.
	InsertActivity(a PointActivity) error
	// HasActivity is a single indexed existence query, not a history scan.
	HasActivity(accountID string, t ActivityType) (bool, error)
	ActivityCount(accountID string, t ActivityType) (int, error)
	RecentActivities(accountID string, n int) ([]PointActivity, error)
	// GetDailyActivity returns (nil, nil) when no aggregate exists for date.
	GetDailyActivity(accountID, date string) (*DailyActivity, error)
	// UpsertDailyActivity atomically adds points and appends the activity ID
	// to the day's aggregate, creating it on first use.
	UpsertDailyActivity(accountID, date string, points int64, activityID string) error
}

// BadgeStore owns earned badges. AwardBadge is the idempotent
// check-then-award primitive: uniqueness is enforced by the storage layer,
// not by an in-memory check, so concurrent triggers cannot both win.
type BadgeStore interface {
	HasBadge(accountID, badgeID string) (bool, error)
	// AwardBadge returns true only for the caller that actually inserted
	// the row.
	AwardBadge(accountID, badgeID string, at time.Time) (bool, error)
	ListBadges(accountID string) ([]UserBadge, error)
}

// ChallengeStore reads the challenge and achievement history kept by the
// wider application.
type ChallengeStore interface {
	UserChallenges(accountID string) ([]UserChallenge, error)
	UserAchievements(accountID string) ([]UserAchievement, error)
}

// NotificationStore owns the user-facing notification queue.
type NotificationStore interface {
	InsertNotification(n Notification) (int64, error)
	NotificationCountOn(accountID, date string) (int, error)
	PendingNotifications(accountID string, limit int) ([]Notification, error)
	MarkNotificationShown(id int64) error
}

// ─── External Collaborators ─────────────────────────────────────────────────

// CandidateGenerator produces one challenge candidate per requested type.
// Implementations may be slow or fail; callers bound each request with a
// context deadline and treat failure as a non-fatal skip.
type CandidateGenerator interface {
	GenerateCandidate(ctx context.Context, t ChallengeType, profile UserHealthProfile) (*ChallengeCandidate, error)
}
