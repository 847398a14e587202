// Package domain holds the pure types of the gamification engine.
// No infrastructure imports — storage and transport depend on domain,
// never the other way around.
package domain

import "time"

// ─── Activity Types ─────────────────────────────────────────────────────────

// ActivityType is the closed set of point-earning activities.
type ActivityType string

const (
	ActivitySymptomLog         ActivityType = "SYMPTOM_LOG"
	ActivityDailyCheckIn       ActivityType = "DAILY_CHECK_IN"
	ActivityChallengeCompleted ActivityType = "CHALLENGE_COMPLETED"
	ActivityForumPost          ActivityType = "FORUM_POST"
	ActivityForumComment       ActivityType = "FORUM_COMMENT"
	ActivityChatSession        ActivityType = "CHAT_SESSION"

	// ActivityBadgeEarned is appended by the badge engine as a flat bonus.
	// It is never a valid input to AwardPoints.
	ActivityBadgeEarned ActivityType = "BADGE_EARNED"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

// Account is the single mutable aggregate of the points system.
// LifetimePoints is monotonic — it only ever grows. Version guards
// read-modify-write cycles at the storage boundary.
type Account struct {
	ID              string    `json:"id"`
	LifetimePoints  int64     `json:"lifetime_points"`
	SpendablePoints int64     `json:"spendable_points"`
	Tier            string    `json:"tier"`
	StreakDays      int       `json:"streak_days"`
	LongestStreak   int       `json:"longest_streak"`
	LastActiveDay   string    `json:"last_active_day"` // "2006-01-02", "" if never active
	Version         int64     `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// ─── Point Activities ───────────────────────────────────────────────────────

// BonusBreakdown records how an award's bonus points were composed.
type BonusBreakdown struct {
	Weekend   int64 `json:"weekend"`
	FirstTime int64 `json:"first_time"`
	Streak    int64 `json:"streak"`
}

// PointActivity is an immutable ledger record. The UUID primary key doubles
// as an idempotency key: a replayed insert is a no-op.
type PointActivity struct {
	ID          string         `json:"id"`
	AccountID   string         `json:"account_id"`
	Type        ActivityType   `json:"type"`
	Points      int64          `json:"points"`
	Bonus       BonusBreakdown `json:"bonus"`
	Timestamp   time.Time      `json:"timestamp"`
	Description string         `json:"description"`
}

// DailyActivity aggregates one account's activity for one calendar day.
type DailyActivity struct {
	AccountID   string   `json:"account_id"`
	Date        string   `json:"date"` // "2006-01-02"
	TotalPoints int64    `json:"total_points"`
	ActivityIDs []string `json:"activity_ids"`
}

// DayKey formats a time as the daily-aggregate calendar key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ─── Activity Metadata ──────────────────────────────────────────────────────

// ActivityMetadata is the closed tagged variant carried by an award request.
// Each activity kind has its own concrete type; the ledger rejects metadata
// whose kind does not match the activity being awarded.
type ActivityMetadata interface {
	ActivityKind() ActivityType
	Describe() string
}

// SymptomLogMetadata accompanies SYMPTOM_LOG activities.
type SymptomLogMetadata struct {
	Symptom  string `json:"symptom"`
	Severity int    `json:"severity"` // 1-10
}

func (SymptomLogMetadata) ActivityKind() ActivityType { return ActivitySymptomLog }
func (m SymptomLogMetadata) Describe() string         { return "Logged symptom: " + m.Symptom }

// DailyCheckInMetadata accompanies DAILY_CHECK_IN activities.
type DailyCheckInMetadata struct {
	Mood string `json:"mood"`
}

func (DailyCheckInMetadata) ActivityKind() ActivityType { return ActivityDailyCheckIn }
func (m DailyCheckInMetadata) Describe() string         { return "Daily check-in (" + m.Mood + ")" }

// ChallengeCompletedMetadata accompanies CHALLENGE_COMPLETED activities.
type ChallengeCompletedMetadata struct {
	ChallengeID string     `json:"challenge_id"`
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
}

func (ChallengeCompletedMetadata) ActivityKind() ActivityType { return ActivityChallengeCompleted }
func (m ChallengeCompletedMetadata) Describe() string {
	return "Completed challenge " + m.ChallengeID
}

// ForumPostMetadata accompanies FORUM_POST activities.
type ForumPostMetadata struct {
	PostID string `json:"post_id"`
	Title  string `json:"title"`
}

func (ForumPostMetadata) ActivityKind() ActivityType { return ActivityForumPost }
func (m ForumPostMetadata) Describe() string         { return "Posted: " + m.Title }

// ForumCommentMetadata accompanies FORUM_COMMENT activities.
type ForumCommentMetadata struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
}

func (ForumCommentMetadata) ActivityKind() ActivityType { return ActivityForumComment }
func (ForumCommentMetadata) Describe() string           { return "Commented on a community post" }

// ChatSessionMetadata accompanies CHAT_SESSION activities.
type ChatSessionMetadata struct {
	SessionID string `json:"session_id"`
	Messages  int    `json:"messages"`
}

func (ChatSessionMetadata) ActivityKind() ActivityType { return ActivityChatSession }
func (ChatSessionMetadata) Describe() string           { return "Chatted with the assistant" }

// ─── Tiers ──────────────────────────────────────────────────────────────────

// Tier is one band of the lifetime-points table. Bands are inclusive on both
// ends and partition [0, ∞) with no gaps or overlaps.
type Tier struct {
	Name      string `json:"name"`
	MinPoints int64  `json:"min_points"`
	MaxPoints int64  `json:"max_points"`
}

// TierInfo is the resolved tier for a points value.
type TierInfo struct {
	Name              string `json:"name"`
	NextTierThreshold int64  `json:"next_tier_threshold"`
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgeKind selects which trigger context a badge is evaluated against.
type BadgeKind string

const (
	BadgeKindActivityCount  BadgeKind = "activity_count"
	BadgeKindStreak         BadgeKind = "streak"
	BadgeKindCommunityPosts BadgeKind = "community_posts"
	BadgeKindTierReached    BadgeKind = "tier_reached"
	BadgeKindTimeOfDay      BadgeKind = "time_of_day"
)

// BadgeDefinition is a static unlock rule. Only the fields relevant to the
// Kind are set.
type BadgeDefinition struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Icon      string       `json:"icon"`
	Kind      BadgeKind    `json:"kind"`
	Activity  ActivityType `json:"activity,omitempty"` // activity_count
	Threshold int          `json:"threshold,omitempty"`
	Tier      string       `json:"tier,omitempty"`      // tier_reached
	HourFrom  int          `json:"hour_from,omitempty"` // time_of_day, inclusive
	HourTo    int          `json:"hour_to,omitempty"`   // time_of_day, exclusive
	Bonus     int64        `json:"bonus"`               // flat BADGE_EARNED points
}

// UserBadge records an earned badge. At most one row per (account, badge),
// enforced by the storage primary key.
type UserBadge struct {
	AccountID string    `json:"account_id"`
	BadgeID   string    `json:"badge_id"`
	EarnedAt  time.Time `json:"earned_at"`
}

// ProgressCounts is the trigger context handed to the badge engine after an
// award has been applied.
type ProgressCounts struct {
	Trigger        ActivityType
	ActivityCount  int    // count of Trigger activities, including this one
	StreakDays     int    // post-update streak
	CommunityPosts int    // FORUM_POST count
	TierReached    string // non-empty only when the tier changed on this event
}

// ─── Difficulty ─────────────────────────────────────────────────────────────

// Difficulty is the closed easy/medium/hard scale.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rank maps a difficulty to 0/1/2 for arithmetic adjustment.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	default:
		return 0
	}
}

// DifficultyFromRank clamps a rank back into the scale.
func DifficultyFromRank(rank int) Difficulty {
	switch {
	case rank <= 0:
		return DifficultyEasy
	case rank == 1:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// ─── Challenges & Achievements (history) ────────────────────────────────────

// ChallengeStatus tracks an assigned challenge's lifecycle.
type ChallengeStatus string

const (
	ChallengeAssigned  ChallengeStatus = "assigned"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeSkipped   ChallengeStatus = "skipped"
)

// UserChallenge is one assigned challenge in an account's history.
type UserChallenge struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Category    string          `json:"category"`
	Difficulty  Difficulty      `json:"difficulty"`
	Status      ChallengeStatus `json:"status"`
	AssignedAt  time.Time       `json:"assigned_at"`
	CompletedAt time.Time       `json:"completed_at"` // zero unless completed
}

// UserAchievement is a non-badge milestone recorded by the wider app.
type UserAchievement struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Title     string    `json:"title"`
	EarnedAt  time.Time `json:"earned_at"`
}

// ─── Recommendations ────────────────────────────────────────────────────────

// ChallengeType selects which generator persona produces a candidate.
type ChallengeType string

const (
	ChallengeDaily        ChallengeType = "daily"
	ChallengePersonalized ChallengeType = "personalized"
	ChallengeWeekly       ChallengeType = "weekly"
)

// DefaultChallengeTypes is the set requested when the caller passes none.
func DefaultChallengeTypes() []ChallengeType {
	return []ChallengeType{ChallengeDaily, ChallengePersonalized, ChallengeWeekly}
}

// UserHealthProfile is derived from history on demand — never persisted.
type UserHealthProfile struct {
	CompletionRate       float64    `json:"completion_rate"`        // [0,1]
	PreferredCategories  []string   `json:"preferred_categories"`   // ≤3
	EngagementScore      float64    `json:"engagement_score"`       // [0,100]
	CurrentLevel         int        `json:"current_level"`          // [1,10]
	DifficultyPreference Difficulty `json:"difficulty_preference"`
	StreakCount          int        `json:"streak_count"`
	LifetimePoints       int64      `json:"lifetime_points"`
}

// ChallengeCandidate is produced by the external content generator. The
// description is treated as opaque copy.
type ChallengeCandidate struct {
	Type           ChallengeType `json:"type"`
	Category       string        `json:"category"`
	BaseDifficulty Difficulty    `json:"base_difficulty"`
	BasePoints     int64         `json:"base_points"`
	Description    string        `json:"description"`
	EstimatedType  string        `json:"estimated_type"`
}

// Recommendation is a scored, difficulty-adapted candidate.
type Recommendation struct {
	Candidate                      ChallengeCandidate `json:"candidate"`
	ConfidenceScore                float64            `json:"confidence_score"` // [0,100]
	AdaptedDifficulty              Difficulty         `json:"adapted_difficulty"`
	AdaptedPoints                  int64              `json:"adapted_points"`
	EstimatedCompletionTimeMinutes int                `json:"estimated_completion_time_minutes"`
	PersonalizedMessage            string             `json:"personalized_message"`
	Reasoning                      string             `json:"reasoning"`
}

// ─── Results ────────────────────────────────────────────────────────────────

// AwardResult is returned by a successful AwardPoints call.
type AwardResult struct {
	TotalPointsAwarded int64    `json:"total_points_awarded"`
	NewTier            string   `json:"new_tier"`
	TierChanged        bool     `json:"tier_changed"`
	BadgesUnlocked     []string `json:"badges_unlocked"`
}

// PointsSummary is the read-side view of an account's standing.
type PointsSummary struct {
	CurrentPoints     int64           `json:"current_points"`
	LifetimePoints    int64           `json:"lifetime_points"`
	Tier              string          `json:"tier"`
	NextTierThreshold int64           `json:"next_tier_threshold"`
	StreakDays        int             `json:"streak_days"`
	TodayPoints       int64           `json:"today_points"`
	RecentActivities  []PointActivity `json:"recent_activities"`
	Badges            []UserBadge     `json:"badges"`
}

// ─── Notifications ──────────────────────────────────────────────────────────

// NotificationType categorizes user-facing notifications.
type NotificationType string

const (
	NotifyBadgeUnlocked NotificationType = "badge_unlocked"
	NotifyTierUp        NotificationType = "tier_up"
	NotifyStreak        NotificationType = "streak"
)

// Notification is a queued user-facing message.
type Notification struct {
	ID        int64            `json:"id"`
	AccountID string           `json:"account_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
	Shown     bool             `json:"shown"`
}

// NotificationPolicy caps notification volume per account.
type NotificationPolicy struct {
	MaxPerDay  int    `json:"max_per_day"`
	QuietStart string `json:"quiet_start"` // "22:00"
	QuietEnd   string `json:"quiet_end"`   // "08:00"
}

// DefaultNotificationPolicy is deliberately quiet: 3/day, nights off.
func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		MaxPerDay:  3,
		QuietStart: "22:00",
		QuietEnd:   "08:00",
	}
}
