package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/wellspring-health/wellspring/internal/app/badge"
	"github.com/wellspring-health/wellspring/internal/app/ledger"
	"github.com/wellspring-health/wellspring/internal/app/notify"
	"github.com/wellspring-health/wellspring/internal/domain"
	"github.com/wellspring-health/wellspring/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testService(t *testing.T) (*ledger.Service, *sqlite.DB) {
	t.Helper()
	db := testDB(t)
	engine := badge.NewEngine(db, db)
	svc := ledger.NewService(db, db, engine, domain.DefaultRules())
	return svc, db
}

// Saturday noon. Weekday mornings/evenings are avoided throughout so
// time-of-day badges never fire by accident.
var saturday = time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)

// Wednesday noon.
var wednesday = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

func TestAwardPoints_WeekendAndFirstTimeBonuses(t *testing.T) {
	svc, db := testService(t)

	if _, err := svc.CreateAccount("u1", saturday.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("create account: %v", err)
	}

	result, err := svc.AwardPointsAt("u1", domain.ActivitySymptomLog,
		domain.SymptomLogMetadata{Symptom: "headache", Severity: 4}, saturday)
	if err != nil {
		t.Fatalf("award: %v", err)
	}

	// 15 base + 5 weekend + 25 first-time + 0 streak
	if result.TotalPointsAwarded != 45 {
		t.Errorf("total = %d, want 45", result.TotalPointsAwarded)
	}
	if !contains(result.BadgesUnlocked, "first_symptom") {
		t.Errorf("expected first_symptom in %v", result.BadgesUnlocked)
	}

	// The badge's flat bonus lands on the account but not in the award total.
	acct, err := db.GetAccount("u1")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acct.LifetimePoints != 55 { // 45 + 10 badge bonus
		t.Errorf("lifetime = %d, want 55", acct.LifetimePoints)
	}
	if acct.SpendablePoints != 55 {
		t.Errorf("spendable = %d, want 55", acct.SpendablePoints)
	}
	if acct.StreakDays != 1 {
		t.Errorf("streak = %d, want 1", acct.StreakDays)
	}
}

func TestAwardPoints_TierCrossingUnlocksTierBadgeOnce(t *testing.T) {
	svc, db := testService(t)

	if _, err := svc.CreateAccount("u2", wednesday.AddDate(0, 0, -10)); err != nil {
		t.Fatalf("create account: %v", err)
	}
	acct, _ := db.GetAccount("u2")
	acct.LifetimePoints = 95
	acct.SpendablePoints = 95
	if err := db.UpdateAccount(*acct); err != nil {
		t.Fatalf("seed points: %v", err)
	}
	// Prior check-in so the first-time bonus does not apply.
	seedActivity(t, db, "u2", domain.ActivityDailyCheckIn, wednesday.AddDate(0, 0, -5))

	result, err := svc.AwardPointsAt("u2", domain.ActivityDailyCheckIn, nil, wednesday)
	if err != nil {
		t.Fatalf("award: %v", err)
	}

	if result.TotalPointsAwarded != 10 {
		t.Errorf("total = %d, want 10", result.TotalPointsAwarded)
	}
	if !result.TierChanged {
		t.Error("expected tier change at 95 → 105")
	}
	if result.NewTier != "Explorer" {
		t.Errorf("tier = %q, want Explorer", result.NewTier)
	}
	if !contains(result.BadgesUnlocked, "tier_explorer") {
		t.Errorf("expected tier_explorer in %v", result.BadgesUnlocked)
	}

	// Next day: same tier, badge not unlocked again.
	result2, err := svc.AwardPointsAt("u2", domain.ActivityDailyCheckIn, nil, wednesday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if result2.TierChanged {
		t.Error("unexpected tier change on second award")
	}
	if len(result2.BadgesUnlocked) != 0 {
		t.Errorf("unexpected unlocks: %v", result2.BadgesUnlocked)
	}
}

func TestAwardPoints_QueuesCelebrationNotifications(t *testing.T) {
	svc, db := testService(t)
	notifications := notify.NewService(db)
	svc.SetNotifier(notifications)

	if _, err := svc.CreateAccount("u10", wednesday.AddDate(0, 0, -10)); err != nil {
		t.Fatalf("create account: %v", err)
	}
	acct, _ := db.GetAccount("u10")
	acct.LifetimePoints = 95
	acct.SpendablePoints = 95
	if err := db.UpdateAccount(*acct); err != nil {
		t.Fatalf("seed points: %v", err)
	}
	seedActivity(t, db, "u10", domain.ActivityDailyCheckIn, wednesday.AddDate(0, 0, -5))

	result, err := svc.AwardPointsAt("u10", domain.ActivityDailyCheckIn, nil, wednesday)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !result.TierChanged || !contains(result.BadgesUnlocked, "tier_explorer") {
		t.Fatalf("unexpected result: %+v", result)
	}

	// The tier crossing and each fresh badge (first_checkin plus
	// tier_explorer) queue a pending notification.
	pending, err := notifications.Pending("u10", 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	var tierUps, badgeUnlocks int
	for _, n := range pending {
		switch n.Type {
		case domain.NotifyTierUp:
			tierUps++
		case domain.NotifyBadgeUnlocked:
			badgeUnlocks++
		}
	}
	if tierUps != 1 {
		t.Errorf("tier-up notifications = %d, want 1", tierUps)
	}
	if badgeUnlocks != len(result.BadgesUnlocked) {
		t.Errorf("badge notifications = %d, want %d", badgeUnlocks, len(result.BadgesUnlocked))
	}

	// A second award in the same tier queues nothing new.
	if _, err := svc.AwardPointsAt("u10", domain.ActivityDailyCheckIn, nil, wednesday.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("second award: %v", err)
	}
	after, err := notifications.Pending("u10", 10)
	if err != nil {
		t.Fatalf("pending after second award: %v", err)
	}
	if len(after) != len(pending) {
		t.Errorf("pending = %d, want %d (no new celebrations)", len(after), len(pending))
	}
}

func TestAwardPoints_LifetimeMonotonic(t *testing.T) {
	svc, db := testService(t)
	if _, err := svc.CreateAccount("u3", wednesday); err != nil {
		t.Fatalf("create account: %v", err)
	}

	var prev int64
	types := []domain.ActivityType{
		domain.ActivitySymptomLog,
		domain.ActivityDailyCheckIn,
		domain.ActivityForumPost,
		domain.ActivityChatSession,
		domain.ActivitySymptomLog,
	}
	for i, at := range types {
		if _, err := svc.AwardPointsAt("u3", at, nil, wednesday.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("award %d: %v", i, err)
		}
		acct, _ := db.GetAccount("u3")
		if acct.LifetimePoints < prev {
			t.Fatalf("lifetime points decreased: %d < %d", acct.LifetimePoints, prev)
		}
		prev = acct.LifetimePoints
	}
}

func TestAwardPoints_InvalidActivityType(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.CreateAccount("u4", wednesday); err != nil {
		t.Fatalf("create account: %v", err)
	}

	for _, at := range []domain.ActivityType{"JUMPING_JACKS", domain.ActivityBadgeEarned} {
		_, err := svc.AwardPointsAt("u4", at, nil, wednesday)
		if !errors.Is(err, domain.ErrInvalidActivityType) {
			t.Errorf("award(%q): err = %v, want ErrInvalidActivityType", at, err)
		}
	}
}

func TestAwardPoints_AccountNotFoundNoSideEffects(t *testing.T) {
	svc, db := testService(t)

	_, err := svc.AwardPointsAt("ghost", domain.ActivitySymptomLog, nil, wednesday)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}

	count, _ := db.ActivityCount("ghost", domain.ActivitySymptomLog)
	if count != 0 {
		t.Errorf("ledger written for missing account: %d records", count)
	}
}

func TestAwardPoints_MismatchedMetadataRejected(t *testing.T) {
	svc, db := testService(t)
	if _, err := svc.CreateAccount("u5", wednesday); err != nil {
		t.Fatalf("create account: %v", err)
	}

	_, err := svc.AwardPointsAt("u5", domain.ActivitySymptomLog,
		domain.DailyCheckInMetadata{Mood: "fine"}, wednesday)
	if !errors.Is(err, domain.ErrMalformedMetadata) {
		t.Fatalf("err = %v, want ErrMalformedMetadata", err)
	}

	count, _ := db.ActivityCount("u5", domain.ActivitySymptomLog)
	if count != 0 {
		t.Errorf("ledger written despite rejection: %d records", count)
	}
}

func TestAwardPoints_StreakBonusCapped(t *testing.T) {
	svc, db := testService(t)
	if _, err := svc.CreateAccount("u6", wednesday.AddDate(0, 0, -30)); err != nil {
		t.Fatalf("create account: %v", err)
	}
	acct, _ := db.GetAccount("u6")
	acct.StreakDays = 15
	if err := db.UpdateAccount(*acct); err != nil {
		t.Fatalf("seed streak: %v", err)
	}
	seedActivity(t, db, "u6", domain.ActivitySymptomLog, wednesday.AddDate(0, 0, -5))

	result, err := svc.AwardPointsAt("u6", domain.ActivitySymptomLog, nil, wednesday)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	// 15 base + min(15×2, 20) streak bonus
	if result.TotalPointsAwarded != 35 {
		t.Errorf("total = %d, want 35", result.TotalPointsAwarded)
	}
}

func TestAwardPoints_SevenDayStreakBadge(t *testing.T) {
	svc, db := testService(t)
	start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC) // Monday
	if _, err := svc.CreateAccount("u7", start); err != nil {
		t.Fatalf("create account: %v", err)
	}

	var unlockDay int
	for i := 0; i < 8; i++ {
		day := start.AddDate(0, 0, i)
		result, err := svc.AwardPointsAt("u7", domain.ActivityDailyCheckIn, nil, day)
		if err != nil {
			t.Fatalf("award day %d: %v", i, err)
		}
		if contains(result.BadgesUnlocked, "streak_7") {
			if unlockDay != 0 {
				t.Fatalf("streak_7 unlocked twice (days %d and %d)", unlockDay, i+1)
			}
			unlockDay = i + 1
		}
	}

	if unlockDay != 7 {
		t.Errorf("streak_7 unlocked on day %d, want 7", unlockDay)
	}
	acct, _ := db.GetAccount("u7")
	if acct.StreakDays != 8 {
		t.Errorf("streak = %d, want 8", acct.StreakDays)
	}
	if acct.LongestStreak != 8 {
		t.Errorf("longest = %d, want 8", acct.LongestStreak)
	}
}

func TestGetPointsSummary(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.CreateAccount("u8", wednesday); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := svc.AwardPointsAt("u8", domain.ActivitySymptomLog, nil, wednesday); err != nil {
		t.Fatalf("award: %v", err)
	}

	s, err := svc.GetPointsSummaryAt("u8", wednesday.Add(time.Hour))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Tier != "Beginner" {
		t.Errorf("tier = %q, want Beginner", s.Tier)
	}
	if s.NextTierThreshold != 100 {
		t.Errorf("next threshold = %d, want 100", s.NextTierThreshold)
	}
	if s.StreakDays != 1 {
		t.Errorf("streak = %d, want 1", s.StreakDays)
	}
	// 15 base + 25 first-time, plus the first_symptom badge bonus of 10.
	if s.TodayPoints != 50 {
		t.Errorf("today = %d, want 50", s.TodayPoints)
	}
	if len(s.RecentActivities) != 2 { // the award and the badge bonus
		t.Errorf("recent = %d records, want 2", len(s.RecentActivities))
	}
	if len(s.Badges) != 1 {
		t.Errorf("badges = %d, want 1", len(s.Badges))
	}
}

func TestGetPointsSummary_ExpiredStreakSettles(t *testing.T) {
	svc, db := testService(t)
	if _, err := svc.CreateAccount("u9", wednesday); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := svc.AwardPointsAt("u9", domain.ActivityDailyCheckIn, nil, wednesday); err != nil {
		t.Fatalf("award: %v", err)
	}

	// Three days later with no activity: the streak reads as zero and the
	// reset is persisted.
	s, err := svc.GetPointsSummaryAt("u9", wednesday.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.StreakDays != 0 {
		t.Errorf("streak = %d, want 0", s.StreakDays)
	}
	acct, _ := db.GetAccount("u9")
	if acct.StreakDays != 0 {
		t.Errorf("persisted streak = %d, want 0", acct.StreakDays)
	}
}

func TestGetPointsSummary_AccountNotFound(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.GetPointsSummary("nobody")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("err = %v, want ErrAccountNotFound", err)
	}
}

func seedActivity(t *testing.T, db *sqlite.DB, accountID string, at domain.ActivityType, ts time.Time) {
	t.Helper()
	err := db.InsertActivity(domain.PointActivity{
		ID:        "seed-" + accountID + "-" + string(at) + ts.Format("20060102"),
		AccountID: accountID,
		Type:      at,
		Points:    1,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("seed activity: %v", err)
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
