package sqlite_test

import (
	"errors"
	"testing"
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
	"github.com/wellspring-health/wellspring/internal/infra/sqlite"
)

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

var when = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func TestAccount_RoundTrip(t *testing.T) {
	db := testDB(t)

	if acct, err := db.GetAccount("missing"); err != nil || acct != nil {
		t.Fatalf("missing account: got %v, %v; want nil, nil", acct, err)
	}

	err := db.CreateAccount(domain.Account{ID: "a1", Tier: "Beginner", CreatedAt: when})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.CreateAccount(domain.Account{ID: "a1", CreatedAt: when}); !errors.Is(err, domain.ErrAccountExists) {
		t.Errorf("duplicate create: err = %v, want ErrAccountExists", err)
	}

	acct, err := db.GetAccount("a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acct.Tier != "Beginner" || acct.Version != 0 {
		t.Errorf("got tier %q version %d", acct.Tier, acct.Version)
	}
}

func TestAccount_VersionGuard(t *testing.T) {
	db := testDB(t)
	if err := db.CreateAccount(domain.Account{ID: "a2", CreatedAt: when}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Two readers pick up version 0; only the first write lands.
	first, _ := db.GetAccount("a2")
	second, _ := db.GetAccount("a2")

	first.LifetimePoints = 10
	if err := db.UpdateAccount(*first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	second.LifetimePoints = 99
	err := db.UpdateAccount(*second)
	if !errors.Is(err, domain.ErrConcurrentUpdate) {
		t.Fatalf("stale update: err = %v, want ErrConcurrentUpdate", err)
	}

	// A fresh read carries the bumped version and succeeds.
	fresh, _ := db.GetAccount("a2")
	if fresh.LifetimePoints != 10 {
		t.Errorf("lifetime = %d, want 10 (stale write must not land)", fresh.LifetimePoints)
	}
	fresh.LifetimePoints = 25
	if err := db.UpdateAccount(*fresh); err != nil {
		t.Fatalf("fresh update: %v", err)
	}
}

func TestAccount_UpdateMissing(t *testing.T) {
	db := testDB(t)
	err := db.UpdateAccount(domain.Account{ID: "nobody"})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestInsertActivity_IdempotentOnID(t *testing.T) {
	db := testDB(t)

	a := domain.PointActivity{
		ID: "act-1", AccountID: "a3", Type: domain.ActivitySymptomLog,
		Points: 15, Timestamp: when,
	}
	if err := db.InsertActivity(a); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.InsertActivity(a); err != nil {
		t.Fatalf("replay: %v", err)
	}

	count, err := db.ActivityCount("a3", domain.ActivitySymptomLog)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (replay must not duplicate)", count)
	}
}

func TestHasActivity(t *testing.T) {
	db := testDB(t)

	seen, err := db.HasActivity("a4", domain.ActivityForumPost)
	if err != nil || seen {
		t.Fatalf("empty: got %v, %v; want false, nil", seen, err)
	}

	_ = db.InsertActivity(domain.PointActivity{
		ID: "act-2", AccountID: "a4", Type: domain.ActivityForumPost,
		Points: 10, Timestamp: when,
	})

	seen, err = db.HasActivity("a4", domain.ActivityForumPost)
	if err != nil || !seen {
		t.Errorf("after insert: got %v, %v; want true, nil", seen, err)
	}
	// Type-scoped: a different type is still unseen.
	seen, _ = db.HasActivity("a4", domain.ActivityChatSession)
	if seen {
		t.Error("unrelated type reported as seen")
	}
}

func TestDailyActivity_Accumulates(t *testing.T) {
	db := testDB(t)
	date := domain.DayKey(when)

	if day, err := db.GetDailyActivity("a5", date); err != nil || day != nil {
		t.Fatalf("empty day: got %v, %v; want nil, nil", day, err)
	}

	if err := db.UpsertDailyActivity("a5", date, 15, "act-a"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := db.UpsertDailyActivity("a5", date, 10, "act-b"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	day, err := db.GetDailyActivity("a5", date)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if day.TotalPoints != 25 {
		t.Errorf("total = %d, want 25", day.TotalPoints)
	}
	if len(day.ActivityIDs) != 2 || day.ActivityIDs[0] != "act-a" || day.ActivityIDs[1] != "act-b" {
		t.Errorf("ids = %v, want [act-a act-b]", day.ActivityIDs)
	}
}

func TestAwardBadge_OnlyFirstInsertWins(t *testing.T) {
	db := testDB(t)

	isNew, err := db.AwardBadge("a6", "streak_7", when)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if !isNew {
		t.Error("first award reported as not new")
	}

	isNew, err = db.AwardBadge("a6", "streak_7", when.Add(time.Hour))
	if err != nil {
		t.Fatalf("repeat award: %v", err)
	}
	if isNew {
		t.Error("repeat award reported as new")
	}

	has, _ := db.HasBadge("a6", "streak_7")
	if !has {
		t.Error("badge not recorded")
	}
	badges, _ := db.ListBadges("a6")
	if len(badges) != 1 {
		t.Errorf("badges = %d, want 1", len(badges))
	}
}

func TestRecentActivities_NewestFirst(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 5; i++ {
		_ = db.InsertActivity(domain.PointActivity{
			ID:        string(rune('a'+i)) + "-act",
			AccountID: "a7",
			Type:      domain.ActivityChatSession,
			Points:    5,
			Timestamp: when.Add(time.Duration(i) * time.Hour),
		})
	}

	recent, err := db.RecentActivities("a7", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("recent = %d, want 3", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].Timestamp.After(recent[i-1].Timestamp) {
			t.Error("not ordered newest first")
		}
	}
}
