package sqlite

import (
	"database/sql"
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// ─── Badge Store ────────────────────────────────────────────────────────────

// AwardBadge records an earned badge. Returns false if the badge was already
// held (idempotent — the composite primary key arbitrates concurrent awards).
func (d *DB) AwardBadge(accountID, badgeID string, at time.Time) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO user_badges (account_id, badge_id, earned_at) VALUES (?, ?, ?)`,
		accountID, badgeID, at.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly earned
}

// HasBadge checks whether the account already holds a badge.
func (d *DB) HasBadge(accountID, badgeID string) (bool, error) {
	var one int
	err := d.db.QueryRow(
		`SELECT 1 FROM user_badges WHERE account_id = ? AND badge_id = ?`,
		accountID, badgeID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ListBadges returns the account's earned badges, newest first.
func (d *DB) ListBadges(accountID string) ([]domain.UserBadge, error) {
	rows, err := d.db.Query(
		`SELECT account_id, badge_id, earned_at FROM user_badges
		 WHERE account_id = ? ORDER BY earned_at DESC, badge_id`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []domain.UserBadge
	for rows.Next() {
		var b domain.UserBadge
		var earnedAt int64
		if err := rows.Scan(&b.AccountID, &b.BadgeID, &earnedAt); err != nil {
			return nil, err
		}
		b.EarnedAt = time.Unix(earnedAt, 0)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// ─── Challenge & Achievement History ────────────────────────────────────────

// UserChallenges returns the account's full challenge history, newest
// assignment first.
func (d *DB) UserChallenges(accountID string) ([]domain.UserChallenge, error) {
	rows, err := d.db.Query(
		`SELECT id, account_id, category, difficulty, status, assigned_at, completed_at
		 FROM user_challenges WHERE account_id = ? ORDER BY assigned_at DESC, id`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []domain.UserChallenge
	for rows.Next() {
		var c domain.UserChallenge
		var assignedAt int64
		var completedAt sql.NullInt64
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Category, &c.Difficulty,
			&c.Status, &assignedAt, &completedAt); err != nil {
			return nil, err
		}
		c.AssignedAt = time.Unix(assignedAt, 0)
		if completedAt.Valid {
			c.CompletedAt = time.Unix(completedAt.Int64, 0)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}

// InsertUserChallenge records an assigned challenge. Used by the challenge
// module of the wider app and by tests.
func (d *DB) InsertUserChallenge(c domain.UserChallenge) error {
	_, err := d.db.Exec(
		`INSERT INTO user_challenges (id, account_id, category, difficulty, status, assigned_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			completed_at=excluded.completed_at`,
		c.ID, c.AccountID, c.Category, string(c.Difficulty), string(c.Status),
		c.AssignedAt.Unix(), nullableUnix(c.CompletedAt),
	)
	return err
}

// UserAchievements returns the account's achievements, newest first.
func (d *DB) UserAchievements(accountID string) ([]domain.UserAchievement, error) {
	rows, err := d.db.Query(
		`SELECT id, account_id, title, earned_at FROM user_achievements
		 WHERE account_id = ? ORDER BY earned_at DESC, id`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []domain.UserAchievement
	for rows.Next() {
		var a domain.UserAchievement
		var earnedAt int64
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Title, &earnedAt); err != nil {
			return nil, err
		}
		a.EarnedAt = time.Unix(earnedAt, 0)
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// InsertUserAchievement records a milestone achievement.
func (d *DB) InsertUserAchievement(a domain.UserAchievement) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO user_achievements (id, account_id, title, earned_at)
		 VALUES (?, ?, ?, ?)`,
		a.ID, a.AccountID, a.Title, a.EarnedAt.Unix(),
	)
	return err
}

// nullableUnix converts a possibly-zero time to a nullable column value.
func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
