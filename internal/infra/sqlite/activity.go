package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// ─── Point Ledger ───────────────────────────────────────────────────────────

// InsertActivity appends an immutable ledger record. Idempotent on the
// activity ID, so a retried read-modify-write cannot double-count.
func (d *DB) InsertActivity(a domain.PointActivity) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO point_activities
			(id, account_id, type, points, bonus_weekend, bonus_first_time, bonus_streak, timestamp, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.AccountID, string(a.Type), a.Points,
		a.Bonus.Weekend, a.Bonus.FirstTime, a.Bonus.Streak,
		a.Timestamp.Unix(), a.Description,
	)
	return err
}

// HasActivity reports whether any activity of the given type exists for the
// account. Single indexed existence query.
func (d *DB) HasActivity(accountID string, t domain.ActivityType) (bool, error) {
	var one int
	err := d.db.QueryRow(
		`SELECT 1 FROM point_activities WHERE account_id = ? AND type = ? LIMIT 1`,
		accountID, string(t),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ActivityCount returns how many activities of the given type the account has.
func (d *DB) ActivityCount(accountID string, t domain.ActivityType) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM point_activities WHERE account_id = ? AND type = ?`,
		accountID, string(t),
	).Scan(&count)
	return count, err
}

// RecentActivities returns the account's newest n ledger records.
func (d *DB) RecentActivities(accountID string, n int) ([]domain.PointActivity, error) {
	rows, err := d.db.Query(
		`SELECT id, account_id, type, points, bonus_weekend, bonus_first_time, bonus_streak, timestamp, description
		 FROM point_activities WHERE account_id = ?
		 ORDER BY timestamp DESC, id LIMIT ?`,
		accountID, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.PointActivity
	for rows.Next() {
		var a domain.PointActivity
		var ts int64
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Type, &a.Points,
			&a.Bonus.Weekend, &a.Bonus.FirstTime, &a.Bonus.Streak,
			&ts, &a.Description); err != nil {
			return nil, err
		}
		a.Timestamp = time.Unix(ts, 0)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// ─── Daily Aggregates ───────────────────────────────────────────────────────

// GetDailyActivity returns the aggregate for one calendar day, or (nil, nil)
// if the account had no activity that day.
func (d *DB) GetDailyActivity(accountID, date string) (*domain.DailyActivity, error) {
	row := d.db.QueryRow(
		`SELECT account_id, date, total_points, activity_ids
		 FROM daily_activity WHERE account_id = ? AND date = ?`,
		accountID, date,
	)

	var da domain.DailyActivity
	var ids string
	err := row.Scan(&da.AccountID, &da.Date, &da.TotalPoints, &ids)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ids), &da.ActivityIDs); err != nil {
		return nil, fmt.Errorf("decode activity ids: %w", err)
	}
	return &da, nil
}

// UpsertDailyActivity adds points and the activity ID to the day's aggregate
// in a single statement, creating the row on the first activity of the day.
func (d *DB) UpsertDailyActivity(accountID, date string, points int64, activityID string) error {
	_, err := d.db.Exec(
		`INSERT INTO daily_activity (account_id, date, total_points, activity_ids)
		 VALUES (?, ?, ?, json_array(?))
		 ON CONFLICT(account_id, date) DO UPDATE SET
			total_points = total_points + excluded.total_points,
			activity_ids = json_insert(activity_ids, '$[#]', ?)`,
		accountID, date, points, activityID, activityID,
	)
	return err
}
