package sqlite

import (
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// ─── Notification Store ─────────────────────────────────────────────────────

// InsertNotification queues a notification and returns its row ID.
func (d *DB) InsertNotification(n domain.Notification) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO notifications (account_id, type, title, body, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.AccountID, string(n.Type), n.Title, n.Body, n.CreatedAt.Unix(), n.Shown,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// NotificationCountOn returns how many notifications the account received on
// the given calendar day.
func (d *DB) NotificationCountOn(accountID, date string) (int, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, err
	}
	start := day.Unix()
	end := day.AddDate(0, 0, 1).Unix()

	var count int
	err = d.db.QueryRow(
		`SELECT COUNT(*) FROM notifications
		 WHERE account_id = ? AND created_at >= ? AND created_at < ?`,
		accountID, start, end,
	).Scan(&count)
	return count, err
}

// PendingNotifications returns unshown notifications, newest first.
func (d *DB) PendingNotifications(accountID string, limit int) ([]domain.Notification, error) {
	rows, err := d.db.Query(
		`SELECT id, account_id, type, title, body, created_at, shown
		 FROM notifications WHERE account_id = ? AND shown = 0
		 ORDER BY created_at DESC LIMIT ?`,
		accountID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Type, &n.Title, &n.Body,
			&createdAt, &n.Shown); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(createdAt, 0)
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown marks a notification as shown.
func (d *DB) MarkNotificationShown(id int64) error {
	_, err := d.db.Exec(`UPDATE notifications SET shown = 1 WHERE id = ?`, id)
	return err
}
