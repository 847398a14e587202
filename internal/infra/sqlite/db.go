// Package sqlite provides SQLite-based persistent storage for Wellspring.
// Uses WAL mode for concurrent reads and crash-safe writes. All SQL lives
// here; services see only the repository interfaces in internal/domain.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/wellspring-health/wellspring/internal/domain"
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Accounts. version guards optimistic read-modify-write cycles.
		`CREATE TABLE IF NOT EXISTS accounts (
			id               TEXT PRIMARY KEY,
			lifetime_points  INTEGER NOT NULL DEFAULT 0,
			spendable_points INTEGER NOT NULL DEFAULT 0,
			tier             TEXT NOT NULL DEFAULT '',
			streak_days      INTEGER NOT NULL DEFAULT 0,
			longest_streak   INTEGER NOT NULL DEFAULT 0,
			last_active_day  TEXT NOT NULL DEFAULT '',
			version          INTEGER NOT NULL DEFAULT 0,
			created_at       INTEGER NOT NULL
		)`,

		// Append-only point ledger. The UUID primary key is the idempotency
		// key: a retried insert is a no-op.
		`CREATE TABLE IF NOT EXISTS point_activities (
			id               TEXT PRIMARY KEY,
			account_id       TEXT NOT NULL,
			type             TEXT NOT NULL,
			points           INTEGER NOT NULL,
			bonus_weekend    INTEGER NOT NULL DEFAULT 0,
			bonus_first_time INTEGER NOT NULL DEFAULT 0,
			bonus_streak     INTEGER NOT NULL DEFAULT 0,
			timestamp        INTEGER NOT NULL,
			description      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_account_type ON point_activities(account_id, type)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_account_ts ON point_activities(account_id, timestamp)`,

		// One aggregate per account per calendar day.
		`CREATE TABLE IF NOT EXISTS daily_activity (
			account_id   TEXT NOT NULL,
			date         TEXT NOT NULL,
			total_points INTEGER NOT NULL DEFAULT 0,
			activity_ids TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (account_id, date)
		)`,

		// Earned badges. The composite primary key IS the idempotency
		// guarantee — two concurrent awards cannot both insert.
		`CREATE TABLE IF NOT EXISTS user_badges (
			account_id TEXT NOT NULL,
			badge_id   TEXT NOT NULL,
			earned_at  INTEGER NOT NULL,
			PRIMARY KEY (account_id, badge_id)
		)`,

		// Challenge and achievement history, written by the challenge module
		// of the wider app and read here to build health profiles.
		`CREATE TABLE IF NOT EXISTS user_challenges (
			id           TEXT PRIMARY KEY,
			account_id   TEXT NOT NULL,
			category     TEXT NOT NULL,
			difficulty   TEXT NOT NULL,
			status       TEXT NOT NULL,
			assigned_at  INTEGER NOT NULL,
			completed_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_challenges_account ON user_challenges(account_id)`,

		`CREATE TABLE IF NOT EXISTS user_achievements (
			id         TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			title      TEXT NOT NULL,
			earned_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_account ON user_achievements(account_id)`,

		// Notification queue (badge unlocks, tier ups).
		`CREATE TABLE IF NOT EXISTS notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notif_account ON notifications(account_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Account Store ──────────────────────────────────────────────────────────

// GetAccount retrieves an account by ID. Returns (nil, nil) if absent.
func (d *DB) GetAccount(id string) (*domain.Account, error) {
	row := d.db.QueryRow(
		`SELECT id, lifetime_points, spendable_points, tier, streak_days,
		        longest_streak, last_active_day, version, created_at
		 FROM accounts WHERE id = ?`, id,
	)

	var a domain.Account
	var createdAt int64
	err := row.Scan(&a.ID, &a.LifetimePoints, &a.SpendablePoints, &a.Tier,
		&a.StreakDays, &a.LongestStreak, &a.LastActiveDay, &a.Version, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.CreatedAt = time.Unix(createdAt, 0)
	return &a, nil
}

// CreateAccount inserts a new account row.
func (d *DB) CreateAccount(a domain.Account) error {
	_, err := d.db.Exec(
		`INSERT INTO accounts (id, lifetime_points, spendable_points, tier,
		        streak_days, longest_streak, last_active_day, version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		a.ID, a.LifetimePoints, a.SpendablePoints, a.Tier,
		a.StreakDays, a.LongestStreak, a.LastActiveDay, a.CreatedAt.Unix(),
	)
	if err != nil && isUniqueViolation(err) {
		return domain.ErrAccountExists
	}
	return err
}

// UpdateAccount writes the account back, guarded by the version it was read
// at. Zero rows affected means another writer won the race.
func (d *DB) UpdateAccount(a domain.Account) error {
	result, err := d.db.Exec(
		`UPDATE accounts SET
			lifetime_points = ?, spendable_points = ?, tier = ?,
			streak_days = ?, longest_streak = ?, last_active_day = ?,
			version = version + 1
		 WHERE id = ? AND version = ?`,
		a.LifetimePoints, a.SpendablePoints, a.Tier,
		a.StreakDays, a.LongestStreak, a.LastActiveDay,
		a.ID, a.Version,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		existing, err := d.GetAccount(a.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrAccountNotFound
		}
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// isUniqueViolation matches the driver's constraint error without importing
// driver internals.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
