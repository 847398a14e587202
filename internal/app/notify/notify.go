// Package notify queues user-facing notifications under a per-account volume
// policy: a daily cap and quiet hours. Suppression is silent — callers never
// fail because a notification was dropped.
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// Service manages the notification queue.
type Service struct {
	store  domain.NotificationStore
	policy domain.NotificationPolicy
}

// NewService creates a notification service with the default policy.
func NewService(store domain.NotificationStore) *Service {
	return NewServiceWithPolicy(store, domain.DefaultNotificationPolicy())
}

// NewServiceWithPolicy creates a notification service with a custom policy.
func NewServiceWithPolicy(store domain.NotificationStore, policy domain.NotificationPolicy) *Service {
	return &Service{store: store, policy: policy}
}

// Create queues a notification if the policy allows it. Returns the
// notification ID, or 0 when suppressed by the daily cap or quiet hours.
func (s *Service) Create(n domain.Notification) (int64, error) {
	return s.CreateAt(n, time.Now())
}

// CreateAt is Create with an explicit time, for testability.
func (s *Service) CreateAt(n domain.Notification, now time.Time) (int64, error) {
	count, err := s.store.NotificationCountOn(n.AccountID, domain.DayKey(now))
	if err != nil {
		return 0, fmt.Errorf("count today: %w", err)
	}
	if count >= s.policy.MaxPerDay {
		return 0, nil
	}
	if s.isQuietHour(now) {
		return 0, nil
	}

	n.CreatedAt = now
	n.Shown = false
	id, err := s.store.InsertNotification(n)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// BadgeUnlocked queues a badge celebration.
func (s *Service) BadgeUnlocked(accountID string, def domain.BadgeDefinition, now time.Time) (int64, error) {
	return s.CreateAt(domain.Notification{
		AccountID: accountID,
		Type:      domain.NotifyBadgeUnlocked,
		Title:     "Badge unlocked!",
		Body:      fmt.Sprintf("%s You earned %s.", def.Icon, def.Name),
	}, now)
}

// TierUp queues a tier promotion celebration.
func (s *Service) TierUp(accountID, tier string, now time.Time) (int64, error) {
	return s.CreateAt(domain.Notification{
		AccountID: accountID,
		Type:      domain.NotifyTierUp,
		Title:     "Tier up!",
		Body:      fmt.Sprintf("Welcome to %s.", tier),
	}, now)
}

// Pending returns unshown notifications, oldest first.
func (s *Service) Pending(accountID string, limit int) ([]domain.Notification, error) {
	return s.store.PendingNotifications(accountID, limit)
}

// MarkShown marks a notification as shown.
func (s *Service) MarkShown(id int64) error {
	return s.store.MarkNotificationShown(id)
}

// Policy returns the active policy.
func (s *Service) Policy() domain.NotificationPolicy {
	return s.policy
}

// isQuietHour reports whether t falls inside the quiet window, which may
// wrap midnight (e.g. 22:00–08:00).
func (s *Service) isQuietHour(t time.Time) bool {
	startH, startM := parseHHMM(s.policy.QuietStart)
	endH, endM := parseHHMM(s.policy.QuietEnd)

	minutes := t.Hour()*60 + t.Minute()
	start := startH*60 + startM
	end := endH*60 + endM

	if start > end {
		return minutes >= start || minutes < end
	}
	return minutes >= start && minutes < end
}

// parseHHMM parses "HH:MM" into hour and minute.
func parseHHMM(v string) (int, int) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h, m
}
