package badge

import "github.com/wellspring-health/wellspring/internal/domain"

// ─── Badge Catalog ──────────────────────────────────────────────────────────
// Static unlock rules across five themes: logging, check-ins, challenges,
// streaks, community, tiers, and time of day. Each badge pays a flat
// BADGE_EARNED bonus when first unlocked.

// Catalog returns the full badge catalog.
func Catalog() []domain.BadgeDefinition {
	return []domain.BadgeDefinition{
		// ── Symptom logging ────────────────────────────────────────────
		{
			ID: "first_symptom", Name: "First Entry", Icon: "📝",
			Kind: domain.BadgeKindActivityCount, Activity: domain.ActivitySymptomLog,
			Threshold: 1, Bonus: 10,
		},
		{
			ID: "symptom_25", Name: "Pattern Spotter", Icon: "🔍",
			Kind: domain.BadgeKindActivityCount, Activity: domain.ActivitySymptomLog,
			Threshold: 25, Bonus: 30,
		},
		{
			ID: "symptom_100", Name: "Health Historian", Icon: "📚",
			Kind: domain.BadgeKindActivityCount, Activity: domain.ActivitySymptomLog,
			Threshold: 100, Bonus: 100,
		},

		// ── Check-ins ──────────────────────────────────────────────────
		{
			ID: "first_checkin", Name: "Showing Up", Icon: "☀️",
			Kind: domain.BadgeKindActivityCount, Activity: domain.ActivityDailyCheckIn,
			Threshold: 1, Bonus: 10,
		},
		{
			ID: "checkin_50", Name: "Regular", Icon: "📅",
			Kind: domain.BadgeKindActivityCount, Activity: domain.ActivityDailyCheckIn,
			Threshold: 50, Bonus: 50,
		},

		// ── Challenges ─────────────────────────────────────────────────
		{
			ID: "first_challenge", Name: "Challenger", Icon: "🎯",
			Kind: domain.BadgeKindActivityCount, Activity: domain.ActivityChallengeCompleted,
			Threshold: 1, Bonus: 15,
		},
		{
			ID: "challenge_25", Name: "Goal Getter", Icon: "🏅",
			Kind: domain.BadgeKindActivityCount, Activity: domain.ActivityChallengeCompleted,
			Threshold: 25, Bonus: 75,
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "streak_7", Name: "Week Warrior", Icon: "🔥",
			Kind: domain.BadgeKindStreak, Threshold: 7, Bonus: 50,
		},
		{
			ID: "streak_30", Name: "Monthly Momentum", Icon: "💪",
			Kind: domain.BadgeKindStreak, Threshold: 30, Bonus: 200,
		},

		// ── Community ──────────────────────────────────────────────────
		{
			ID: "community_first", Name: "Breaking the Ice", Icon: "💬",
			Kind: domain.BadgeKindCommunityPosts, Threshold: 1, Bonus: 10,
		},
		{
			ID: "community_10", Name: "Conversationalist", Icon: "🗣️",
			Kind: domain.BadgeKindCommunityPosts, Threshold: 10, Bonus: 40,
		},
		{
			ID: "community_50", Name: "Community Pillar", Icon: "🤝",
			Kind: domain.BadgeKindCommunityPosts, Threshold: 50, Bonus: 150,
		},

		// ── Tiers ──────────────────────────────────────────────────────
		{
			ID: "tier_explorer", Name: "Explorer", Icon: "🧭",
			Kind: domain.BadgeKindTierReached, Tier: "Explorer", Bonus: 20,
		},
		{
			ID: "tier_achiever", Name: "Achiever", Icon: "⭐",
			Kind: domain.BadgeKindTierReached, Tier: "Achiever", Bonus: 50,
		},
		{
			ID: "tier_champion", Name: "Champion", Icon: "🏆",
			Kind: domain.BadgeKindTierReached, Tier: "Champion", Bonus: 100,
		},
		{
			ID: "tier_legend", Name: "Legend", Icon: "👑",
			Kind: domain.BadgeKindTierReached, Tier: "Legend", Bonus: 250,
		},

		// ── Time of day (server wall clock at event time) ──────────────
		{
			ID: "early_bird", Name: "Early Bird", Icon: "🐦",
			Kind: domain.BadgeKindTimeOfDay, HourFrom: 4, HourTo: 7, Bonus: 15,
		},
		{
			ID: "night_owl", Name: "Night Owl", Icon: "🦉",
			Kind: domain.BadgeKindTimeOfDay, HourFrom: 22, HourTo: 2, Bonus: 15,
		},
	}
}
