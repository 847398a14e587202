package content

import (
	"context"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// MockGenerator serves candidates from a fixed catalog, rotated by the
// account's level so different users see different suggestions. It is the
// fallback when no provider is configured and the default in tests.
type MockGenerator struct{}

// NewMockGenerator creates the offline candidate generator.
func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

var mockCatalog = map[domain.ChallengeType][]domain.ChallengeCandidate{
	domain.ChallengeDaily: {
		{Category: "movement", BaseDifficulty: domain.DifficultyEasy, BasePoints: 20, Description: "Take a 15-minute walk outside"},
		{Category: "mindfulness", BaseDifficulty: domain.DifficultyEasy, BasePoints: 15, Description: "Do a 5-minute breathing exercise"},
		{Category: "nutrition", BaseDifficulty: domain.DifficultyMedium, BasePoints: 25, Description: "Prepare one meal with at least three vegetables"},
	},
	domain.ChallengePersonalized: {
		{Category: "sleep", BaseDifficulty: domain.DifficultyMedium, BasePoints: 30, Description: "Keep screens off for the hour before bed tonight"},
		{Category: "movement", BaseDifficulty: domain.DifficultyMedium, BasePoints: 30, Description: "Try a 20-minute stretching routine"},
		{Category: "mindfulness", BaseDifficulty: domain.DifficultyHard, BasePoints: 40, Description: "Complete a 20-minute guided meditation"},
	},
	domain.ChallengeWeekly: {
		{Category: "movement", BaseDifficulty: domain.DifficultyHard, BasePoints: 60, Description: "Log 10,000 steps on four days this week"},
		{Category: "nutrition", BaseDifficulty: domain.DifficultyMedium, BasePoints: 50, Description: "Cook at home five days this week"},
		{Category: "social", BaseDifficulty: domain.DifficultyEasy, BasePoints: 35, Description: "Check in with a friend or family member three times this week"},
	},
}

// GenerateCandidate returns a catalog entry for the type, selected by the
// profile's level. Deterministic: the same profile always gets the same
// candidate.
func (g *MockGenerator) GenerateCandidate(ctx context.Context, t domain.ChallengeType, profile domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pool, ok := mockCatalog[t]
	if !ok {
		pool = mockCatalog[domain.ChallengeDaily]
	}
	cand := pool[profile.CurrentLevel%len(pool)]
	cand.Type = t
	return &cand, nil
}
