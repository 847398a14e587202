package recommend_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wellspring-health/wellspring/internal/app/recommend"
	"github.com/wellspring-health/wellspring/internal/domain"
)

// ─── In-memory fakes ────────────────────────────────────────────────────────

type fakeAccounts struct {
	acct domain.Account
}

func (f *fakeAccounts) GetAccount(id string) (*domain.Account, error) {
	if id != f.acct.ID {
		return nil, nil
	}
	a := f.acct
	return &a, nil
}
func (f *fakeAccounts) CreateAccount(domain.Account) error { return nil }
func (f *fakeAccounts) UpdateAccount(domain.Account) error { return nil }

type fakeChallenges struct {
	challenges   []domain.UserChallenge
	achievements []domain.UserAchievement
}

func (f *fakeChallenges) UserChallenges(string) ([]domain.UserChallenge, error) {
	return f.challenges, nil
}
func (f *fakeChallenges) UserAchievements(string) ([]domain.UserAchievement, error) {
	return f.achievements, nil
}

// genFunc adapts a function to the candidate generator interface.
type genFunc func(ctx context.Context, t domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error)

func (g genFunc) GenerateCandidate(ctx context.Context, t domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
	return g(ctx, t, p)
}

// strongPerformer builds a history that derives a high-completion,
// high-engagement profile with a multi-day completion streak.
func strongPerformer(now time.Time) (*fakeAccounts, *fakeChallenges) {
	accounts := &fakeAccounts{acct: domain.Account{ID: "u1", Tier: "Beginner"}}

	var challenges []domain.UserChallenge
	for i := 0; i < 12; i++ {
		done := now.AddDate(0, 0, -(i % 4)) // completions spread over recent days
		challenges = append(challenges, domain.UserChallenge{
			ID:          fmt.Sprintf("c%d", i),
			AccountID:   "u1",
			Category:    "movement",
			Difficulty:  domain.DifficultyEasy,
			Status:      domain.ChallengeCompleted,
			AssignedAt:  done.Add(-2 * time.Hour),
			CompletedAt: done,
		})
	}
	challenges = append(challenges, domain.UserChallenge{
		ID: "c-open", AccountID: "u1", Category: "movement",
		Difficulty: domain.DifficultyEasy, Status: domain.ChallengeAssigned,
		AssignedAt: now.Add(-time.Hour),
	})
	return accounts, &fakeChallenges{challenges: challenges}
}

var testNow = time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC)

func easyCandidate(category string) *domain.ChallengeCandidate {
	return &domain.ChallengeCandidate{
		Category:       category,
		BaseDifficulty: domain.DifficultyEasy,
		BasePoints:     20,
		Description:    "Take a short walk",
	}
}

func TestGenerateRecommendations_EscalatesForStrongPerformer(t *testing.T) {
	accounts, challenges := strongPerformer(testNow)
	profiles := recommend.NewProfileBuilder(accounts, challenges)

	gen := genFunc(func(ctx context.Context, ct domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
		return easyCandidate("movement"), nil
	})
	scorer := recommend.NewScorer(profiles, challenges, gen, domain.DefaultRules(), time.Second)

	recs, err := scorer.GenerateRecommendationsAt(context.Background(), "u1",
		[]domain.ChallengeType{domain.ChallengeDaily}, 1, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}

	rec := recs[0]
	if rec.AdaptedDifficulty != domain.DifficultyMedium {
		t.Errorf("adapted = %s, want medium (escalated from easy)", rec.AdaptedDifficulty)
	}
	if rec.AdaptedPoints != 20 { // 20 × 1.0 medium multiplier
		t.Errorf("points = %d, want 20", rec.AdaptedPoints)
	}
	if rec.ConfidenceScore < 0 || rec.ConfidenceScore > 100 {
		t.Errorf("confidence %v out of range", rec.ConfidenceScore)
	}
	if rec.PersonalizedMessage == "" || rec.Reasoning == "" {
		t.Error("expected non-empty message and reasoning")
	}
}

func TestGenerateRecommendations_RulesTablesInjected(t *testing.T) {
	accounts, challenges := strongPerformer(testNow)
	profiles := recommend.NewProfileBuilder(accounts, challenges)

	// A tuned economy: medium challenges pay double and are estimated from a
	// 10-minute base.
	rules := domain.DefaultRules()
	rules.PointsMultiplier = map[domain.Difficulty]float64{
		domain.DifficultyEasy:   0.5,
		domain.DifficultyMedium: 2.0,
		domain.DifficultyHard:   3.0,
	}
	rules.BaseTimeMinutes = map[domain.Difficulty]int{
		domain.DifficultyEasy:   5,
		domain.DifficultyMedium: 10,
		domain.DifficultyHard:   20,
	}

	gen := genFunc(func(ctx context.Context, ct domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
		return easyCandidate("movement"), nil
	})
	scorer := recommend.NewScorer(profiles, challenges, gen, rules, time.Second)

	recs, err := scorer.GenerateRecommendationsAt(context.Background(), "u1",
		[]domain.ChallengeType{domain.ChallengeDaily}, 1, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}

	rec := recs[0]
	if rec.AdaptedDifficulty != domain.DifficultyMedium {
		t.Fatalf("adapted = %s, want medium", rec.AdaptedDifficulty)
	}
	if rec.AdaptedPoints != 40 { // 20 × 2.0 configured medium multiplier
		t.Errorf("points = %d, want 40", rec.AdaptedPoints)
	}
	if rec.EstimatedCompletionTimeMinutes != 15 { // 10 × (1 + (10−5)×0.1)
		t.Errorf("time = %d, want 15", rec.EstimatedCompletionTimeMinutes)
	}
}

func TestGenerateRecommendations_FailedTypeSkipped(t *testing.T) {
	accounts, challenges := strongPerformer(testNow)
	profiles := recommend.NewProfileBuilder(accounts, challenges)

	gen := genFunc(func(ctx context.Context, ct domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
		if ct == domain.ChallengeWeekly {
			return nil, fmt.Errorf("%w: provider unavailable", domain.ErrContentGeneration)
		}
		return easyCandidate("movement"), nil
	})
	scorer := recommend.NewScorer(profiles, challenges, gen, domain.DefaultRules(), time.Second)

	recs, err := scorer.GenerateRecommendationsAt(context.Background(), "u1", nil, 3, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2 (weekly skipped)", len(recs))
	}
	for _, rec := range recs {
		if rec.Candidate.Type == domain.ChallengeWeekly {
			t.Error("failed type present in results")
		}
	}
}

func TestGenerateRecommendations_SlowGeneratorTimesOut(t *testing.T) {
	accounts, challenges := strongPerformer(testNow)
	profiles := recommend.NewProfileBuilder(accounts, challenges)

	gen := genFunc(func(ctx context.Context, ct domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	scorer := recommend.NewScorer(profiles, challenges, gen, domain.DefaultRules(), 20*time.Millisecond)

	recs, err := scorer.GenerateRecommendationsAt(context.Background(), "u1", nil, 3, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d recommendations, want 0 (all timed out)", len(recs))
	}
}

func TestGenerateRecommendations_SortedAndTruncated(t *testing.T) {
	accounts, challenges := strongPerformer(testNow)
	profiles := recommend.NewProfileBuilder(accounts, challenges)

	// Only the daily candidate hits a preferred category, so it must rank
	// first.
	gen := genFunc(func(ctx context.Context, ct domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
		switch ct {
		case domain.ChallengeDaily:
			return easyCandidate("movement"), nil
		case domain.ChallengePersonalized:
			return easyCandidate("gardening"), nil
		default:
			return easyCandidate("astronomy"), nil
		}
	})
	scorer := recommend.NewScorer(profiles, challenges, gen, domain.DefaultRules(), time.Second)

	recs, err := scorer.GenerateRecommendationsAt(context.Background(), "u1", nil, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2 (truncated)", len(recs))
	}
	if recs[0].ConfidenceScore < recs[1].ConfidenceScore {
		t.Errorf("not sorted: %v then %v", recs[0].ConfidenceScore, recs[1].ConfidenceScore)
	}
	if recs[0].Candidate.Category != "movement" {
		t.Errorf("top category = %q, want movement", recs[0].Candidate.Category)
	}
}

func TestGenerateRecommendations_AccountNotFound(t *testing.T) {
	accounts := &fakeAccounts{acct: domain.Account{ID: "someone-else"}}
	challenges := &fakeChallenges{}
	profiles := recommend.NewProfileBuilder(accounts, challenges)
	gen := genFunc(func(ctx context.Context, ct domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
		return easyCandidate("movement"), nil
	})
	scorer := recommend.NewScorer(profiles, challenges, gen, domain.DefaultRules(), time.Second)

	_, err := scorer.GenerateRecommendationsAt(context.Background(), "ghost", nil, 3, testNow)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("err = %v, want ErrAccountNotFound", err)
	}
}

// Scores stay in range and difficulties stay valid across a spread of
// histories and candidates.
func TestGenerateRecommendations_ScoreProperties(t *testing.T) {
	difficulties := []domain.Difficulty{
		domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard,
	}

	for completed := 0; completed <= 20; completed += 5 {
		for _, baseDiff := range difficulties {
			accounts := &fakeAccounts{acct: domain.Account{ID: "u1", LifetimePoints: int64(completed) * 30}}

			var history []domain.UserChallenge
			for i := 0; i < completed; i++ {
				done := testNow.AddDate(0, 0, -i*2)
				history = append(history, domain.UserChallenge{
					ID: fmt.Sprintf("c%d", i), AccountID: "u1", Category: "sleep",
					Difficulty: baseDiff, Status: domain.ChallengeCompleted,
					AssignedAt: done.Add(-time.Hour), CompletedAt: done,
				})
			}
			history = append(history, domain.UserChallenge{
				ID: "open", AccountID: "u1", Category: "sleep", Difficulty: baseDiff,
				Status: domain.ChallengeSkipped, AssignedAt: testNow.AddDate(0, 0, -1),
			})
			challenges := &fakeChallenges{challenges: history}
			profiles := recommend.NewProfileBuilder(accounts, challenges)

			diff := baseDiff
			gen := genFunc(func(ctx context.Context, ct domain.ChallengeType, p domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
				return &domain.ChallengeCandidate{
					Category:       "sleep",
					BaseDifficulty: diff,
					BasePoints:     40,
					Description:    "candidate",
				}, nil
			})
			scorer := recommend.NewScorer(profiles, challenges, gen, domain.DefaultRules(), time.Second)

			recs, err := scorer.GenerateRecommendationsAt(context.Background(), "u1", nil, 3, testNow)
			if err != nil {
				t.Fatalf("completed=%d diff=%s: %v", completed, baseDiff, err)
			}
			for _, rec := range recs {
				if rec.ConfidenceScore < 0 || rec.ConfidenceScore > 100 {
					t.Errorf("completed=%d diff=%s: confidence %v out of range", completed, baseDiff, rec.ConfidenceScore)
				}
				switch rec.AdaptedDifficulty {
				case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
				default:
					t.Errorf("invalid adapted difficulty %q", rec.AdaptedDifficulty)
				}
				if rec.AdaptedPoints <= 0 {
					t.Errorf("non-positive adapted points %d", rec.AdaptedPoints)
				}
				if rec.EstimatedCompletionTimeMinutes <= 0 {
					t.Errorf("non-positive time estimate %d", rec.EstimatedCompletionTimeMinutes)
				}
			}
		}
	}
}
