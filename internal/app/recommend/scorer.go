package recommend

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
	"github.com/wellspring-health/wellspring/internal/infra/metrics"
)

// defaultCount is how many recommendations a call returns unless asked
// otherwise.
const defaultCount = 3

// defaultCandidateTimeout bounds one generator request so a slow type cannot
// block the others or the overall call.
const defaultCandidateTimeout = 10 * time.Second

// Scorer fans candidate requests out to the content generator and ranks the
// results against the account's health profile.
type Scorer struct {
	profiles   *ProfileBuilder
	challenges domain.ChallengeStore
	generator  domain.CandidateGenerator
	rules      domain.Rules
	timeout    time.Duration
}

// NewScorer creates a recommendation scorer. The rules supply the difficulty
// point multipliers and base time estimates.
func NewScorer(profiles *ProfileBuilder, challenges domain.ChallengeStore, generator domain.CandidateGenerator, rules domain.Rules, timeout time.Duration) *Scorer {
	if timeout <= 0 {
		timeout = defaultCandidateTimeout
	}
	return &Scorer{
		profiles:   profiles,
		challenges: challenges,
		generator:  generator,
		rules:      rules,
		timeout:    timeout,
	}
}

// GenerateRecommendations builds the profile once, requests one candidate per
// type concurrently, scores whatever came back, and returns the top `count`
// by confidence. A failed or timed-out type is skipped — an empty result is a
// valid outcome, not an error.
func (s *Scorer) GenerateRecommendations(ctx context.Context, accountID string, types []domain.ChallengeType, count int) ([]domain.Recommendation, error) {
	return s.GenerateRecommendationsAt(ctx, accountID, types, count, time.Now())
}

// GenerateRecommendationsAt is GenerateRecommendations with an explicit
// evaluation time, for testability.
func (s *Scorer) GenerateRecommendationsAt(ctx context.Context, accountID string, types []domain.ChallengeType, count int, now time.Time) ([]domain.Recommendation, error) {
	if len(types) == 0 {
		types = domain.DefaultChallengeTypes()
	}
	if count <= 0 {
		count = defaultCount
	}

	started := time.Now()
	defer func() { metrics.RecommendationLatency.Observe(time.Since(started).Seconds()) }()

	profile, err := s.profiles.BuildAt(accountID, now)
	if err != nil {
		return nil, err
	}

	daysSinceLast, err := s.daysSinceLastChallenge(accountID, now)
	if err != nil {
		return nil, err
	}

	// Fan-out: one generator request per type, each under its own deadline.
	results := make(chan domain.ChallengeCandidate, len(types))
	var wg sync.WaitGroup
	for _, t := range types {
		wg.Add(1)
		go func(t domain.ChallengeType) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			cand, err := s.generator.GenerateCandidate(cctx, t, profile)
			if err != nil {
				// Non-fatal: this type is simply omitted.
				log.Printf("[recommend] %s candidate skipped: %v", t, err)
				metrics.CandidateFailures.WithLabelValues(string(t)).Inc()
				return
			}
			cand.Type = t
			results <- *cand
		}(t)
	}
	wg.Wait()
	close(results)

	var recs []domain.Recommendation
	for cand := range results {
		recs = append(recs, scoreCandidate(s.rules, profile, cand, daysSinceLast))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ConfidenceScore > recs[j].ConfidenceScore
	})
	if len(recs) > count {
		recs = recs[:count]
	}
	metrics.RecommendationsGenerated.Add(float64(len(recs)))
	return recs, nil
}

// daysSinceLastChallenge returns whole days since the account's most recent
// challenge assignment, or -1 if there is none.
func (s *Scorer) daysSinceLastChallenge(accountID string, now time.Time) (int, error) {
	challenges, err := s.challenges.UserChallenges(accountID)
	if err != nil {
		return 0, fmt.Errorf("load challenges: %w", err)
	}
	var last time.Time
	for _, c := range challenges {
		if c.AssignedAt.After(last) {
			last = c.AssignedAt
		}
	}
	if last.IsZero() {
		return -1, nil
	}
	return int(dayStart(now).Sub(dayStart(last)).Hours() / 24), nil
}

// ─── Scoring ────────────────────────────────────────────────────────────────

// scoreCandidate adapts a candidate to the profile and attaches its
// confidence, points, time estimate, and templated copy. All adjustments are
// deterministic; the point multipliers and base time estimates come from the
// injected rules.
func scoreCandidate(rules domain.Rules, p domain.UserHealthProfile, cand domain.ChallengeCandidate, daysSinceLast int) domain.Recommendation {
	adapted := adaptDifficulty(p, cand.BaseDifficulty)

	adaptedPoints := int64(math.Round(float64(cand.BasePoints) * rules.PointsMultiplier[adapted]))

	confidence := confidenceScore(p, cand, adapted, daysSinceLast)

	baseTime := rules.BaseTimeMinutes[adapted]
	estMinutes := int(math.Round(float64(baseTime) * (1 + float64(10-p.CurrentLevel)*0.1)))

	return domain.Recommendation{
		Candidate:                      cand,
		ConfidenceScore:                confidence,
		AdaptedDifficulty:              adapted,
		AdaptedPoints:                  adaptedPoints,
		EstimatedCompletionTimeMinutes: estMinutes,
		PersonalizedMessage:            personalizedMessage(p, cand),
		Reasoning:                      reasoning(p, cand, adapted),
	}
}

// adaptDifficulty escalates for strong performers, de-escalates for
// struggling ones, then clamps to the account's level band.
func adaptDifficulty(p domain.UserHealthProfile, base domain.Difficulty) domain.Difficulty {
	rank := base.Rank()

	switch {
	case p.CompletionRate > 0.85 && p.EngagementScore > 70 && p.StreakCount >= 3:
		rank++
	case p.CompletionRate < 0.4 || p.EngagementScore < 30:
		rank--
	}

	// Level clamps apply after the performance adjustment.
	if p.CurrentLevel <= 2 && rank > domain.DifficultyMedium.Rank() {
		rank = domain.DifficultyMedium.Rank()
	}
	if p.CurrentLevel >= 7 && rank < domain.DifficultyMedium.Rank() {
		rank = domain.DifficultyMedium.Rank()
	}

	return domain.DifficultyFromRank(rank)
}

// confidenceScore is the 0-100 heuristic fit estimate.
func confidenceScore(p domain.UserHealthProfile, cand domain.ChallengeCandidate, adapted domain.Difficulty, daysSinceLast int) float64 {
	score := 50.0

	for _, cat := range p.PreferredCategories {
		if cat == cand.Category {
			score += 20
			break
		}
	}
	if adapted == cand.BaseDifficulty {
		score += 15
	}
	if p.EngagementScore > 60 {
		score += 10
	} else if p.EngagementScore < 30 {
		score -= 10
	}
	switch {
	case daysSinceLast == 1:
		score += 15
	case daysSinceLast > 3:
		score -= 5
	}
	score += math.Min(10, float64(p.StreakCount)*2)

	return clamp(score, 0, 100)
}

// ─── Templated copy ─────────────────────────────────────────────────────────
// Deterministic compositions keyed off bucketed profile values — no
// randomness, so identical inputs always produce identical copy.

func personalizedMessage(p domain.UserHealthProfile, cand domain.ChallengeCandidate) string {
	var opener string
	switch {
	case p.StreakCount >= 7:
		opener = fmt.Sprintf("%d days strong — keep the momentum going!", p.StreakCount)
	case p.StreakCount >= 3:
		opener = "You're on a roll this week."
	case p.StreakCount >= 1:
		opener = "Nice work getting started."
	default:
		opener = "Today is a great day to begin."
	}
	return fmt.Sprintf("%s Here's a %s challenge picked for you: %s", opener, cand.Category, cand.Description)
}

func reasoning(p domain.UserHealthProfile, cand domain.ChallengeCandidate, adapted domain.Difficulty) string {
	var performance string
	switch {
	case p.CompletionRate >= 0.9:
		performance = "you finish nearly everything you start"
	case p.CompletionRate >= 0.7:
		performance = "you complete most of your challenges"
	case p.CompletionRate >= 0.4:
		performance = "you're building a completion habit"
	default:
		performance = "we're keeping things approachable"
	}

	var levelNote string
	switch {
	case p.CurrentLevel >= 7:
		levelNote = "at your level we keep the bar high"
	case p.CurrentLevel >= 4:
		levelNote = "matched to your current level"
	default:
		levelNote = "sized for where you are right now"
	}

	return fmt.Sprintf("Suggested %s difficulty because %s, %s (category: %s).",
		adapted, performance, levelNote, cand.Category)
}
