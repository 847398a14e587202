// Package content produces challenge candidates. The OpenAI-compatible
// client talks to any /v1/chat/completions provider; the mock generator
// serves deterministic candidates when no provider is configured.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wellspring-health/wellspring/internal/domain"
)

const defaultHTTPTimeout = 30 * time.Second

// OpenAIGenerator requests challenge candidates from an OpenAI-compatible
// chat completions endpoint. The model is instructed to reply with a single
// JSON object matching the candidate schema.
type OpenAIGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIGenerator creates a generator against the given provider.
// baseURL is the provider root (e.g. "https://api.openai.com").
func NewOpenAIGenerator(baseURL, apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// candidatePayload is the JSON schema the model is asked to produce.
type candidatePayload struct {
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	BasePoints  int64  `json:"base_points"`
	Description string `json:"description"`
}

// GenerateCandidate asks the provider for one candidate of the given type.
// All failures wrap ErrContentGeneration so callers can treat them as a
// non-fatal skip.
func (g *OpenAIGenerator) GenerateCandidate(ctx context.Context, t domain.ChallengeType, profile domain.UserHealthProfile) (*domain.ChallengeCandidate, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(t, profile)},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrContentGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrContentGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrContentGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: provider returned %d: %s", domain.ErrContentGeneration, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrContentGeneration, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", domain.ErrContentGeneration)
	}

	return parseCandidate(t, chat.Choices[0].Message.Content)
}

// parseCandidate extracts the JSON object from the model's reply, tolerating
// surrounding prose or a markdown fence.
func parseCandidate(t domain.ChallengeType, content string) (*domain.ChallengeCandidate, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in completion", domain.ErrContentGeneration)
	}

	var payload candidatePayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed candidate: %v", domain.ErrContentGeneration, err)
	}
	if payload.Description == "" || payload.Category == "" {
		return nil, fmt.Errorf("%w: incomplete candidate", domain.ErrContentGeneration)
	}

	difficulty := domain.Difficulty(payload.Difficulty)
	switch difficulty {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		difficulty = domain.DifficultyMedium
	}
	points := payload.BasePoints
	if points <= 0 {
		points = 25
	}

	return &domain.ChallengeCandidate{
		Type:           t,
		Category:       payload.Category,
		BaseDifficulty: difficulty,
		BasePoints:     points,
		Description:    payload.Description,
	}, nil
}

const systemPrompt = `You generate wellness challenge candidates. Reply with exactly one JSON object:
{"category": string, "difficulty": "easy"|"medium"|"hard", "base_points": number, "description": string}
No other text.`

// userPrompt summarizes the profile so the model can tailor the candidate
// without seeing any raw user data.
func userPrompt(t domain.ChallengeType, p domain.UserHealthProfile) string {
	return fmt.Sprintf(
		"Generate a %s wellness challenge. User level %d of 10, completion rate %.0f%%, preferred categories: %s, usual difficulty: %s.",
		t, p.CurrentLevel, p.CompletionRate*100, strings.Join(p.PreferredCategories, ", "), p.DifficultyPreference)
}
