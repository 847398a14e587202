package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wellspring-health/wellspring/internal/domain"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

type createAccountRequest struct {
	AccountID string `json:"account_id"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.AccountID == "" {
		writeError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	acct, err := s.ledger.CreateAccount(req.AccountID, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

// ─── Points ─────────────────────────────────────────────────────────────────

// awardRequest carries the activity type and its type-specific metadata.
// Metadata is decoded against the concrete shape for the declared type; a
// mismatched shape is rejected before any points move.
type awardRequest struct {
	ActivityType domain.ActivityType `json:"activity_type"`
	Metadata     json.RawMessage     `json:"metadata,omitempty"`
}

func (s *Server) handleAwardPoints(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	meta, err := decodeMetadata(req.ActivityType, req.Metadata)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.ledger.AwardPoints(accountID, req.ActivityType, meta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeMetadata maps the declared activity type to its concrete metadata
// shape. Nil metadata is allowed; an unknown type is rejected here so the
// error surfaces as InvalidActivityType rather than a decode failure.
func decodeMetadata(t domain.ActivityType, raw json.RawMessage) (domain.ActivityMetadata, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var meta domain.ActivityMetadata
	switch t {
	case domain.ActivitySymptomLog:
		meta = &domain.SymptomLogMetadata{}
	case domain.ActivityDailyCheckIn:
		meta = &domain.DailyCheckInMetadata{}
	case domain.ActivityChallengeCompleted:
		meta = &domain.ChallengeCompletedMetadata{}
	case domain.ActivityForumPost:
		meta = &domain.ForumPostMetadata{}
	case domain.ActivityForumComment:
		meta = &domain.ForumCommentMetadata{}
	case domain.ActivityChatSession:
		meta = &domain.ChatSessionMetadata{}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidActivityType, t)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(meta); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMetadata, err)
	}
	return deref(meta), nil
}

// deref returns the value pointed to so metadata kinds compare by concrete
// value type.
func deref(meta domain.ActivityMetadata) domain.ActivityMetadata {
	switch m := meta.(type) {
	case *domain.SymptomLogMetadata:
		return *m
	case *domain.DailyCheckInMetadata:
		return *m
	case *domain.ChallengeCompletedMetadata:
		return *m
	case *domain.ForumPostMetadata:
		return *m
	case *domain.ForumCommentMetadata:
		return *m
	case *domain.ChatSessionMetadata:
		return *m
	default:
		return meta
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	summary, err := s.ledger.GetPointsSummary(accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ─── Badges ─────────────────────────────────────────────────────────────────

func (s *Server) handleBadgeCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges": s.badges.Definitions(),
	})
}

func (s *Server) handleAccountBadges(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	earned, err := s.badges.Badges(accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges": earned,
	})
}

// ─── Profiles & Recommendations ─────────────────────────────────────────────

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	profile, err := s.profiles.Build(accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var types []domain.ChallengeType
	for _, v := range r.URL.Query()["type"] {
		types = append(types, domain.ChallengeType(v))
	}
	count := 0
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}

	recs, err := s.scorer.GenerateRecommendations(r.Context(), accountID, types, count)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
	})
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	pending, err := s.notifications.Pending(accountID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if pending == nil {
		pending = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": pending,
	})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := s.notifications.MarkShown(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
