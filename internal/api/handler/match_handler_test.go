package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pairline/matching-system/internal/core/domain"
	"github.com/pairline/matching-system/internal/core/ports"
)

type stubMatchingService struct {
	joinResult   *ports.JoinResult
	joinErr      error
	joinInput    ports.JoinInput
	leaveUserID  string
	statusResult *ports.StatusResult
	voteResult   *ports.VoteResult
	voteMatchID  string
	voteUserID   string
	voteCast     domain.VoteType
}

func (s *stubMatchingService) Join(ctx context.Context, input ports.JoinInput) (*ports.JoinResult, error) {
	s.joinInput = input
	return s.joinResult, s.joinErr
}

func (s *stubMatchingService) Leave(ctx context.Context, userID string) error {
	s.leaveUserID = userID
	return nil
}

func (s *stubMatchingService) Status(ctx context.Context, userID string) (*ports.StatusResult, error) {
	return s.statusResult, nil
}

func (s *stubMatchingService) SubmitVote(ctx context.Context, matchID, userID string, vote domain.VoteType) (*ports.VoteResult, error) {
	s.voteMatchID = matchID
	s.voteUserID = userID
	s.voteCast = vote
	return s.voteResult, nil
}

type stubPresenceStore struct {
	beats []string
}

func (s *stubPresenceStore) Heartbeat(ctx context.Context, userID string) error {
	s.beats = append(s.beats, userID)
	return nil
}

func (s *stubPresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return true, nil
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "usr_a")
	return c, rec
}

const validJoinBody = `{
	"preferences": {
		"gender": "male",
		"age": 30,
		"location": {"lat": 51.5, "lng": -0.12},
		"seeking": "female",
		"age_min": 25,
		"age_max": 35,
		"max_distance_km": 50
	}
}`

func TestJoinHandler_Queued(t *testing.T) {
	svc := &stubMatchingService{joinResult: &ports.JoinResult{Status: ports.StateQueued}}
	h := NewMatchHandler(svc, &stubPresenceStore{})

	c, rec := newTestContext(t, http.MethodPost, "/v1/queue/join", validJoinBody)
	if err := h.Join(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp joinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != ports.StateQueued || resp.MatchID != "" {
		t.Fatalf("resp = %+v", resp)
	}

	if svc.joinInput.UserID != "usr_a" {
		t.Fatalf("user id not taken from token claim: %q", svc.joinInput.UserID)
	}
	if svc.joinInput.Prefs.Seeking != domain.GenderFemale || svc.joinInput.Prefs.AgeMax != 35 {
		t.Fatalf("preferences not mapped: %+v", svc.joinInput.Prefs)
	}
}

func TestJoinHandler_ImmediateMatch(t *testing.T) {
	svc := &stubMatchingService{joinResult: &ports.JoinResult{Status: ports.StateMatched, MatchID: "MCH-00000001"}}
	h := NewMatchHandler(svc, &stubPresenceStore{})

	c, rec := newTestContext(t, http.MethodPost, "/v1/queue/join", validJoinBody)
	if err := h.Join(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp joinResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != ports.StateMatched || resp.MatchID != "MCH-00000001" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestJoinHandler_InvalidPreferences(t *testing.T) {
	h := NewMatchHandler(&stubMatchingService{}, &stubPresenceStore{})

	body := `{"preferences": {"gender": "robot", "age": 30, "seeking": "any", "age_min": 25, "age_max": 35}}`
	c, _ := newTestContext(t, http.MethodPost, "/v1/queue/join", body)

	err := h.Join(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 validation error, got %v", err)
	}
}

func TestJoinHandler_MissingUserClaim(t *testing.T) {
	h := NewMatchHandler(&stubMatchingService{}, &stubPresenceStore{})

	c, _ := newTestContext(t, http.MethodPost, "/v1/queue/join", validJoinBody)
	c.Set("user_id", "")

	err := h.Join(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestLeaveHandler(t *testing.T) {
	svc := &stubMatchingService{}
	h := NewMatchHandler(svc, &stubPresenceStore{})

	c, rec := newTestContext(t, http.MethodPost, "/v1/queue/leave", "")
	if err := h.Leave(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.leaveUserID != "usr_a" {
		t.Fatalf("leave user = %q", svc.leaveUserID)
	}
}

func TestStatusHandler_Matched(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 0, 10, 0, time.UTC)
	svc := &stubMatchingService{statusResult: &ports.StatusResult{
		State:               ports.StateMatched,
		MatchID:             "MCH-00000001",
		PartnerID:           "usr_b",
		VoteWindowExpiresAt: &expires,
	}}
	h := NewMatchHandler(svc, &stubPresenceStore{})

	c, rec := newTestContext(t, http.MethodGet, "/v1/status", "")
	if err := h.Status(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != ports.StateMatched || resp.PartnerID != "usr_b" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.VoteWindowExpiresAt == nil || !resp.VoteWindowExpiresAt.Equal(expires) {
		t.Fatalf("vote window deadline missing")
	}
}

func TestVoteHandler(t *testing.T) {
	svc := &stubMatchingService{voteResult: &ports.VoteResult{Outcome: "both_yes"}}
	h := NewMatchHandler(svc, &stubPresenceStore{})

	c, rec := newTestContext(t, http.MethodPost, "/v1/matches/MCH-00000001/vote", `{"vote": "yes"}`)
	c.SetParamNames("match_id")
	c.SetParamValues("MCH-00000001")

	if err := h.Vote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp voteResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Outcome != "both_yes" {
		t.Fatalf("resp = %+v", resp)
	}
	if svc.voteMatchID != "MCH-00000001" || svc.voteUserID != "usr_a" || svc.voteCast != domain.VoteYes {
		t.Fatalf("vote not forwarded: %q %q %q", svc.voteMatchID, svc.voteUserID, svc.voteCast)
	}
}

func TestVoteHandler_InvalidVoteValue(t *testing.T) {
	h := NewMatchHandler(&stubMatchingService{}, &stubPresenceStore{})

	c, _ := newTestContext(t, http.MethodPost, "/v1/matches/MCH-00000001/vote", `{"vote": "maybe"}`)
	c.SetParamNames("match_id")
	c.SetParamValues("MCH-00000001")

	err := h.Vote(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHeartbeatHandler(t *testing.T) {
	presence := &stubPresenceStore{}
	h := NewMatchHandler(&stubMatchingService{}, presence)

	c, rec := newTestContext(t, http.MethodPost, "/v1/heartbeat", "")
	if err := h.Heartbeat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(presence.beats) != 1 || presence.beats[0] != "usr_a" {
		t.Fatalf("heartbeat not forwarded: %v", presence.beats)
	}
}
