package ports

import (
	"context"
	"time"

	"github.com/pairline/matching-system/internal/core/domain"
)

// Queue/match presence states as seen by a polling client.
const (
	StateIdle    = "idle"
	StateQueued  = "queued"
	StateMatched = "matched"
)

// JoinInput carries a join request: who is joining and their current
// profile/preference snapshot (supplied by the profile store, trusted here).
type JoinInput struct {
	UserID string
	Prefs  domain.Preferences
}

// JoinResult reports whether the join matched immediately or left the user
// queued.
type JoinResult struct {
	Status  string // StateQueued or StateMatched
	MatchID string // set when Status is StateMatched
}

// StatusResult is the poll view of a user's coordination state.
type StatusResult struct {
	State               string
	MatchID             string
	PartnerID           string
	FairnessScore       float64
	PreferenceStage     int
	VoteWindowExpiresAt *time.Time
}

// VoteResult reports the consequence of a submitted vote. Outcome is
// "waiting" until the partner's side is known.
type VoteResult struct {
	Outcome string
}

// OutcomeWaiting is returned while the partner has not voted yet.
const OutcomeWaiting = "waiting"

// MatchingService is the coordination engine's public surface. All mutable
// queue/match/blocklist/cooldown state is owned behind it.
type MatchingService interface {
	Join(ctx context.Context, input JoinInput) (*JoinResult, error)
	Leave(ctx context.Context, userID string) error
	Status(ctx context.Context, userID string) (*StatusResult, error)
	SubmitVote(ctx context.Context, matchID, userID string, vote domain.VoteType) (*VoteResult, error)
}
