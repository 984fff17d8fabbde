package domain

import (
	"errors"
	"time"
)

// MatchStatus represents the lifecycle state of a match.
type MatchStatus string

const (
	MatchActive   MatchStatus = "active"
	MatchResolved MatchStatus = "resolved"
)

// VoteType is a participant's recorded decision on a match.
type VoteType string

const (
	VoteYes  VoteType = "yes"
	VotePass VoteType = "pass"
)

// Outcome classifies a resolved match. Sides that never voted inside the
// window count as idle.
type Outcome string

const (
	OutcomeBothYes  Outcome = "both_yes"
	OutcomeYesPass  Outcome = "yes_pass"
	OutcomeYesIdle  Outcome = "yes_idle"
	OutcomeBothPass Outcome = "both_pass"
	OutcomePassIdle Outcome = "pass_idle"
	OutcomeBothIdle Outcome = "both_idle"
)

var ErrMatchNotFound = errors.New("no active match")
var ErrAlreadyVoted = errors.New("vote already recorded")
var ErrVoteWindowExpired = errors.New("vote window has expired")
var ErrPairConflict = errors.New("pair creation conflict")

// Match is an exclusive two-party session. For any two users at most one
// active match exists, and a user appears in at most one active match.
type Match struct {
	ID                  string
	Pair                Pair
	Status              MatchStatus
	Profiles            map[string]Preferences
	Votes               map[string]VoteType
	VoteWindowStartedAt time.Time
	VoteWindowExpiresAt time.Time
}

// NewMatch creates an active match with the vote window opened. Window
// initialization is unconditional here so no "missing window" state can
// exist for a sweep to repair later.
func NewMatch(id string, pair Pair, profiles map[string]Preferences, now time.Time, window time.Duration) *Match {
	return &Match{
		ID:                  id,
		Pair:                pair,
		Status:              MatchActive,
		Profiles:            profiles,
		Votes:               make(map[string]VoteType, 2),
		VoteWindowStartedAt: now,
		VoteWindowExpiresAt: now.Add(window),
	}
}

// WindowExpired reports whether the vote window has closed.
func (m *Match) WindowExpired(now time.Time) bool {
	return now.After(m.VoteWindowExpiresAt)
}

// BothVoted reports whether both participants have a recorded vote.
func (m *Match) BothVoted() bool {
	return len(m.Votes) == 2
}

// Effect describes what happens to one participant when a match resolves.
type Effect struct {
	// Requeue re-creates the user's queue entry immediately; otherwise the
	// user goes idle and must join again explicitly.
	Requeue bool
	// Boost grants a fairness credit alongside the requeue.
	Boost bool
}

// Resolution is the full consequence of resolving a match.
type Resolution struct {
	Outcome   Outcome
	Blocklist bool
	Effects   map[string]Effect
}

// Resolve evaluates the outcome table over the recorded votes, treating
// missing votes as idle. Blocklisting applies only to mutual outcomes
// (both yes, both pass) and yes+pass; sides lost to a timeout never
// blocklist the pair.
func (m *Match) Resolve() Resolution {
	voteA, votedA := m.Votes[m.Pair.A]
	voteB, votedB := m.Votes[m.Pair.B]

	res := Resolution{Effects: make(map[string]Effect, 2)}

	switch {
	case votedA && votedB && voteA == VoteYes && voteB == VoteYes:
		res.Outcome = OutcomeBothYes
		res.Blocklist = true

	case votedA && votedB && voteA != voteB:
		res.Outcome = OutcomeYesPass
		res.Blocklist = true
		yes := m.Pair.A
		if voteB == VoteYes {
			yes = m.Pair.B
		}
		res.Effects[yes] = Effect{Requeue: true, Boost: true}

	case votedA && votedB:
		res.Outcome = OutcomeBothPass
		res.Blocklist = true

	case votedA || votedB:
		voter, vote := m.Pair.A, voteA
		if votedB {
			voter, vote = m.Pair.B, voteB
		}
		if vote == VoteYes {
			res.Outcome = OutcomeYesIdle
			res.Effects[voter] = Effect{Requeue: true, Boost: true}
		} else {
			res.Outcome = OutcomePassIdle
			res.Effects[voter] = Effect{Requeue: true}
		}

	default:
		res.Outcome = OutcomeBothIdle
	}

	return res
}
