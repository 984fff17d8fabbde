package domain

import (
	"errors"
	"time"
)

var ErrAlreadyQueued = errors.New("user already queued")
var ErrAlreadyMatched = errors.New("user already in an active match")
var ErrIneligible = errors.New("user is offline or under cooldown")

// PreferenceStage is the relaxation level of a user's match filters.
// It only moves forward while the user stays queued.
type PreferenceStage int

const (
	StageExact    PreferenceStage = iota // exact preferences
	StageAgeNudge                        // age tolerance widened by 2
	StageWideNet                         // age widened by 4, distance x1.5
	StageOpen                            // all numeric filters open
)

// Stage thresholds as elapsed wait time.
const (
	stageAgeNudgeAfter = 10 * time.Second
	stageWideNetAfter  = 15 * time.Second
	stageOpenAfter     = 20 * time.Second
)

// StageForWait maps elapsed queue wait to a relaxation stage.
func StageForWait(wait time.Duration) PreferenceStage {
	switch {
	case wait >= stageOpenAfter:
		return StageOpen
	case wait >= stageWideNetAfter:
		return StageWideNet
	case wait >= stageAgeNudgeAfter:
		return StageAgeNudge
	default:
		return StageExact
	}
}

// FairnessBoost is the score credit granted when a user said yes but the
// partner did not reciprocate.
const FairnessBoost = 10.0

// QueueEntry is a user's slot in the waiting room. A user has at most one
// entry at any time.
type QueueEntry struct {
	UserID        string
	Prefs         Preferences
	JoinedAt      time.Time
	FairnessScore float64
	Stage         PreferenceStage
	YesBoosts     int
}

// NewQueueEntry creates an entry at stage zero, carrying over the user's
// accumulated yes boosts into the initial score.
func NewQueueEntry(userID string, prefs Preferences, yesBoosts int, now time.Time) *QueueEntry {
	e := &QueueEntry{
		UserID:    userID,
		Prefs:     prefs,
		JoinedAt:  now,
		YesBoosts: yesBoosts,
	}
	e.Recompute(now)
	return e
}

// Wait returns how long the entry has been queued.
func (e *QueueEntry) Wait(now time.Time) time.Duration {
	return now.Sub(e.JoinedAt)
}

// Recompute refreshes the fairness score and relaxation stage from the
// current wait. Both are monotone while the entry lives: the score formula
// only grows with wait and boosts, and the stage never steps back.
func (e *QueueEntry) Recompute(now time.Time) {
	score := e.Wait(now).Seconds() + FairnessBoost*float64(e.YesBoosts)
	if score > e.FairnessScore {
		e.FairnessScore = score
	}
	if s := StageForWait(e.Wait(now)); s > e.Stage {
		e.Stage = s
	}
}
