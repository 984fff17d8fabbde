package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pairline/matching-system/internal/api/metrics"
	"github.com/pairline/matching-system/internal/core/domain"
	"github.com/pairline/matching-system/internal/core/ports"
)

// Config carries the coordinator tunables. Zero values fall back to the
// defaults below.
type Config struct {
	// VoteWindow is how long both parties have to vote once matched.
	VoteWindow time.Duration
	// PairRetries bounds the re-scan attempts after a pair-creation conflict.
	PairRetries int
	// PairBackoff is the base delay between conflict retries; it doubles
	// per attempt.
	PairBackoff time.Duration
}

const (
	defaultVoteWindow  = 10 * time.Second
	defaultPairRetries = 3
	defaultPairBackoff = 5 * time.Millisecond
)

func (c *Config) applyDefaults() {
	if c.VoteWindow <= 0 {
		c.VoteWindow = defaultVoteWindow
	}
	if c.PairRetries <= 0 {
		c.PairRetries = defaultPairRetries
	}
	if c.PairBackoff <= 0 {
		c.PairBackoff = defaultPairBackoff
	}
}

// Coordinator owns all mutable queue/match state for one pool and
// implements ports.MatchingService. Per-user operations serialize through
// the lock table; pair creation is the single two-user critical section.
type Coordinator struct {
	cfg Config

	room  *waitingRoom
	locks *lockTable

	matchesMu sync.RWMutex
	matches   map[string]*domain.Match
	byUser    map[string]string // user id -> active match id

	presence  ports.PresenceStore
	cooldowns ports.CooldownStore
	blocklist *Blocklist
	archive   ports.MatchArchive
	notifier  ports.Notifier

	log zerolog.Logger
	now func() time.Time
}

// NewCoordinator wires the engine. The clock defaults to time.Now and is
// overridable for tests via WithClock.
func NewCoordinator(
	cfg Config,
	presence ports.PresenceStore,
	cooldowns ports.CooldownStore,
	blocklist *Blocklist,
	archive ports.MatchArchive,
	notifier ports.Notifier,
	log zerolog.Logger,
) *Coordinator {
	cfg.applyDefaults()
	return &Coordinator{
		cfg:       cfg,
		room:      newWaitingRoom(),
		locks:     newLockTable(),
		matches:   make(map[string]*domain.Match),
		byUser:    make(map[string]string),
		presence:  presence,
		cooldowns: cooldowns,
		blocklist: blocklist,
		archive:   archive,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// WithClock replaces the coordinator's clock. Intended for tests.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// Join admits the user into the queue and synchronously attempts one
// bounded match before returning. It never blocks waiting for a future
// match: a caller that does not match immediately is left queued.
func (c *Coordinator) Join(ctx context.Context, input ports.JoinInput) (*ports.JoinResult, error) {
	if err := c.admit(ctx, input); err != nil {
		return nil, err
	}

	c.log.Debug().Str("user_id", input.UserID).Msg("user joined queue")
	metrics.QueueDepth.Set(float64(c.room.size()))

	if matchID := c.tryMatch(ctx, input.UserID); matchID != "" {
		return &ports.JoinResult{Status: ports.StateMatched, MatchID: matchID}, nil
	}
	return &ports.JoinResult{Status: ports.StateQueued}, nil
}

// admit validates eligibility and inserts the queue entry under the user's
// lock.
func (c *Coordinator) admit(ctx context.Context, input ports.JoinInput) error {
	unlock := c.locks.lockUser(input.UserID)
	defer unlock()

	if _, ok := c.activeMatchID(input.UserID); ok {
		return domain.ErrAlreadyMatched
	}

	online, err := c.presence.IsOnline(ctx, input.UserID)
	if err != nil {
		return fmt.Errorf("presence check: %w", err)
	}
	if !online {
		return fmt.Errorf("%w: no recent heartbeat", domain.ErrIneligible)
	}

	cooling, err := c.cooldowns.OnCooldown(ctx, input.UserID)
	if err != nil {
		return fmt.Errorf("cooldown check: %w", err)
	}
	if cooling {
		return fmt.Errorf("%w: cooldown active", domain.ErrIneligible)
	}

	entry := domain.NewQueueEntry(input.UserID, input.Prefs, c.room.boostsFor(input.UserID), c.now())
	return c.room.add(entry)
}

// Leave removes the user's queue entry. Idempotent: leaving while not
// queued is not an error.
func (c *Coordinator) Leave(ctx context.Context, userID string) error {
	unlock := c.locks.lockUser(userID)
	defer unlock()

	if c.room.remove(userID) {
		c.log.Debug().Str("user_id", userID).Msg("user left queue")
		metrics.QueueDepth.Set(float64(c.room.size()))
	}
	return nil
}

// Status reports the user's coordination state for polling clients.
func (c *Coordinator) Status(ctx context.Context, userID string) (*ports.StatusResult, error) {
	unlock := c.locks.lockUser(userID)
	defer unlock()

	if matchID, ok := c.activeMatchID(userID); ok {
		c.matchesMu.RLock()
		m := c.matches[matchID]
		c.matchesMu.RUnlock()
		if m != nil {
			expires := m.VoteWindowExpiresAt
			return &ports.StatusResult{
				State:               ports.StateMatched,
				MatchID:             m.ID,
				PartnerID:           m.Pair.Other(userID),
				VoteWindowExpiresAt: &expires,
			}, nil
		}
	}

	if entry, ok := c.room.entry(userID, c.now()); ok {
		return &ports.StatusResult{
			State:           ports.StateQueued,
			FairnessScore:   entry.FairnessScore,
			PreferenceStage: int(entry.Stage),
		}, nil
	}

	return &ports.StatusResult{State: ports.StateIdle}, nil
}

// activeMatchID returns the user's active match id, if any.
func (c *Coordinator) activeMatchID(userID string) (string, bool) {
	c.matchesMu.RLock()
	defer c.matchesMu.RUnlock()
	id, ok := c.byUser[userID]
	return id, ok
}

// activeMatches returns a point-in-time slice of the active matches.
func (c *Coordinator) activeMatches() []*domain.Match {
	c.matchesMu.RLock()
	defer c.matchesMu.RUnlock()
	out := make([]*domain.Match, 0, len(c.matches))
	for _, m := range c.matches {
		out = append(out, m)
	}
	return out
}

// QueueDepth returns the number of currently queued users.
func (c *Coordinator) QueueDepth() int {
	return c.room.size()
}

// ActiveMatchCount returns the number of live matches.
func (c *Coordinator) ActiveMatchCount() int {
	c.matchesMu.RLock()
	defer c.matchesMu.RUnlock()
	return len(c.matches)
}
