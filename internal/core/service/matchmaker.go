package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/pairline/matching-system/internal/api/metrics"
	"github.com/pairline/matching-system/internal/core/domain"
	"github.com/pairline/matching-system/internal/core/ports"
)

// tryMatch scans the priority order for a mutually eligible counterpart and
// attempts atomic pair creation. Conflicts (the candidate was taken between
// scan and lock) trigger a bounded re-scan with doubling backoff; after the
// last attempt the user simply stays queued for the next sweep or poll.
func (c *Coordinator) tryMatch(ctx context.Context, userID string) string {
	backoff := c.cfg.PairBackoff
	for attempt := 0; attempt <= c.cfg.PairRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		me, ok := c.room.entry(userID, c.now())
		if !ok {
			return "" // no longer queued
		}

		candidate, found := c.findCandidate(ctx, me)
		if !found {
			return ""
		}

		m, err := c.createPair(ctx, userID, candidate)
		if err == nil {
			return m.ID
		}
		if !errors.Is(err, domain.ErrPairConflict) {
			c.log.Error().Err(err).Str("user_id", userID).Msg("pair creation failed")
			return ""
		}
		metrics.PairConflictsTotal.Inc()
	}

	c.log.Debug().Str("user_id", userID).Msg("pair retries exhausted, user stays queued")
	return ""
}

// findCandidate walks the priority snapshot for the first counterpart that
// is mutually eligible with me.
func (c *Coordinator) findCandidate(ctx context.Context, me domain.QueueEntry) (string, bool) {
	for _, cand := range c.room.snapshot(c.now()) {
		if cand.UserID == me.UserID {
			continue
		}
		if c.eligiblePair(ctx, me, cand) {
			return cand.UserID, true
		}
	}
	return "", false
}

// eligiblePair checks every pairing constraint: mutual stage-relaxed
// preference satisfaction (gender never relaxed), blocklist, cooldown, and
// presence for both sides.
func (c *Coordinator) eligiblePair(ctx context.Context, a, b domain.QueueEntry) bool {
	if !domain.MutuallyCompatible(a.Prefs, a.Stage, b.Prefs, b.Stage) {
		return false
	}

	pair, err := domain.NewPair(a.UserID, b.UserID)
	if err != nil {
		return false
	}
	if c.blocklist.Blocked(pair) {
		return false
	}

	for _, id := range []string{a.UserID, b.UserID} {
		online, err := c.presence.IsOnline(ctx, id)
		if err != nil {
			c.log.Warn().Err(err).Str("user_id", id).Msg("presence check failed during scan")
			return false
		}
		if !online {
			return false
		}
		cooling, err := c.cooldowns.OnCooldown(ctx, id)
		if err != nil {
			c.log.Warn().Err(err).Str("user_id", id).Msg("cooldown check failed during scan")
			return false
		}
		if cooling {
			return false
		}
	}
	return true
}

// createPair is the critical section: both users leave the queue and a
// single active match appears, or nothing changes. Locks are taken in
// ascending id order and state is re-validated under them, since the world
// may have moved between scan and lock acquisition.
func (c *Coordinator) createPair(ctx context.Context, a, b string) (*domain.Match, error) {
	unlock := c.locks.lockPair(a, b)
	defer unlock()

	now := c.now()
	entryA, okA := c.room.entry(a, now)
	entryB, okB := c.room.entry(b, now)
	if !okA || !okB {
		return nil, domain.ErrPairConflict
	}
	if _, busy := c.activeMatchID(a); busy {
		return nil, domain.ErrPairConflict
	}
	if _, busy := c.activeMatchID(b); busy {
		return nil, domain.ErrPairConflict
	}
	if !c.eligiblePair(ctx, entryA, entryB) {
		return nil, domain.ErrPairConflict
	}

	pair, err := domain.NewPair(a, b)
	if err != nil {
		return nil, err
	}
	if !c.room.removePair(a, b) {
		return nil, domain.ErrPairConflict
	}

	m := domain.NewMatch(newMatchID(), pair, map[string]domain.Preferences{
		a: entryA.Prefs,
		b: entryB.Prefs,
	}, now, c.cfg.VoteWindow)

	c.matchesMu.Lock()
	c.matches[m.ID] = m
	c.byUser[a] = m.ID
	c.byUser[b] = m.ID
	c.matchesMu.Unlock()

	metrics.MatchesCreatedTotal.Inc()
	metrics.QueueDepth.Set(float64(c.room.size()))

	c.notifier.EnqueueBatch([]ports.Notification{
		{UserID: a, Kind: ports.NotifyMatchFound, MatchID: m.ID, PartnerID: b},
		{UserID: b, Kind: ports.NotifyMatchFound, MatchID: m.ID, PartnerID: a},
	})

	c.log.Info().
		Str("match_id", m.ID).
		Str("user_a", pair.A).
		Str("user_b", pair.B).
		Time("vote_window_expires_at", m.VoteWindowExpiresAt).
		Msg("match created")

	return m, nil
}

// newMatchID returns a unique match id in the format MCH-XXXXXXXX.
func newMatchID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("MCH-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("MCH-%08X", b)
}
