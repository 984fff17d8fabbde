package service

import (
	"context"

	"github.com/pairline/matching-system/internal/api/metrics"
	"github.com/pairline/matching-system/internal/core/domain"
	"github.com/pairline/matching-system/internal/core/ports"
)

// SubmitVote records a participant's vote and resolves the match the moment
// both sides are known. Window expiry is enforced lazily here; the guardian
// sweep force-resolves matches whose window lapsed with a missing side.
func (c *Coordinator) SubmitVote(ctx context.Context, matchID, userID string, vote domain.VoteType) (*ports.VoteResult, error) {
	c.matchesMu.RLock()
	m := c.matches[matchID]
	c.matchesMu.RUnlock()
	if m == nil || !m.Pair.Contains(userID) {
		return nil, domain.ErrMatchNotFound
	}

	unlock := c.locks.lockPair(m.Pair.A, m.Pair.B)
	defer unlock()

	// The match may have been resolved between lookup and lock.
	c.matchesMu.RLock()
	current := c.matches[matchID]
	c.matchesMu.RUnlock()
	if current == nil || current.Status != domain.MatchActive {
		return nil, domain.ErrMatchNotFound
	}

	if current.WindowExpired(c.now()) {
		return nil, domain.ErrVoteWindowExpired
	}
	if _, voted := current.Votes[userID]; voted {
		return nil, domain.ErrAlreadyVoted
	}

	current.Votes[userID] = vote
	metrics.VotesSubmittedTotal.WithLabelValues(string(vote)).Inc()
	c.log.Debug().
		Str("match_id", matchID).
		Str("user_id", userID).
		Str("vote", string(vote)).
		Msg("vote recorded")

	if !current.BothVoted() {
		return &ports.VoteResult{Outcome: ports.OutcomeWaiting}, nil
	}

	res := c.resolveLocked(ctx, current)
	return &ports.VoteResult{Outcome: string(res.Outcome)}, nil
}

// resolveLocked finalizes the match: evaluates the outcome table, removes
// the match from live state, applies blocklist and requeue/boost effects,
// archives, and notifies. The caller must hold both pair locks.
func (c *Coordinator) resolveLocked(ctx context.Context, m *domain.Match) domain.Resolution {
	res := m.Resolve()
	m.Status = domain.MatchResolved

	c.matchesMu.Lock()
	delete(c.matches, m.ID)
	delete(c.byUser, m.Pair.A)
	delete(c.byUser, m.Pair.B)
	c.matchesMu.Unlock()

	if res.Blocklist {
		if err := c.blocklist.Add(ctx, m.Pair); err != nil {
			// The in-memory entry is already in place, so the pair cannot
			// be offered again; only durability is at risk.
			c.log.Error().Err(err).Str("match_id", m.ID).Msg("blocklist persistence failed")
		}
	}

	for userID, effect := range res.Effects {
		if !effect.Requeue {
			continue
		}
		if effect.Boost {
			c.room.grantBoost(userID)
		}
		entry := domain.NewQueueEntry(userID, m.Profiles[userID], c.room.boostsFor(userID), c.now())
		if err := c.room.add(entry); err != nil {
			c.log.Warn().Err(err).Str("user_id", userID).Msg("auto-requeue skipped")
		}
	}

	if err := c.archive.ArchiveResolved(ctx, m, res.Outcome); err != nil {
		c.log.Warn().Err(err).Str("match_id", m.ID).Msg("match archive failed")
	}

	metrics.MatchOutcomesTotal.WithLabelValues(string(res.Outcome)).Inc()
	metrics.QueueDepth.Set(float64(c.room.size()))

	c.notifier.EnqueueBatch([]ports.Notification{
		{UserID: m.Pair.A, Kind: ports.NotifyMatchResolved, MatchID: m.ID, PartnerID: m.Pair.B, Outcome: res.Outcome},
		{UserID: m.Pair.B, Kind: ports.NotifyMatchResolved, MatchID: m.ID, PartnerID: m.Pair.A, Outcome: res.Outcome},
	})

	c.log.Info().
		Str("match_id", m.ID).
		Str("outcome", string(res.Outcome)).
		Bool("blocklisted", res.Blocklist).
		Msg("match resolved")

	return res
}
