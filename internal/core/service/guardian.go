package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pairline/matching-system/internal/api/metrics"
	"github.com/pairline/matching-system/internal/core/domain"
)

// Guardian is the periodic reconciliation job. It evicts presence-stale
// users, force-resolves expired vote windows, forces a match attempt for
// users waiting beyond the ceiling, and advances relaxation stages. It is
// the backstop that turns "every join leads to a pairing" into an enforced
// guarantee: any failure mode the request path leaves behind must be a
// state the next sweep can repair.
type Guardian struct {
	coord    *Coordinator
	interval time.Duration
	ceiling  time.Duration
	cooldown time.Duration

	running sync.Mutex // TryLock-ed so sweeps never overlap
	log     zerolog.Logger
}

// GuardianConfig carries the sweep tunables.
type GuardianConfig struct {
	// Interval is the sweep period.
	Interval time.Duration
	// Ceiling is the queue wait after which a match is forced.
	Ceiling time.Duration
	// DisconnectCooldown is applied to users evicted from a match.
	DisconnectCooldown time.Duration
}

const (
	defaultSweepInterval      = 10 * time.Second
	defaultGuardianCeiling    = 20 * time.Second
	defaultDisconnectCooldown = time.Minute
)

func NewGuardian(coord *Coordinator, cfg GuardianConfig, log zerolog.Logger) *Guardian {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = defaultGuardianCeiling
	}
	if cfg.DisconnectCooldown <= 0 {
		cfg.DisconnectCooldown = defaultDisconnectCooldown
	}
	return &Guardian{
		coord:    coord,
		interval: cfg.Interval,
		ceiling:  cfg.Ceiling,
		cooldown: cfg.DisconnectCooldown,
		log:      log,
	}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (g *Guardian) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce executes one full sweep. A sweep already in progress makes this
// call a no-op (reported by the return value), so overlapping runs cannot
// double-apply effects.
func (g *Guardian) RunOnce(ctx context.Context) bool {
	if !g.running.TryLock() {
		g.log.Debug().Msg("sweep still running, skipping")
		return false
	}
	defer g.running.Unlock()

	started := time.Now()

	g.evictStale(ctx)
	g.resolveExpired(ctx)
	g.forceMatches(ctx)
	g.coord.room.advanceStages(g.coord.now())

	metrics.SweepRunsTotal.Inc()
	metrics.SweepDurationSeconds.Observe(time.Since(started).Seconds())
	metrics.QueueDepth.Set(float64(g.coord.room.size()))
	return true
}

// evictStale removes users with lapsed presence from the queue, and treats
// a stale user inside an active match as a disconnect: their side resolves
// as idle, the partner gets the idle/timeout handling, and the evicted
// user is placed on cooldown. A failed check on one user never aborts the
// sweep for the rest.
func (g *Guardian) evictStale(ctx context.Context) {
	c := g.coord

	for _, userID := range c.room.userIDs() {
		online, err := c.presence.IsOnline(ctx, userID)
		if err != nil {
			g.log.Warn().Err(err).Str("user_id", userID).Msg("presence check failed, skipping user")
			continue
		}
		if online {
			continue
		}
		unlock := c.locks.lockUser(userID)
		if c.room.remove(userID) {
			metrics.SweepEvictionsTotal.WithLabelValues("queue").Inc()
			g.log.Info().Str("user_id", userID).Msg("evicted stale user from queue")
		}
		unlock()
	}

	for _, m := range c.activeMatches() {
		for _, userID := range []string{m.Pair.A, m.Pair.B} {
			online, err := c.presence.IsOnline(ctx, userID)
			if err != nil {
				g.log.Warn().Err(err).Str("user_id", userID).Str("match_id", m.ID).Msg("presence check failed, skipping participant")
				continue
			}
			if !online {
				g.evictFromMatch(ctx, m.ID, userID)
				break
			}
		}
	}
}

// evictFromMatch force-resolves a match around a disconnected participant.
func (g *Guardian) evictFromMatch(ctx context.Context, matchID, evicted string) {
	c := g.coord

	c.matchesMu.RLock()
	m := c.matches[matchID]
	c.matchesMu.RUnlock()
	if m == nil {
		return
	}

	unlock := c.locks.lockPair(m.Pair.A, m.Pair.B)
	defer unlock()

	c.matchesMu.RLock()
	current := c.matches[matchID]
	c.matchesMu.RUnlock()
	if current == nil || current.Status != domain.MatchActive {
		return
	}

	if err := c.cooldowns.SetCooldown(ctx, evicted, g.cooldown); err != nil {
		g.log.Warn().Err(err).Str("user_id", evicted).Msg("failed to set disconnect cooldown")
	}

	// A disconnect overrides anything the evicted side may have voted.
	delete(current.Votes, evicted)
	metrics.SweepEvictionsTotal.WithLabelValues("match").Inc()
	g.log.Info().Str("match_id", matchID).Str("user_id", evicted).Msg("evicted disconnected user from match")

	c.resolveLocked(ctx, current)
}

// resolveExpired force-resolves matches whose vote window lapsed with at
// least one unvoted side, guaranteeing resolution within one sweep
// interval even with no further client activity.
func (g *Guardian) resolveExpired(ctx context.Context) {
	c := g.coord
	now := c.now()

	for _, m := range c.activeMatches() {
		if !m.WindowExpired(now) {
			continue
		}

		unlock := c.locks.lockPair(m.Pair.A, m.Pair.B)
		c.matchesMu.RLock()
		current := c.matches[m.ID]
		c.matchesMu.RUnlock()
		if current != nil && current.Status == domain.MatchActive && current.WindowExpired(c.now()) {
			g.log.Info().Str("match_id", current.ID).Msg("force-resolving expired vote window")
			c.resolveLocked(ctx, current)
		}
		unlock()
	}
}

// forceMatches retries pairing for everyone queued past the ceiling, so
// transient scarcity at join time cannot strand an eligible user.
func (g *Guardian) forceMatches(ctx context.Context) {
	c := g.coord
	for _, userID := range c.room.waitingLongerThan(g.ceiling, c.now()) {
		if matchID := c.tryMatch(ctx, userID); matchID != "" {
			g.log.Info().Str("user_id", userID).Str("match_id", matchID).Msg("forced match for long-waiting user")
		}
	}
}
