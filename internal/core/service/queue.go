package service

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/pairline/matching-system/internal/core/domain"
)

// waitingRoom is the in-memory queue of users awaiting a match, plus the
// per-user yes-boost counters that survive across queue entries. All entry
// state is read and mutated under the room mutex; callers get copies.
type waitingRoom struct {
	mu      sync.Mutex
	entries map[string]*domain.QueueEntry
	boosts  map[string]int
}

func newWaitingRoom() *waitingRoom {
	return &waitingRoom{
		entries: make(map[string]*domain.QueueEntry),
		boosts:  make(map[string]int),
	}
}

// add inserts the entry, enforcing at most one entry per user.
func (r *waitingRoom) add(e *domain.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.UserID]; ok {
		return domain.ErrAlreadyQueued
	}
	r.entries[e.UserID] = e
	return nil
}

// remove deletes the user's entry, reporting whether one existed.
func (r *waitingRoom) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// removePair deletes both entries, or neither when either is missing.
func (r *waitingRoom) removePair(a, b string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[a]; !ok {
		return false
	}
	if _, ok := r.entries[b]; !ok {
		return false
	}
	delete(r.entries, a)
	delete(r.entries, b)
	return true
}

// entry returns a copy of the user's entry, refreshed to now.
func (r *waitingRoom) entry(id string, now time.Time) (domain.QueueEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return domain.QueueEntry{}, false
	}
	e.Recompute(now)
	return *e, true
}

func (r *waitingRoom) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *waitingRoom) userIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// waitingLongerThan returns users queued past the given ceiling.
func (r *waitingRoom) waitingLongerThan(ceiling time.Duration, now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, e := range r.entries {
		if e.Wait(now) > ceiling {
			ids = append(ids, id)
		}
	}
	return ids
}

// advanceStages refreshes every entry's score and relaxation stage.
func (r *waitingRoom) advanceStages(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.Recompute(now)
	}
}

// grantBoost credits a fairness boost that persists across queue entries.
func (r *waitingRoom) grantBoost(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boosts[id]++
}

func (r *waitingRoom) boostsFor(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boosts[id]
}

// rankedEntry couples an entry copy with a per-snapshot random tiebreak.
type rankedEntry struct {
	domain.QueueEntry
	tiebreak uint64
}

// snapshot returns entry copies ordered by fairness score descending, then
// wait descending, then a random tiebreak re-drawn on every call. The
// fresh draw prevents a fixed ordering from starving users that tie on
// score and wait.
func (r *waitingRoom) snapshot(now time.Time) []domain.QueueEntry {
	r.mu.Lock()
	ranked := make([]rankedEntry, 0, len(r.entries))
	for _, e := range r.entries {
		e.Recompute(now)
		ranked = append(ranked, rankedEntry{QueueEntry: *e, tiebreak: rand.Uint64()})
	}
	r.mu.Unlock()

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.FairnessScore != b.FairnessScore {
			return a.FairnessScore > b.FairnessScore
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.tiebreak < b.tiebreak
	})

	out := make([]domain.QueueEntry, len(ranked))
	for i, e := range ranked {
		out[i] = e.QueueEntry
	}
	return out
}
