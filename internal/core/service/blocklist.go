package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pairline/matching-system/internal/core/domain"
	"github.com/pairline/matching-system/internal/core/ports"
)

// Blocklist is a write-through in-memory view over the persisted
// never-pair-again pairs. Lookups happen inside the pair-creation critical
// section, so they must not leave the process; the repository is the
// durable source of truth and is warmed into memory at startup.
type Blocklist struct {
	mu    sync.RWMutex
	pairs map[string]struct{}
	repo  ports.BlocklistRepository
	log   zerolog.Logger
}

func NewBlocklist(repo ports.BlocklistRepository, log zerolog.Logger) *Blocklist {
	return &Blocklist{
		pairs: make(map[string]struct{}),
		repo:  repo,
		log:   log,
	}
}

// Warm loads all persisted pairs into memory. Call once before serving.
func (b *Blocklist) Warm(ctx context.Context) error {
	pairs, err := b.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("warm blocklist: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range pairs {
		b.pairs[p.Key()] = struct{}{}
	}
	b.log.Info().Int("pairs", len(pairs)).Msg("blocklist warmed")
	return nil
}

// Add records the pair in memory and persists it. The in-memory insert is
// applied first so the pair can never be offered again even if the write
// behind it fails; the failure is surfaced for logging only.
func (b *Blocklist) Add(ctx context.Context, pair domain.Pair) error {
	b.mu.Lock()
	b.pairs[pair.Key()] = struct{}{}
	b.mu.Unlock()

	if err := b.repo.Insert(ctx, pair); err != nil {
		return fmt.Errorf("persist blocklist pair %s: %w", pair.Key(), err)
	}
	return nil
}

// Blocked reports whether the two users may never be paired. Symmetric by
// construction of the canonical pair key.
func (b *Blocklist) Blocked(pair domain.Pair) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.pairs[pair.Key()]
	return ok
}

// Size returns the number of cached pairs.
func (b *Blocklist) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pairs)
}
