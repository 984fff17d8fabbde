package ports

import (
	"context"

	"github.com/pairline/matching-system/internal/core/domain"
)

// BlocklistRepository persists never-pair-again entries. Pairs are written
// once and never deleted.
type BlocklistRepository interface {
	// Insert stores the canonical pair; inserting an existing pair is a no-op.
	Insert(ctx context.Context, pair domain.Pair) error
	// LoadAll returns every stored pair, used to warm the in-memory cache
	// at startup.
	LoadAll(ctx context.Context) ([]domain.Pair, error)
}
