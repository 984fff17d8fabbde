package ports

import (
	"context"

	"github.com/pairline/matching-system/internal/core/domain"
)

// MatchArchive records resolved matches for audit. Live coordination never
// reads it back; archive failures must not block resolution.
type MatchArchive interface {
	ArchiveResolved(ctx context.Context, m *domain.Match, outcome domain.Outcome) error
}
