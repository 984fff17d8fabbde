package ports

import (
	"context"
	"time"
)

// PresenceStore tracks per-user liveness. A heartbeat keeps the user online
// until its TTL lapses; staleness needs no active sweep to clear.
type PresenceStore interface {
	Heartbeat(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// CooldownStore tracks temporary per-user ineligibility after a disconnect.
// Expiry is checked, never actively cleared.
type CooldownStore interface {
	SetCooldown(ctx context.Context, userID string, d time.Duration) error
	OnCooldown(ctx context.Context, userID string) (bool, error)
}
