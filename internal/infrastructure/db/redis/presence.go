package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceStore tracks per-user liveness with a TTL key per heartbeat.
// Key format: presence:<user_id>
//
// Staleness needs no active sweep: a user is online exactly while their
// last heartbeat key has not expired.
type PresenceStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresenceStore creates a PresenceStore whose heartbeats expire after ttl.
func NewPresenceStore(client *redis.Client, ttl time.Duration) *PresenceStore {
	return &PresenceStore{client: client, ttl: ttl}
}

// Heartbeat refreshes the user's liveness window.
func (s *PresenceStore) Heartbeat(ctx context.Context, userID string) error {
	if err := s.client.Set(ctx, presenceKey(userID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	return nil
}

// IsOnline reports whether the user has a live heartbeat.
func (s *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("presence check: %w", err)
	}
	return n > 0, nil
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

// CooldownStore tracks temporary post-disconnect ineligibility.
// Key format: cooldown:<user_id>
//
// Expiry is enforced by the key TTL; nothing ever clears a cooldown
// explicitly.
type CooldownStore struct {
	client *redis.Client
}

func NewCooldownStore(client *redis.Client) *CooldownStore {
	return &CooldownStore{client: client}
}

// SetCooldown makes the user ineligible for the given duration.
func (s *CooldownStore) SetCooldown(ctx context.Context, userID string, d time.Duration) error {
	if err := s.client.Set(ctx, cooldownKey(userID), "1", d).Err(); err != nil {
		return fmt.Errorf("set cooldown: %w", err)
	}
	return nil
}

// OnCooldown reports whether the user is still inside a cooldown window.
func (s *CooldownStore) OnCooldown(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, cooldownKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown check: %w", err)
	}
	return n > 0, nil
}

func cooldownKey(userID string) string {
	return "cooldown:" + userID
}
