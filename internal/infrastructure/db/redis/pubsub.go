package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pairline/matching-system/internal/core/ports"
)

// PubSubSink delivers match notifications over a per-user Redis channel.
// Channel format: notify:<user_id>
//
// Front-end gateways subscribe to the channels of their connected users;
// a notification published with no subscriber is simply dropped, which is
// fine because clients also poll the status endpoint.
type PubSubSink struct {
	client *redis.Client
}

func NewPubSubSink(client *redis.Client) *PubSubSink {
	return &PubSubSink{client: client}
}

// Deliver publishes the notification as JSON.
func (s *PubSubSink) Deliver(ctx context.Context, n ports.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := s.client.Publish(ctx, notifyChannel(n.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func notifyChannel(userID string) string {
	return "notify:" + userID
}
