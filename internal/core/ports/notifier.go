package ports

import (
	"context"

	"github.com/pairline/matching-system/internal/core/domain"
)

// Notification kinds pushed to participants.
const (
	NotifyMatchFound    = "match_found"
	NotifyMatchResolved = "match_resolved"
)

// Notification is a per-user event about their match state. Delivery
// transport (push/poll) is outside the coordination core.
type Notification struct {
	UserID    string         `json:"user_id"`
	Kind      string         `json:"kind"`
	MatchID   string         `json:"match_id"`
	PartnerID string         `json:"partner_id"`
	Outcome   domain.Outcome `json:"outcome,omitempty"`
}

// Notifier is the asynchronous fan-out the coordinator enqueues into.
type Notifier interface {
	Enqueue(n Notification)
	EnqueueBatch(ns []Notification)
}

// NotificationSink delivers a single notification to its transport.
type NotificationSink interface {
	Deliver(ctx context.Context, n Notification) error
}
