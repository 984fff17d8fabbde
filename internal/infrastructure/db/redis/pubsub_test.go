package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairline/matching-system/internal/core/ports"
)

func TestPubSubSink_DeliversToUserChannel(t *testing.T) {
	client, _ := newTestClient(t)
	sink := NewPubSubSink(client)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "notify:usr_a")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx) // wait for the subscription ack
	require.NoError(t, err)

	want := ports.Notification{
		UserID:    "usr_a",
		Kind:      ports.NotifyMatchFound,
		MatchID:   "MCH-00000001",
		PartnerID: "usr_b",
	}
	require.NoError(t, sink.Deliver(ctx, want))

	select {
	case msg := <-sub.Channel():
		var got ports.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("notification never arrived")
	}
}
