package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/olek/paywire/internal/domain"
)

// Notifier delivers balance events over Redis pub/sub. It implements
// eventpublisher.Publisher.
type Notifier struct {
	client *redis.Client
	prefix string
}

// NewNotifier creates a new Notifier.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{
		client: client,
		prefix: "balance.",
	}
}

// Publish sends the event payload to the owning account's private channel.
// Delivery is best effort: a subscriber that is offline misses the message
// and reads its balance on the next fetch instead.
func (n *Notifier) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	channel := n.prefix + event.AggregateID

	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	return nil
}
