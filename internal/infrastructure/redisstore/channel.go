package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-otp-redis/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Channel is the pub/sub side of the transient store. Messages are
// broadcast to whatever subscribers are connected at publish time; there is
// no persistence and no replay for subscribers that attach later.
type Channel struct {
	client *redis.Client
	topic  string
}

func NewChannel(client *redis.Client, topic string) *Channel {
	return &Channel{client: client, topic: topic}
}

// PublishOTPIssued broadcasts an issuance event. Fire-and-forget: a zero
// subscriber count is not an error.
func (c *Channel) PublishOTPIssued(ctx context.Context, ev domain.OTPIssued) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal otp event: %w", err)
	}
	if err := c.client.Publish(ctx, c.topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", c.topic, err)
	}
	return nil
}

// Subscribe consumes the issuance topic until ctx is done, invoking handler
// once per message in arrival order. Handler errors are the handler's own
// concern; they do not stop the subscription.
func (c *Channel) Subscribe(ctx context.Context, handler func(ctx context.Context, payload []byte) error) error {
	sub := c.client.Subscribe(ctx, c.topic)
	defer sub.Close()

	// Fail fast if the subscription could not be established.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription to %s closed", c.topic)
			}
			_ = handler(ctx, []byte(msg.Payload))
		}
	}
}
