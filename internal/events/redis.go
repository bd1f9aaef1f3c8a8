package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "shecare:bookings"

// RedisBus publishes events to a redis pub/sub channel so every API replica
// can relay them to its own websocket clients.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisBus(client *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{client: client, channel: channel, logger: logger}
}

func (b *RedisBus) Channel() string { return b.channel }

func (b *RedisBus) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Listen subscribes to the channel and decodes messages until ctx is done.
// The subscription is confirmed before Listen returns.
func (b *RedisBus) Listen(ctx context.Context) (<-chan Event, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan Event, 64)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.logger.Warn("drop malformed booking event", zap.Error(err))
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Run feeds every received event to h and blocks until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context, h Handler) error {
	ch, err := b.Listen(ctx)
	if err != nil {
		return err
	}
	for evt := range ch {
		h(evt)
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
