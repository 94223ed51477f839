// ABOUTME: Redis pub/sub event publisher
// ABOUTME: Lets other processes watch record changes
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis channel refresh events are published on.
const DefaultChannel = "leadflow:events"

// RedisPublisher broadcasts events to other processes over Redis pub/sub.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher connects to the Redis server at url (redis://host:port/db).
func NewRedisPublisher(url, channel string, logger *zap.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisPublisherWithClient(redis.NewClient(opts), channel, logger), nil
}

// NewRedisPublisherWithClient wraps an existing client.
func NewRedisPublisherWithClient(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode event", zap.String("event", event.Name), zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Warn("failed to publish event",
			zap.String("event", event.Name),
			zap.String("channel", p.channel),
			zap.Error(err))
	}
}

// Listen subscribes to the channel and forwards decoded events to bus until ctx is
// done. It is the receiving side for processes that mirror another's changes.
func (p *RedisPublisher) Listen(ctx context.Context, bus Publisher) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", p.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				p.logger.Warn("dropping malformed event", zap.Error(err))
				continue
			}
			bus.Publish(ctx, event)
		}
	}
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
