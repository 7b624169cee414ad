package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keep roughly the last day of sent events; the feed service reads near the
// tip, so approximate trimming is fine.
const messageEventsMaxLen = 10000

// Publisher emits sent-message events to the message:events stream.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher connects a publisher to the given Redis.
func NewPublisher(redisURL string) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &Publisher{rdb: redis.NewClient(opts)}, nil
}

// PublishMessageSent appends one sent event and returns its stream entry id.
func (p *Publisher) PublishMessageSent(ctx context.Context, event MessageSentEvent) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	result := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamMessageEvents,
		MaxLen: messageEventsMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"payload":        string(payload),
			"published_at":   time.Now().Unix(),
			"schema_version": SchemaVersionV1,
		},
	})
	if result.Err() != nil {
		return "", fmt.Errorf("failed to publish to stream: %w", result.Err())
	}
	return result.Val(), nil
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
