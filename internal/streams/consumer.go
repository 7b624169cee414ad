package streams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ReceiptConsumer consumes delivery receipts from Redis Streams
type ReceiptConsumer struct {
	rdb          *redis.Client
	groupName    string
	consumerName string
}

// NewReceiptConsumer creates a new ReceiptConsumer instance
func NewReceiptConsumer(redisURL, consumerName string) (*ReceiptConsumer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	// Read timeout must exceed the XReadGroup Block duration (5s)
	// to avoid spurious i/o timeout errors on idle streams.
	opts.ReadTimeout = 10 * time.Second

	client := redis.NewClient(opts)

	// Create consumer group on delivery:receipts stream
	// Start ID "0" means read from beginning if group is new
	err = client.XGroupCreateMkStream(context.Background(), StreamDeliveryReceipts, GroupDispatchWorkers, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}
	// Ignore BUSYGROUP error - group already exists

	return &ReceiptConsumer{
		rdb:          client,
		groupName:    GroupDispatchWorkers,
		consumerName: consumerName,
	}, nil
}

// ConsumeReceipts runs a blocking loop consuming receipts from the stream
func (c *ReceiptConsumer) ConsumeReceipts(ctx context.Context, handler func(DeliveryReceipt) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupName,
			Consumer: c.consumerName,
			Streams:  []string{StreamDeliveryReceipts, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err == redis.Nil {
			// No messages available, continue loop
			continue
		}

		if err != nil {
			// Blocking reads return a timeout when no messages arrive
			// within the Block duration; this is normal, not an error.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			slog.Error("Failed to read from stream", "error", err)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				payloadStr, ok := message.Values["payload"].(string)
				if !ok {
					slog.Error("Invalid receipt payload", "message_id", message.ID)
					continue
				}

				var receipt DeliveryReceipt
				if err := json.Unmarshal([]byte(payloadStr), &receipt); err != nil {
					slog.Error("Failed to unmarshal receipt", "error", err, "message_id", message.ID)
					continue
				}

				if err := handler(receipt); err != nil {
					slog.Error("Receipt handler failed", "error", err, "provider_message_id", receipt.ProviderMessageID)
					// Message stays in PEL for retry, don't ACK
					continue
				}

				if err := c.rdb.XAck(ctx, StreamDeliveryReceipts, c.groupName, message.ID).Err(); err != nil {
					slog.Error("Failed to ACK message", "error", err, "message_id", message.ID)
				}
			}
		}
	}
}

// Close closes the Redis client connection
func (c *ReceiptConsumer) Close() error {
	return c.rdb.Close()
}

// StartReceiptConsumer is a convenience function that starts the receipt
// consumer in a background goroutine and returns a stop function
func StartReceiptConsumer(redisURL string, db *gorm.DB) (stop func(), err error) {
	consumer, err := NewReceiptConsumer(redisURL, "dispatch-worker-1")
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt consumer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := consumer.ConsumeReceipts(ctx, HandleDeliveryReceipt(db)); err != nil {
			if err != context.Canceled {
				slog.Error("Receipt consumer stopped with error", "error", err)
			}
		}
	}()

	slog.Info("Delivery receipt consumer started")

	return func() {
		cancel()
		consumer.Close()
	}, nil
}
