package redis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/polyglot/internal/logging"
	"github.com/aretw0/polyglot/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// fieldBodyEncoding marks bodies that were base64 encoded on enqueue.
const fieldBodyEncoding = "body_encoding"

// HandlerFunc processes one inbound message. It owns error reporting.
type HandlerFunc func(ctx context.Context, msg domain.Message)

// Consumer delivers inbound paragraph messages from a stream through a
// consumer group, one message at a time per consumer.
type Consumer struct {
	client  *backend.Client
	stream  string
	group   string
	name    string
	block   time.Duration
	count   int64
	backoff time.Duration
	logger  *slog.Logger
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithBlock sets how long one XREADGROUP call waits for new entries.
func WithBlock(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.block = d
	}
}

// WithCount sets how many entries one read may return.
func WithCount(n int64) ConsumerOption {
	return func(c *Consumer) {
		c.count = n
	}
}

// WithConsumerLogger configures a logger for the Consumer.
func WithConsumerLogger(logger *slog.Logger) ConsumerOption {
	return func(c *Consumer) {
		c.logger = logger
	}
}

// NewConsumer creates a consumer named name in group on stream.
func NewConsumer(client *backend.Client, stream, group, name string, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		client:  client,
		stream:  stream,
		group:   group,
		name:    name,
		block:   time.Second,
		count:   10,
		backoff: 500 * time.Millisecond,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureGroup creates the consumer group (and the stream) if missing.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Run reads and handles messages until ctx is canceled.
// Every entry is acknowledged after handle returns, including entries that
// cannot be decoded; redelivery is left to the producer.
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		streams, err := c.client.XReadGroup(ctx, &backend.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{c.stream, ">"},
			Count:    c.count,
			Block:    c.block,
		}).Result()
		if err != nil {
			if errors.Is(err, backend.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("read from stream failed", "stream", c.stream, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		for _, s := range streams {
			for _, entry := range s.Messages {
				c.deliver(ctx, entry, handle)
			}
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, entry backend.XMessage, handle HandlerFunc) {
	msg, err := DecodeMessage(entry.Values)
	if err != nil {
		c.logger.Error("dropping undecodable entry", "stream", c.stream, "entry", entry.ID, "error", err)
	} else {
		handle(ctx, msg)
	}
	// Ack with a fresh context so a shutdown does not leave the entry pending.
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.client.XAck(ackCtx, c.stream, c.group, entry.ID).Err(); err != nil {
		c.logger.Warn("ack failed", "stream", c.stream, "entry", entry.ID, "error", err)
	}
}

// Enqueue appends an inbound message to stream and returns the entry id.
func Enqueue(ctx context.Context, client *backend.Client, stream string, msg domain.Message) (string, error) {
	values, err := EncodeMessage(msg)
	if err != nil {
		return "", err
	}
	id, err := client.XAdd(ctx, &backend.XAddArgs{Stream: stream, Values: values}).Result()
	if err != nil {
		return "", fmt.Errorf("%w: enqueue: %w", domain.ErrTransport, err)
	}
	return id, nil
}

// EncodeMessage flattens an inbound message into stream fields.
func EncodeMessage(msg domain.Message) (map[string]any, error) {
	props, err := encodeProperties(msg.Properties)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		fieldID:            msg.ID,
		fieldCorrelationID: msg.CorrelationID,
		fieldProperties:    props,
		fieldBody:          base64.StdEncoding.EncodeToString(msg.Body),
		fieldBodyEncoding:  "base64",
	}, nil
}

// DecodeMessage rebuilds an inbound message from stream fields.
func DecodeMessage(values map[string]any) (domain.Message, error) {
	props, err := decodeProperties(str(values, fieldProperties))
	if err != nil {
		return domain.Message{}, err
	}

	body := []byte(str(values, fieldBody))
	if str(values, fieldBodyEncoding) == "base64" {
		body, err = base64.StdEncoding.DecodeString(string(body))
		if err != nil {
			return domain.Message{}, fmt.Errorf("failed to decode body: %w", err)
		}
	}

	msg := domain.Message{
		ID:            str(values, fieldID),
		CorrelationID: str(values, fieldCorrelationID),
		Properties:    props,
		Body:          body,
	}
	if msg.ID == "" {
		return domain.Message{}, errors.New("entry has no message id")
	}
	return msg, nil
}
