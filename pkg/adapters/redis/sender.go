package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Message field names inside a stream entry.
const (
	fieldID            = "id"
	fieldCorrelationID = "correlation_id"
	fieldSubject       = "subject"
	fieldContentType   = "content_type"
	fieldBody          = "body"
	fieldProperties    = "properties"
)

// Sender implements ports.Sender on Redis Streams.
// Each destination is one stream; a batch is appended inside MULTI/EXEC.
type Sender struct {
	client *backend.Client
	prefix string
	maxLen int64
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithSenderPrefix sets the key prefix for destination streams.
func WithSenderPrefix(prefix string) SenderOption {
	return func(s *Sender) {
		s.prefix = prefix
	}
}

// WithMaxLen caps every destination stream at approximately n entries.
func WithMaxLen(n int64) SenderOption {
	return func(s *Sender) {
		s.maxLen = n
	}
}

var _ ports.Sender = (*Sender)(nil)

// NewSender creates a Sender from an existing client.
func NewSender(client *backend.Client, opts ...SenderOption) *Sender {
	s := &Sender{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StreamKey returns the stream that backs dest.
func (s *Sender) StreamKey(dest domain.Destination) string {
	return s.prefix + string(dest.Kind) + ":" + dest.Name
}

// Send appends msgs to the destination stream atomically.
func (s *Sender) Send(ctx context.Context, dest domain.Destination, msgs ...domain.OutboundMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	key := s.StreamKey(dest)
	values := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		v, err := encodeOutbound(m)
		if err != nil {
			return err
		}
		values = append(values, v)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		for _, v := range values {
			args := &backend.XAddArgs{Stream: key, Values: v}
			if s.maxLen > 0 {
				args.MaxLen = s.maxLen
				args.Approx = true
			}
			pipe.XAdd(ctx, args)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: append to %s: %w", domain.ErrTransport, key, err)
	}
	return nil
}

// Read returns every entry of the destination stream in order.
func (s *Sender) Read(ctx context.Context, dest domain.Destination) ([]domain.OutboundMessage, error) {
	entries, err := s.client.XRange(ctx, s.StreamKey(dest), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	out := make([]domain.OutboundMessage, 0, len(entries))
	for _, e := range entries {
		m, err := decodeOutbound(e.Values)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func encodeOutbound(m domain.OutboundMessage) (map[string]any, error) {
	props, err := encodeProperties(m.Properties)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		fieldID:            m.ID,
		fieldCorrelationID: m.CorrelationID,
		fieldSubject:       m.Subject,
		fieldContentType:   m.ContentType,
		fieldBody:          string(m.Body),
		fieldProperties:    props,
	}, nil
}

func encodeProperties(props map[string]string) (string, error) {
	data, err := json.Marshal(domain.CloneProperties(props))
	if err != nil {
		return "", fmt.Errorf("failed to marshal properties: %w", err)
	}
	return string(data), nil
}

func decodeOutbound(values map[string]any) (domain.OutboundMessage, error) {
	m := domain.OutboundMessage{
		ID:            str(values, fieldID),
		CorrelationID: str(values, fieldCorrelationID),
		Subject:       str(values, fieldSubject),
		ContentType:   str(values, fieldContentType),
		Body:          []byte(str(values, fieldBody)),
	}
	props, err := decodeProperties(str(values, fieldProperties))
	if err != nil {
		return domain.OutboundMessage{}, err
	}
	m.Properties = props
	return m, nil
}

func decodeProperties(raw string) (map[string]string, error) {
	props := map[string]string{}
	if raw == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, fmt.Errorf("failed to unmarshal properties: %w", err)
	}
	return props, nil
}

func str(values map[string]any, key string) string {
	if v, ok := values[key].(string); ok {
		return v
	}
	return ""
}
