package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Message is one inbound paragraph as supplied by the triggering runtime.
// It is consumed once per invocation and never persisted.
type Message struct {
	ID            string            `json:"id"`
	CorrelationID string            `json:"correlation_id"`
	Properties    map[string]string `json:"properties,omitempty"`
	Body          []byte            `json:"body"`
}

// IsWarmup reports whether the message is the reserved liveness probe.
func (m Message) IsWarmup() bool {
	return m.ID == WarmupMessageID
}

// ParagraphNumber parses the ParagraphNumber property.
func (m Message) ParagraphNumber() (int, error) {
	raw, ok := m.Properties[PropertyParagraphNumber]
	if !ok {
		return 0, ErrMissingParagraphNumber
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidParagraphNumber, raw)
	}
	return n, nil
}

// CloneProperties returns a copy of a property bag so that outbound messages
// never alias the inbound map.
func CloneProperties(props map[string]string) map[string]string {
	if props == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
