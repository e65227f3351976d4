package domain

// DestinationKind distinguishes point-to-point queues from fan-out topics.
type DestinationKind string

const (
	KindQueue DestinationKind = "queue"
	KindTopic DestinationKind = "topic"
)

// Destination names a transport endpoint.
type Destination struct {
	Kind DestinationKind `json:"kind"`
	Name string          `json:"name"`
}

func (d Destination) String() string {
	return string(d.Kind) + ":" + d.Name
}

// Queue returns a queue destination.
func Queue(name string) Destination {
	return Destination{Kind: KindQueue, Name: name}
}

// Topic returns a topic destination.
func Topic(name string) Destination {
	return Destination{Kind: KindTopic, Name: name}
}

// OutboundMessage is a message handed to the transport.
// Delivery state is not tracked after the hand-off.
type OutboundMessage struct {
	ID            string            `json:"id,omitempty"`
	CorrelationID string            `json:"correlation_id"`
	Subject       string            `json:"subject,omitempty"`
	ContentType   string            `json:"content_type,omitempty"`
	Body          []byte            `json:"body"`
	Properties    map[string]string `json:"properties,omitempty"`
}
