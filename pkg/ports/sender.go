package ports

import (
	"context"

	"github.com/aretw0/polyglot/pkg/domain"
)

// Sender defines the transport collaborator.
type Sender interface {
	// Send delivers msgs to dest as one batch operation.
	// Either the whole batch is accepted or an error is returned.
	Send(ctx context.Context, dest domain.Destination, msgs ...domain.OutboundMessage) error
}
