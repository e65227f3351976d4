// Package provision creates the per-paragraph routing rule.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/polyglot/internal/logging"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/ports"
)

// Provisioner issues create-rule requests to a RuleAdmin.
type Provisioner struct {
	admin  ports.RuleAdmin
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Provisioner.
type Option func(*Provisioner)

// WithLogger configures a logger for the Provisioner.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// WithClock overrides the rule creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Provisioner) {
		p.now = now
	}
}

// New creates a Provisioner backed by admin.
func New(admin ports.RuleAdmin, opts ...Option) *Provisioner {
	p := &Provisioner{
		admin:  admin,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision creates the rule "paragraph-<paragraphNumber>-rule" on subscription.
//
// An existing rule of the same name yields an error matching domain.ErrDuplicateRule,
// together with a valid handle: the rule is already provisioned. Any other admin
// failure matches domain.ErrTransport. Nothing is retried here.
func (p *Provisioner) Provision(ctx context.Context, topic, subscription, correlationID string, paragraphNumber int, filter domain.RoutingFilter) (domain.RuleHandle, error) {
	handle := domain.RuleHandle{
		Topic:        topic,
		Subscription: subscription,
		Name:         domain.RuleName(paragraphNumber),
	}

	rule := domain.Rule{
		Name:          handle.Name,
		CorrelationID: correlationID,
		Filter:        filter,
		CreatedAt:     p.now().UTC(),
	}

	err := p.admin.CreateRule(ctx, topic, subscription, rule)
	switch {
	case err == nil:
		p.logger.Debug("rule created", "topic", topic, "subscription", subscription, "rule", handle.Name, "parameters", len(filter.Parameters))
		return handle, nil
	case errors.Is(err, domain.ErrDuplicateRule):
		return handle, err
	case errors.Is(err, domain.ErrTransport):
		return handle, err
	default:
		return handle, fmt.Errorf("%w: create rule %s: %w", domain.ErrTransport, handle.Name, err)
	}
}
