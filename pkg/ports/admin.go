package ports

import (
	"context"

	"github.com/aretw0/polyglot/pkg/domain"
)

// RuleAdmin defines the routing-admin collaborator.
type RuleAdmin interface {
	// CreateRule creates rule under subscription on topic.
	// Returns domain.ErrDuplicateRule if a rule with the same name exists; it never overwrites.
	CreateRule(ctx context.Context, topic, subscription string, rule domain.Rule) error

	// GetRule returns a rule by name.
	// Returns domain.ErrRuleNotFound if it does not exist.
	GetRule(ctx context.Context, topic, subscription, name string) (domain.Rule, error)
}
