package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// RuleAdmin implements ports.RuleAdmin using one Redis hash per subscription.
// HSETNX makes creation first-writer-wins across every replica.
type RuleAdmin struct {
	client *backend.Client
	prefix string
}

var _ ports.RuleAdmin = (*RuleAdmin)(nil)

// NewRuleAdmin creates a new Redis rule admin.
func NewRuleAdmin(client *backend.Client, prefix string) *RuleAdmin {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RuleAdmin{
		client: client,
		prefix: prefix,
	}
}

func (a *RuleAdmin) key(topic, subscription string) string {
	return a.prefix + "rules:" + topic + ":" + subscription
}

// CreateRule stores the rule unless the name already exists.
func (a *RuleAdmin) CreateRule(ctx context.Context, topic, subscription string, rule domain.Rule) error {
	data, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to marshal rule: %w", err)
	}

	created, err := a.client.HSetNX(ctx, a.key(topic, subscription), rule.Name, data).Result()
	if err != nil {
		return fmt.Errorf("%w: create rule %s: %w", domain.ErrTransport, rule.Name, err)
	}
	if !created {
		return domain.ErrDuplicateRule
	}
	return nil
}

// GetRule loads a rule by name.
func (a *RuleAdmin) GetRule(ctx context.Context, topic, subscription, name string) (domain.Rule, error) {
	val, err := a.client.HGet(ctx, a.key(topic, subscription), name).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Rule{}, domain.ErrRuleNotFound
		}
		return domain.Rule{}, fmt.Errorf("%w: get rule %s: %w", domain.ErrTransport, name, err)
	}

	var rule domain.Rule
	if err := json.Unmarshal([]byte(val), &rule); err != nil {
		return domain.Rule{}, fmt.Errorf("failed to unmarshal rule: %w", err)
	}
	return rule, nil
}

// ListRules returns the rule names on a subscription.
func (a *RuleAdmin) ListRules(ctx context.Context, topic, subscription string) ([]string, error) {
	names, err := a.client.HKeys(ctx, a.key(topic, subscription)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list rules: %w", domain.ErrTransport, err)
	}
	return names, nil
}
