package memory

import (
	"context"
	"sync"

	"github.com/aretw0/polyglot/pkg/domain"
)

type subscriptionKey struct {
	topic        string
	subscription string
}

// RuleAdmin implements ports.RuleAdmin in memory.
// Safe for concurrent use.
type RuleAdmin struct {
	mu    sync.RWMutex
	rules map[subscriptionKey]map[string]domain.Rule
	calls int
	fail  error
}

// NewRuleAdmin creates a new in-memory rule admin.
func NewRuleAdmin() *RuleAdmin {
	return &RuleAdmin{
		rules: make(map[subscriptionKey]map[string]domain.Rule),
	}
}

// FailWith makes every subsequent CreateRule return err. A nil err clears it.
func (a *RuleAdmin) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail = err
}

// CreateRule stores rule unless the name is taken on the subscription.
func (a *RuleAdmin) CreateRule(ctx context.Context, topic, subscription string, rule domain.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls++
	if a.fail != nil {
		return a.fail
	}

	key := subscriptionKey{topic: topic, subscription: subscription}
	byName, ok := a.rules[key]
	if !ok {
		byName = make(map[string]domain.Rule)
		a.rules[key] = byName
	}
	if _, exists := byName[rule.Name]; exists {
		return domain.ErrDuplicateRule
	}

	stored := rule
	stored.Filter.Parameters = domain.CloneProperties(rule.Filter.Parameters)
	byName[rule.Name] = stored
	return nil
}

// GetRule returns a stored rule.
func (a *RuleAdmin) GetRule(ctx context.Context, topic, subscription, name string) (domain.Rule, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rule, ok := a.rules[subscriptionKey{topic: topic, subscription: subscription}][name]
	if !ok {
		return domain.Rule{}, domain.ErrRuleNotFound
	}
	ret := rule
	ret.Filter.Parameters = domain.CloneProperties(rule.Filter.Parameters)
	return ret, nil
}

// Count returns the number of rules on a subscription.
func (a *RuleAdmin) Count(topic, subscription string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.rules[subscriptionKey{topic: topic, subscription: subscription}])
}

// Calls returns how many CreateRule requests were received, failed ones included.
func (a *RuleAdmin) Calls() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.calls
}
