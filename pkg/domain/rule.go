package domain

import (
	"fmt"
	"time"
)

// RoutingFilter is a parameterized match expression with its bindings.
// Parameter names are exactly @w1..@wN for N bound terms.
type RoutingFilter struct {
	Expression string            `json:"expression"`
	Parameters map[string]string `json:"parameters"`
}

// Rule is a named routing rule on a shared subscription.
type Rule struct {
	Name          string        `json:"name"`
	CorrelationID string        `json:"correlation_id"`
	Filter        RoutingFilter `json:"filter"`
	CreatedAt     time.Time     `json:"created_at"`
}

// RuleHandle identifies a provisioned rule.
type RuleHandle struct {
	Topic        string `json:"topic"`
	Subscription string `json:"subscription"`
	Name         string `json:"name"`
}

// RuleName derives the deterministic rule name for a paragraph.
func RuleName(paragraphNumber int) string {
	return fmt.Sprintf("paragraph-%d-rule", paragraphNumber)
}
