// Package filter turns a term set into a parameterized routing filter.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/polyglot/pkg/domain"
)

// DefaultMaxExpressionLength is the SQL-filter expression ceiling of the
// reference broker.
const DefaultMaxExpressionLength = 1024

// Limits bounds the filters a Builder may produce. Zero means unbounded.
type Limits struct {
	MaxExpressionLength int
	MaxParameters       int
}

// DefaultLimits returns the limits used by Build.
func DefaultLimits() Limits {
	return Limits{MaxExpressionLength: DefaultMaxExpressionLength}
}

// Builder produces routing filters within Limits.
type Builder struct {
	Field  string
	Limits Limits
}

// New creates a Builder for domain.LabelField with the given limits.
func New(limits Limits) Builder {
	return Builder{Field: domain.LabelField, Limits: limits}
}

// Build uses a Builder with DefaultLimits.
func Build(terms domain.TermSet) (domain.RoutingFilter, error) {
	return New(DefaultLimits()).Build(terms)
}

// ParamName returns the 1-indexed parameter name for position i.
func ParamName(i int) string {
	return "@w" + strconv.Itoa(i)
}

// Build binds every term to its own parameter and references each parameter
// once in a "<field> IN (...)" expression. Terms are enumerated in sorted order.
// A filter exceeding the limits is rejected with domain.ErrFilterTooLarge; it
// is never truncated.
func (b Builder) Build(terms domain.TermSet) (domain.RoutingFilter, error) {
	n := terms.Len()
	if n == 0 {
		return domain.RoutingFilter{}, domain.ErrEmptyTermSet
	}
	if b.Limits.MaxParameters > 0 && n > b.Limits.MaxParameters {
		return domain.RoutingFilter{}, fmt.Errorf("%w: %d parameters, limit %d", domain.ErrFilterTooLarge, n, b.Limits.MaxParameters)
	}

	field := b.Field
	if field == "" {
		field = domain.LabelField
	}

	names := make([]string, n)
	params := make(map[string]string, n)
	for i, term := range terms.Sorted() {
		names[i] = ParamName(i + 1)
		params[names[i]] = term
	}

	expr := field + " IN (" + strings.Join(names, ", ") + ")"
	if b.Limits.MaxExpressionLength > 0 && len(expr) > b.Limits.MaxExpressionLength {
		return domain.RoutingFilter{}, fmt.Errorf("%w: expression is %d characters, limit %d", domain.ErrFilterTooLarge, len(expr), b.Limits.MaxExpressionLength)
	}

	return domain.RoutingFilter{Expression: expr, Parameters: params}, nil
}
