package annotate

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/polyglot/pkg/domain"
)

// Lazy defers model loading until the first Annotate call.
// The loader runs exactly once; its result (or error) is shared by every caller.
type Lazy struct {
	get func() (*Annotator, error)
}

// NewLazy wraps a loader in a once-only guard.
func NewLazy(load func() (*Annotator, error)) *Lazy {
	return &Lazy{get: sync.OnceValues(load)}
}

// Annotate loads the model on first use and delegates to it.
func (l *Lazy) Annotate(ctx context.Context, text string) (*domain.AnnotatedDocument, error) {
	a, err := l.get()
	if err != nil {
		return nil, fmt.Errorf("load annotation model: %w", err)
	}
	return a.Annotate(ctx, text)
}
