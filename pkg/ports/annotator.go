package ports

import (
	"context"

	"github.com/aretw0/polyglot/pkg/domain"
)

// Annotator is the linguistic annotation capability.
// Implementations must be safe for concurrent, read-only use.
type Annotator interface {
	// Annotate tokenizes text and assigns every token a root form and lexical flags.
	Annotate(ctx context.Context, text string) (*domain.AnnotatedDocument, error)
}

// AnnotatorFunc adapts a function to the Annotator interface.
type AnnotatorFunc func(ctx context.Context, text string) (*domain.AnnotatedDocument, error)

// Annotate calls f(ctx, text).
func (f AnnotatorFunc) Annotate(ctx context.Context, text string) (*domain.AnnotatedDocument, error) {
	return f(ctx, text)
}
