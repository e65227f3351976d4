// Package dispatch fans the derived artifacts of one paragraph out to the
// document queue and the lemma topic.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/polyglot/internal/logging"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/ports"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// Dispatcher delivers the annotated document and the term set on two
// independent, concurrently running tracks.
type Dispatcher struct {
	documents   ports.Sender
	terms       ports.Sender
	documentDst domain.Destination
	termsDst    domain.Destination
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	newID       func() string
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Only OnDispatched is used.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// WithDestinations overrides the document queue and the lemma topic.
func WithDestinations(documents, terms domain.Destination) Option {
	return func(d *Dispatcher) {
		d.documentDst = documents
		d.termsDst = terms
	}
}

// WithIDGenerator overrides the id source for aggregate messages.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) {
		d.newID = fn
	}
}

// New creates a Dispatcher. documents serves the annotated-paragraphs queue and
// terms serves the lemmas topic; they may be the same Sender.
func New(documents, terms ports.Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		documents:   documents,
		terms:       terms,
		documentDst: domain.Queue(domain.AnnotatedParagraphsQueue),
		termsDst:    domain.Topic(domain.LemmasTopic),
		logger:      logging.NewNop(),
		newID:       func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs both tracks concurrently and waits for both.
//
// A failing track is reported as a *domain.DispatchError naming it; the other
// track is neither canceled nor rolled back. When both fail the errors are joined.
func (d *Dispatcher) Dispatch(ctx context.Context, doc *domain.AnnotatedDocument, terms domain.TermSet, correlationID string, props map[string]string) error {
	var docErr, termsErr error

	// Plain Group: a failure on one track must not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		docErr = d.track(ctx, domain.TrackDocument, correlationID, func() (int, error) {
			return d.sendDocument(ctx, doc, correlationID, props)
		})
		return nil
	})
	g.Go(func() error {
		termsErr = d.track(ctx, domain.TrackTerms, correlationID, func() (int, error) {
			return d.sendTerms(ctx, terms, correlationID, props)
		})
		return nil
	})
	_ = g.Wait()

	return errors.Join(docErr, termsErr)
}

func (d *Dispatcher) track(ctx context.Context, track domain.Track, correlationID string, send func() (int, error)) error {
	start := time.Now()
	n, err := send()
	if d.hooks.OnDispatched != nil {
		d.hooks.OnDispatched(ctx, &domain.DispatchEvent{
			EventBase: domain.EventBase{
				Timestamp:     time.Now(),
				Type:          domain.EventDispatched,
				CorrelationID: correlationID,
			},
			Track:    track,
			Messages: n,
			Err:      err,
			Took:     time.Since(start),
		})
	}
	if err != nil {
		return &domain.DispatchError{Track: track, Err: err}
	}
	d.logger.Debug("track delivered", "track", track, "correlation_id", correlationID, "messages", n)
	return nil
}

func (d *Dispatcher) sendDocument(ctx context.Context, doc *domain.AnnotatedDocument, correlationID string, props map[string]string) (int, error) {
	if doc == nil {
		return 0, fmt.Errorf("%w: nil document", domain.ErrAnnotation)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal document: %w", err)
	}
	msg := domain.OutboundMessage{
		ID:            d.newID(),
		CorrelationID: correlationID,
		ContentType:   domain.ContentTypeJSON,
		Body:          body,
		Properties:    domain.CloneProperties(props),
	}
	if err := d.documents.Send(ctx, d.documentDst, msg); err != nil {
		return 0, fmt.Errorf("send to %s: %w", d.documentDst, err)
	}
	return 1, nil
}

func (d *Dispatcher) sendTerms(ctx context.Context, terms domain.TermSet, correlationID string, props map[string]string) (int, error) {
	if terms == nil {
		terms = domain.NewTermSet()
	}
	body, err := json.Marshal(terms)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal terms: %w", err)
	}
	aggregate := domain.OutboundMessage{
		ID:            d.newID(),
		CorrelationID: correlationID,
		ContentType:   domain.ContentTypeJSON,
		Body:          body,
		Properties:    domain.CloneProperties(props),
	}
	if err := d.terms.Send(ctx, d.termsDst, aggregate); err != nil {
		return 0, fmt.Errorf("send aggregate to %s: %w", d.termsDst, err)
	}

	if terms.Len() == 0 {
		return 1, nil
	}

	batch := TermMessages(terms, correlationID, props)
	if err := d.terms.Send(ctx, d.termsDst, batch...); err != nil {
		return 1, fmt.Errorf("send %d term messages to %s: %w", len(batch), d.termsDst, err)
	}
	return 1 + len(batch), nil
}

// TermMessages builds one message per term, identified as <correlationID>-<term>.
func TermMessages(terms domain.TermSet, correlationID string, props map[string]string) []domain.OutboundMessage {
	sorted := terms.Sorted()
	msgs := make([]domain.OutboundMessage, 0, len(sorted))
	for _, term := range sorted {
		msgs = append(msgs, domain.OutboundMessage{
			ID:            correlationID + "-" + term,
			CorrelationID: correlationID,
			Subject:       domain.SubjectLemma,
			ContentType:   domain.ContentTypeText,
			Body:          []byte(term),
			Properties:    domain.CloneProperties(props),
		})
	}
	return msgs
}
