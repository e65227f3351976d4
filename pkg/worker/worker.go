// Package worker is the per-message entry point: it annotates one paragraph,
// then provisions its routing rule and fans its artifacts out concurrently.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/aretw0/polyglot/internal/logging"
	"github.com/aretw0/polyglot/pkg/dispatch"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/filter"
	"github.com/aretw0/polyglot/pkg/ports"
	"github.com/aretw0/polyglot/pkg/provision"
	"github.com/aretw0/polyglot/pkg/terms"
	"golang.org/x/sync/errgroup"
)

// Outcome summarizes one invocation.
type Outcome struct {
	Warmup bool
	Terms  domain.TermSet
	// Rule is set when a rule was created or already existed.
	Rule *domain.RuleHandle
	// ProvisionSkipped is true when the term set was empty.
	ProvisionSkipped bool
	// AlreadyProvisioned is true when the rule existed before this invocation.
	AlreadyProvisioned bool
	ProvisionErr       error
	DispatchErr        error
}

// Worker processes inbound paragraph messages.
// Safe for concurrent use; it holds no per-invocation state.
type Worker struct {
	annotator   ports.Annotator
	extractor   terms.Extractor
	builder     filter.Builder
	provisioner *provision.Provisioner
	dispatcher  *dispatch.Dispatcher
	topic       string
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Config carries the collaborators of a Worker.
type Config struct {
	Annotator      ports.Annotator
	DocumentSender ports.Sender
	TermSender     ports.Sender
	RuleAdmin      ports.RuleAdmin
}

// Option configures the Worker.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	limits        filter.Limits
	keepStopwords bool
	topic         string
	dispatchOpts  []dispatch.Option
}

// WithLogger configures a logger for the Worker and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithFilterLimits overrides the routing filter limits.
func WithFilterLimits(limits filter.Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithStopwords keeps stopword lemmas in the term set.
func WithStopwords(keep bool) Option {
	return func(o *options) {
		o.keepStopwords = keep
	}
}

// WithRulesTopic overrides the topic that rules are provisioned on.
func WithRulesTopic(topic string) Option {
	return func(o *options) {
		o.topic = topic
	}
}

// WithDispatchOptions forwards options to the Dispatcher.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(o *options) {
		o.dispatchOpts = append(o.dispatchOpts, opts...)
	}
}

// New creates a Worker.
func New(cfg Config, opts ...Option) (*Worker, error) {
	if cfg.Annotator == nil {
		return nil, errors.New("worker: annotator is required")
	}
	if cfg.DocumentSender == nil || cfg.TermSender == nil {
		return nil, errors.New("worker: document and term senders are required")
	}
	if cfg.RuleAdmin == nil {
		return nil, errors.New("worker: rule admin is required")
	}

	o := options{
		logger: logging.NewNop(),
		limits: filter.DefaultLimits(),
		topic:  domain.DictionaryArticlesTopic,
	}
	for _, opt := range opts {
		opt(&o)
	}

	dispatchOpts := append([]dispatch.Option{
		dispatch.WithLogger(o.logger),
		dispatch.WithLifecycleHooks(o.hooks),
	}, o.dispatchOpts...)

	return &Worker{
		annotator:   cfg.Annotator,
		extractor:   terms.Extractor{KeepStopwords: o.keepStopwords},
		builder:     filter.New(o.limits),
		provisioner: provision.New(cfg.RuleAdmin, provision.WithLogger(o.logger)),
		dispatcher:  dispatch.New(cfg.DocumentSender, cfg.TermSender, dispatchOpts...),
		topic:       o.topic,
		hooks:       o.hooks,
		logger:      o.logger,
	}, nil
}

// Process runs one invocation and reports every failure.
//
// Annotation failures abort before anything is emitted. Otherwise provisioning
// and dispatch run concurrently and are both awaited; their errors are recorded
// on the Outcome and joined into the returned error. A duplicate rule is not an
// error.
func (w *Worker) Process(ctx context.Context, msg domain.Message) (*Outcome, error) {
	start := time.Now()
	base := domain.EventBase{CorrelationID: msg.CorrelationID}

	if msg.IsWarmup() {
		if w.hooks.OnWarmup != nil {
			e := base
			e.Timestamp, e.Type = time.Now(), domain.EventWarmup
			w.hooks.OnWarmup(ctx, &e)
		}
		return &Outcome{Warmup: true}, nil
	}

	out, err := w.process(ctx, msg)
	if w.hooks.OnCompleted != nil {
		e := base
		e.Timestamp, e.Type = time.Now(), domain.EventCompleted
		w.hooks.OnCompleted(ctx, &domain.CompletedEvent{EventBase: e, Err: err, Took: time.Since(start)})
	}
	return out, err
}

func (w *Worker) process(ctx context.Context, msg domain.Message) (*Outcome, error) {
	if !utf8.Valid(msg.Body) {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnnotation, domain.ErrInvalidBody)
	}

	annotateStart := time.Now()
	doc, err := w.annotator.Annotate(ctx, string(msg.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnnotation, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: annotator returned no document", domain.ErrAnnotation)
	}

	set := w.extractor.Extract(doc)
	if w.hooks.OnAnnotated != nil {
		w.hooks.OnAnnotated(ctx, &domain.AnnotatedEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventAnnotated, CorrelationID: msg.CorrelationID},
			Tokens:    len(doc.Tokens),
			Terms:     set.Len(),
			Took:      time.Since(annotateStart),
		})
	}

	out := &Outcome{Terms: set}

	// Provisioning and dispatch share no data beyond their inputs; neither may
	// cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		w.provision(ctx, msg, set, out)
		return nil
	})
	g.Go(func() error {
		out.DispatchErr = w.dispatcher.Dispatch(ctx, doc, set, msg.CorrelationID, msg.Properties)
		return nil
	})
	_ = g.Wait()

	return out, errors.Join(out.ProvisionErr, out.DispatchErr)
}

// provision writes only the provisioning fields of out.
func (w *Worker) provision(ctx context.Context, msg domain.Message, set domain.TermSet, out *Outcome) {
	start := time.Now()
	event := &domain.ProvisionEvent{
		EventBase: domain.EventBase{Type: domain.EventProvisioned, CorrelationID: msg.CorrelationID},
	}
	defer func() {
		if w.hooks.OnProvisioned != nil {
			event.Timestamp = time.Now()
			event.Took = time.Since(start)
			event.Err = out.ProvisionErr
			w.hooks.OnProvisioned(ctx, event)
		}
	}()

	if set.Len() == 0 {
		out.ProvisionSkipped = true
		event.Skipped = true
		return
	}

	paragraph, err := msg.ParagraphNumber()
	if err != nil {
		out.ProvisionErr = fmt.Errorf("provision: %w", err)
		return
	}

	f, err := w.builder.Build(set)
	if err != nil {
		out.ProvisionErr = fmt.Errorf("provision paragraph %d: %w", paragraph, err)
		return
	}

	handle, err := w.provisioner.Provision(ctx, w.topic, msg.CorrelationID, msg.CorrelationID, paragraph, f)
	event.Rule = handle
	switch {
	case err == nil:
		out.Rule = &handle
	case errors.Is(err, domain.ErrDuplicateRule):
		out.Rule = &handle
		out.AlreadyProvisioned = true
		event.Duplicate = true
		w.logger.Info("rule already provisioned", "rule", handle.Name, "correlation_id", msg.CorrelationID)
	default:
		out.ProvisionErr = fmt.Errorf("provision paragraph %d: %w", paragraph, err)
	}
}

// Handle is the invocation boundary. It never fails: every error is logged with
// the message, correlation and paragraph identity and then dropped, so the
// triggering runtime sees a completed invocation.
func (w *Worker) Handle(ctx context.Context, msg domain.Message) {
	out, err := w.Process(ctx, msg)
	LogOutcome(w.logger, msg, out, err)
}

// LogOutcome writes the boundary record for one invocation.
func LogOutcome(logger *slog.Logger, msg domain.Message, out *Outcome, err error) {
	if err == nil {
		if out != nil && out.Warmup {
			logger.Debug("warmup message accepted")
			return
		}
		attrs := []any{
			"message_id", msg.ID,
			"correlation_id", msg.CorrelationID,
			"paragraph", msg.Properties[domain.PropertyParagraphNumber],
		}
		if out != nil {
			attrs = append(attrs, "terms", out.Terms.Len(), "already_provisioned", out.AlreadyProvisioned)
		}
		logger.Info("paragraph processed", attrs...)
		return
	}

	attrs := []any{
		"message_id", msg.ID,
		"correlation_id", msg.CorrelationID,
		"paragraph", msg.Properties[domain.PropertyParagraphNumber],
		"error", err,
	}
	if tracks := domain.FailedTracks(err); len(tracks) > 0 {
		attrs = append(attrs, "failed_tracks", tracks)
	}
	logger.Error("paragraph processing failed", attrs...)
}
