package polyglot

import (
	"log/slog"

	"github.com/aretw0/polyglot/pkg/annotate"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/filter"
	"github.com/aretw0/polyglot/pkg/ports"
	"github.com/aretw0/polyglot/pkg/worker"
)

// Version is the release version, overridden at build time with -ldflags.
var Version = "0.1.0-dev"

type config struct {
	cfg        worker.Config
	modelName  string
	modelDir   string
	workerOpts []worker.Option
}

// Option defines a functional option for configuring the Worker.
type Option func(*config)

// WithAnnotator injects an annotator, bypassing the built-in model loader.
func WithAnnotator(a ports.Annotator) Option {
	return func(c *config) {
		c.cfg.Annotator = a
	}
}

// WithModel selects the annotation model loaded on first use.
func WithModel(name, dir string) Option {
	return func(c *config) {
		c.modelName = name
		c.modelDir = dir
	}
}

// WithDocumentSender sets the transport for the annotated-paragraphs queue.
func WithDocumentSender(s ports.Sender) Option {
	return func(c *config) {
		c.cfg.DocumentSender = s
	}
}

// WithTermSender sets the transport for the lemmas topic.
func WithTermSender(s ports.Sender) Option {
	return func(c *config) {
		c.cfg.TermSender = s
	}
}

// WithRuleAdmin sets the broker administration client.
func WithRuleAdmin(a ports.RuleAdmin) Option {
	return func(c *config) {
		c.cfg.RuleAdmin = a
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.workerOpts = append(c.workerOpts, worker.WithLogger(logger))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.workerOpts = append(c.workerOpts, worker.WithLifecycleHooks(hooks))
	}
}

// WithFilterLimits bounds the routing filters the worker provisions.
func WithFilterLimits(limits filter.Limits) Option {
	return func(c *config) {
		c.workerOpts = append(c.workerOpts, worker.WithFilterLimits(limits))
	}
}

// WithStopwords admits stopwords as routing terms when keep is true.
func WithStopwords(keep bool) Option {
	return func(c *config) {
		c.workerOpts = append(c.workerOpts, worker.WithStopwords(keep))
	}
}

// New wires a Worker. Without WithAnnotator the model selected by WithModel
// (default en_basic) is loaded once, on the first invocation.
func New(opts ...Option) (*worker.Worker, error) {
	c := &config{modelName: annotate.DefaultModel}
	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.Annotator == nil {
		name, dir := c.modelName, c.modelDir
		c.cfg.Annotator = annotate.NewLazy(func() (*annotate.Annotator, error) {
			return annotate.Load(name, dir)
		})
	}

	return worker.New(c.cfg, c.workerOpts...)
}
