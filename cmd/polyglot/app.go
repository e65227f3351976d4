package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/polyglot"
	"github.com/aretw0/polyglot/internal/config"
	redisAdapter "github.com/aretw0/polyglot/pkg/adapters/redis"
	"github.com/aretw0/polyglot/pkg/annotate"
	"github.com/aretw0/polyglot/pkg/filter"
	"github.com/aretw0/polyglot/pkg/observability"
	"github.com/aretw0/polyglot/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app holds the process-wide collaborators of the service commands.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	annotator *annotate.Annotator
	registry  *prometheus.Registry
	topics    *backend.Client
	queues    *backend.Client
	worker    *worker.Worker
}

// newApp loads the annotation model once, connects both brokers and wires the worker.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	a.annotator, err = annotate.Load(cfg.ModelName, cfg.ModelDir)
	if err != nil {
		return nil, err
	}

	a.topics, err = redisAdapter.Connect(cfg.TopicsConnection)
	if err != nil {
		return nil, fmt.Errorf("topics connection: %w", err)
	}
	if cfg.QueuesConnection == cfg.TopicsConnection {
		a.queues = a.topics
	} else if a.queues, err = redisAdapter.Connect(cfg.QueuesConnection); err != nil {
		_ = a.topics.Close()
		return nil, fmt.Errorf("queues connection: %w", err)
	}

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(a.registry)

	a.worker, err = polyglot.New(
		polyglot.WithAnnotator(a.annotator),
		polyglot.WithDocumentSender(redisAdapter.NewSender(a.queues, redisAdapter.WithSenderPrefix(cfg.KeyPrefix))),
		polyglot.WithTermSender(redisAdapter.NewSender(a.topics, redisAdapter.WithSenderPrefix(cfg.KeyPrefix))),
		polyglot.WithRuleAdmin(redisAdapter.NewRuleAdmin(a.topics, cfg.KeyPrefix)),
		polyglot.WithLogger(logger),
		polyglot.WithLifecycleHooks(metrics.Hooks()),
		polyglot.WithFilterLimits(a.filterLimits()),
		polyglot.WithStopwords(cfg.KeepStopwords),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Debug("worker ready", "model", a.annotator.Name(), "topics", cfg.TopicsConnection, "queues", cfg.QueuesConnection)
	return a, nil
}

func (a *app) filterLimits() filter.Limits {
	return filter.Limits{
		MaxExpressionLength: a.cfg.MaxFilterLength,
		MaxParameters:       a.cfg.MaxFilterParameters,
	}
}

func (a *app) inboundStream() string {
	return inboundStream(a.cfg)
}

// Close releases the broker connections.
func (a *app) Close() {
	var errs []error
	if a.topics != nil {
		errs = append(errs, a.topics.Close())
	}
	if a.queues != nil && a.queues != a.topics {
		errs = append(errs, a.queues.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("closing connections", "error", err)
	}
}
