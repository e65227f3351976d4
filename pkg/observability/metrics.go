package observability

import (
	"context"

	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the worker collectors.
type Metrics struct {
	Invocations   *prometheus.CounterVec
	Warmups       prometheus.Counter
	Terms         prometheus.Histogram
	Rules         *prometheus.CounterVec
	Deliveries    *prometheus.CounterVec
	TrackDuration *prometheus.HistogramVec
	Duration      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglot_invocations_total",
				Help: "Total number of processed paragraph messages by result",
			},
			[]string{"result"},
		),
		Warmups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "polyglot_warmups_total",
			Help: "Total number of warmup messages accepted",
		}),
		Terms: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "polyglot_terms_per_paragraph",
			Help:    "Number of distinct terms extracted per paragraph",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Rules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglot_rules_total",
				Help: "Rule provisioning outcomes",
			},
			[]string{"outcome"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglot_track_deliveries_total",
				Help: "Fan-out track outcomes",
			},
			[]string{"track", "result"},
		),
		TrackDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "polyglot_track_duration_seconds",
				Help: "Duration of fan-out tracks",
			},
			[]string{"track"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "polyglot_invocation_duration_seconds",
			Help: "Duration of paragraph invocations",
		}),
	}
	reg.MustRegister(m.Invocations, m.Warmups, m.Terms, m.Rules, m.Deliveries, m.TrackDuration, m.Duration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnWarmup: func(ctx context.Context, e *domain.EventBase) {
			m.Warmups.Inc()
		},
		OnAnnotated: func(ctx context.Context, e *domain.AnnotatedEvent) {
			m.Terms.Observe(float64(e.Terms))
		},
		OnProvisioned: func(ctx context.Context, e *domain.ProvisionEvent) {
			m.Rules.WithLabelValues(provisionOutcome(e)).Inc()
		},
		OnDispatched: func(ctx context.Context, e *domain.DispatchEvent) {
			m.Deliveries.WithLabelValues(string(e.Track), result(e.Err)).Inc()
			m.TrackDuration.WithLabelValues(string(e.Track)).Observe(e.Took.Seconds())
		},
		OnCompleted: func(ctx context.Context, e *domain.CompletedEvent) {
			m.Invocations.WithLabelValues(result(e.Err)).Inc()
			m.Duration.Observe(e.Took.Seconds())
		},
	}
}

func provisionOutcome(e *domain.ProvisionEvent) string {
	switch {
	case e.Skipped:
		return "skipped"
	case e.Duplicate:
		return "duplicate"
	case e.Err != nil:
		return "error"
	}
	return "created"
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Chain merges hook sets; each callback of every set is invoked in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		h := h
		if f := h.OnWarmup; f != nil {
			prev := out.OnWarmup
			out.OnWarmup = func(ctx context.Context, e *domain.EventBase) {
				if prev != nil {
					prev(ctx, e)
				}
				f(ctx, e)
			}
		}
		if f := h.OnAnnotated; f != nil {
			prev := out.OnAnnotated
			out.OnAnnotated = func(ctx context.Context, e *domain.AnnotatedEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				f(ctx, e)
			}
		}
		if f := h.OnProvisioned; f != nil {
			prev := out.OnProvisioned
			out.OnProvisioned = func(ctx context.Context, e *domain.ProvisionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				f(ctx, e)
			}
		}
		if f := h.OnDispatched; f != nil {
			prev := out.OnDispatched
			out.OnDispatched = func(ctx context.Context, e *domain.DispatchEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				f(ctx, e)
			}
		}
		if f := h.OnCompleted; f != nil {
			prev := out.OnCompleted
			out.OnCompleted = func(ctx context.Context, e *domain.CompletedEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				f(ctx, e)
			}
		}
	}
	return out
}
