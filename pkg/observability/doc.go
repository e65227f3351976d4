/*
Package observability provides Prometheus instrumentation for the Polyglot worker.

Metrics are attached through domain.LifecycleHooks, so the worker itself never
imports a metrics library. Partial fan-out (one track delivered, the other not)
is visible as a per-track failure counter, which is the signal an external
observability layer must watch under the log-and-continue failure policy.
*/
package observability
