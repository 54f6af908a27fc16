/*
Package observability exposes engine activity as Prometheus metrics.

Metrics owns its collectors and registry. Mount Hooks on the engine to
count scene and step activity, Middleware on the pipeline to time update
handling, and Handler on an HTTP mux to scrape.
*/
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
)

// Metrics collects engine lifecycle and pipeline metrics.
type Metrics struct {
	registry *prometheus.Registry

	scenesEntered *prometheus.CounterVec
	scenesLeft    *prometheus.CounterVec
	stepsRun      *prometheus.CounterVec
	waits         *prometheus.CounterVec
	activeScenes  prometheus.Gauge

	updateDuration *prometheus.HistogramVec
}

// Option configures Metrics.
type Option func(*options)

type options struct {
	namespace string
	registry  *prometheus.Registry
}

// WithNamespace overrides the metric namespace. Defaults to "grammy".
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithRegistry collects into an existing registry instead of a fresh one.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...Option) *Metrics {
	o := options{namespace: "grammy"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: o.registry,
		scenesEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "scenes_entered_total",
			Help:      "Scenes entered, by scene.",
		}, []string{"scene"}),
		scenesLeft: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "scenes_left_total",
			Help:      "Scenes left, by scene and reason.",
		}, []string{"scene", "reason"}),
		stepsRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "steps_run_total",
			Help:      "Step handlers run, by scene.",
		}, []string{"scene"}),
		waits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "waits_total",
			Help:      "Suspensions at wait entries, by scene.",
		}, []string{"scene"}),
		activeScenes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: o.namespace,
			Name:      "active_scenes",
			Help:      "Scenes currently entered and not yet left.",
		}),
		updateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "update_duration_seconds",
			Help:      "Update handling duration, by update kind and outcome.",
		}, []string{"kind", "status"}),
	}

	m.registry.MustRegister(
		m.scenesEntered,
		m.scenesLeft,
		m.stepsRun,
		m.waits,
		m.activeScenes,
		m.updateDuration,
	)
	return m
}

// Hooks returns lifecycle hooks recording into the collectors. Combine
// with other hooks by setting the fields side by side on the engine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSceneEnter: func(_ context.Context, ev *domain.SceneEvent) {
			m.scenesEntered.WithLabelValues(ev.Scene).Inc()
			m.activeScenes.Inc()
		},
		OnSceneLeave: func(_ context.Context, ev *domain.SceneEvent) {
			m.scenesLeft.WithLabelValues(ev.Scene, string(ev.Reason)).Inc()
			m.activeScenes.Dec()
		},
		OnStepRun: func(_ context.Context, ev *domain.StepEvent) {
			m.stepsRun.WithLabelValues(ev.Scene).Inc()
		},
		OnWait: func(_ context.Context, ev *domain.StepEvent) {
			m.waits.WithLabelValues(ev.Scene).Inc()
		},
	}
}

// Middleware times update handling through the rest of the chain.
func (m *Metrics) Middleware() composer.Middleware {
	return func(ctx *composer.Context, next composer.Next) error {
		start := time.Now()
		err := next()
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.updateDuration.WithLabelValues(string(ctx.Update.Kind), status).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the registry for callers that register their own
// collectors next to the engine's.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
