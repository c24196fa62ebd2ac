// Package observability exposes prometheus metrics and OpenTelemetry
// tracing for the workflow engine, the response cache and model calls.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mathsim"

// Metrics holds every collector. It satisfies invoker.CacheObserver,
// llm.CallObserver and workflow.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	cacheRequests *prometheus.CounterVec
	llmCalls      *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	stepDuration  *prometheus.HistogramVec
	workflowRuns  *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry together with
// the standard Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetricsWithRegistry(reg)
}

// NewMetricsWithRegistry registers the collectors on reg.
func NewMetricsWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Model calls by purpose and outcome.",
		}, []string{"purpose", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Model call latency by purpose.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"purpose"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_step_duration_seconds",
			Help:      "Duration of executed workflow steps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		workflowRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_runs_total",
			Help:      "Workflow runs by type and outcome.",
		}, []string{"workflow_type", "status"}),
	}
	reg.MustRegister(m.cacheRequests, m.llmCalls, m.llmLatency, m.stepDuration, m.workflowRuns)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveModelCall(purpose string, success bool, latency time.Duration) {
	m.llmCalls.WithLabelValues(purpose, status(success)).Inc()
	m.llmLatency.WithLabelValues(purpose).Observe(latency.Seconds())
}

func (m *Metrics) ObserveStep(step string, d time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (m *Metrics) ObserveRun(workflowType string, success bool) {
	m.workflowRuns.WithLabelValues(workflowType, status(success)).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
