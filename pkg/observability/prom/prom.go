// Package prom implements the observability hooks with Prometheus collectors.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/observability"
)

const namespace = "selecttree"

// Hooks records pipeline, cache and HTTP events as Prometheus metrics.
type Hooks struct {
	loadDuration    *prometheus.HistogramVec
	loadRows        prometheus.Histogram
	processDuration prometheus.Histogram
	processLines    prometheus.Histogram
	truncations     prometheus.Counter
	renderDuration  *prometheus.HistogramVec
	renderBytes     *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec

	cacheOps  *prometheus.CounterVec
	cacheSize *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// Registering twice on the same registry panics.
func New(reg prometheus.Registerer) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		loadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent loading rows, by source kind",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		loadRows: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_rows",
			Help:      "Rows returned per load",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		processDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_duration_seconds",
			Help:      "Time spent normalizing and linearizing rows",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),
		processLines: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_lines",
			Help:      "Lines emitted per process call",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		truncations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncations_total",
			Help:      "Process calls that dropped records below the depth bound",
		}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering output, by format",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		renderBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_bytes",
			Help:      "Rendered output size, by format",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}, []string{"format"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline failures by stage and error code",
		}, []string{"stage", "code"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result",
		}, []string{"key_type", "result"}),
		cacheSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_set_bytes",
			Help:      "Size of values written to the cache",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP handler failures by error code",
		}, []string{"method", "route", "code"}),
	}
}

// Register installs h as the global pipeline, cache and HTTP hooks.
func (h *Hooks) Register() {
	observability.Register(h)
}

func errorCode(err error) string {
	if code := errs.GetCode(err); code != "" {
		return string(code)
	}
	return "UNKNOWN"
}

// sourceKind strips the location from a source name ("file:a.json" -> "file").
func sourceKind(source string) string {
	for i := 0; i < len(source); i++ {
		if source[i] == ':' {
			return source[:i]
		}
	}
	return source
}

func (h *Hooks) OnLoadStart(context.Context, string) {}

func (h *Hooks) OnLoadComplete(_ context.Context, source string, rows int, d time.Duration, err error) {
	h.loadDuration.WithLabelValues(sourceKind(source)).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues("load", errorCode(err)).Inc()
		return
	}
	h.loadRows.Observe(float64(rows))
}

func (h *Hooks) OnProcessStart(context.Context, int) {}

func (h *Hooks) OnProcessComplete(_ context.Context, lines int, truncated bool, d time.Duration, err error) {
	h.processDuration.Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues("process", errorCode(err)).Inc()
		return
	}
	h.processLines.Observe(float64(lines))
	if truncated {
		h.truncations.Inc()
	}
}

func (h *Hooks) OnRenderStart(context.Context, string) {}

func (h *Hooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.renderDuration.WithLabelValues(format).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues("render", errorCode(err)).Inc()
		return
	}
	h.renderBytes.WithLabelValues(format).Observe(float64(size))
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheSize.WithLabelValues(keyType).Observe(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, method, route string, err error) {
	h.httpErrors.WithLabelValues(method, route, errorCode(err)).Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
