package observability

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements every hook interface on top of Prometheus
// collectors.
type PrometheusHooks struct {
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration prometheus.Histogram
	ResolvedArtifacts  prometheus.Histogram
	ConflictsTotal     prometheus.Counter

	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheSetBytes    *prometheus.CounterVec

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mavenresolve_resolutions_total",
				Help: "Total number of dependency resolutions",
			},
			[]string{"status"},
		),
		ResolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mavenresolve_resolution_duration_seconds",
				Help:    "Dependency resolution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ResolvedArtifacts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mavenresolve_resolved_artifacts",
				Help:    "Number of artifacts in a resolved dependency list",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		ConflictsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mavenresolve_conflicts_total",
				Help: "Total number of version conflicts settled by nearest-wins",
			},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mavenresolve_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mavenresolve_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),
		CacheSetBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mavenresolve_cache_set_bytes_total",
				Help: "Total bytes written to the cache",
			},
			[]string{"key_type"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mavenresolve_repository_requests_total",
				Help: "Total number of repository requests",
			},
			[]string{"method", "repository", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mavenresolve_repository_request_duration_seconds",
				Help:    "Repository request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "repository"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mavenresolve_repository_errors_total",
				Help: "Total number of repository transport errors",
			},
			[]string{"method", "repository", "error_type"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			h.ResolutionsTotal, h.ResolutionDuration, h.ResolvedArtifacts, h.ConflictsTotal,
			h.CacheHitsTotal, h.CacheMissesTotal, h.CacheSetBytes,
			h.RequestsTotal, h.RequestDuration, h.ErrorsTotal,
		)
	}
	return h
}

func (h *PrometheusHooks) OnResolveStart(context.Context, int) {}

func (h *PrometheusHooks) OnResolveComplete(_ context.Context, artifacts int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	h.ResolutionsTotal.WithLabelValues(status).Inc()
	h.ResolutionDuration.Observe(d.Seconds())
	if err == nil {
		h.ResolvedArtifacts.Observe(float64(artifacts))
	}
}

func (h *PrometheusHooks) OnConflict(context.Context, string, string, string) {
	h.ConflictsTotal.Inc()
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, repo, _ string, status int, d time.Duration) {
	h.RequestsTotal.WithLabelValues(method, repo, strconv.Itoa(status)).Inc()
	h.RequestDuration.WithLabelValues(method, repo).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, method, repo, _ string, err error) {
	errType := "network"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		errType = "timeout"
	case errors.Is(err, context.Canceled):
		errType = "canceled"
	}
	h.ErrorsTotal.WithLabelValues(method, repo, errType).Inc()
}

var (
	_ ResolveHooks  = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ TransferHooks = (*PrometheusHooks)(nil)
)
