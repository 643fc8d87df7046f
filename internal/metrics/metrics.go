package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptarena_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptarena_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptarena_executions_total",
		Help: "Prompt executions by final status",
	}, []string{"status"})

	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptarena_evaluations_total",
		Help: "Evaluations by mode",
	}, []string{"mode"})

	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promptarena_rate_limit_rejections_total",
		Help: "Requests rejected by the API key rate limiter",
	})

	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promptarena_llm_requests_total",
		Help: "Total LLM requests",
	}, []string{"provider", "model", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "promptarena_llm_request_duration_seconds",
		Help:    "LLM request duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"provider", "model"})
)

// ObserveLLMCall records one outbound provider call.
func ObserveLLMCall(provider, model, status string, d time.Duration) {
	LLMRequestsTotal.WithLabelValues(provider, model, status).Inc()
	if status == "ok" {
		LLMRequestDuration.WithLabelValues(provider, model).Observe(d.Seconds())
	}
}
