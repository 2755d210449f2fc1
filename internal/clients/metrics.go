package clients

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storybook_provider_requests_total",
			Help: "Total number of requests to external generative providers.",
		},
		[]string{"provider", "operation", "status"},
	)
	providerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_provider_request_duration_seconds",
			Help:    "Histogram of external provider request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20),
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storybook_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20),
		},
		[]string{"model"},
	)
)

// observe фиксирует исход и длительность одного запроса к провайдеру.
func observe(provider, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	providerRequestsTotal.With(prometheus.Labels{"provider": provider, "operation": operation, "status": status}).Inc()
	providerRequestDuration.With(prometheus.Labels{"provider": provider, "operation": operation}).Observe(time.Since(start).Seconds())
}
