package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	ClaimsSubmitted      prometheus.Counter
	ClaimReviews         *prometheus.CounterVec
	FeedbackTotal        *prometheus.CounterVec
	TranslationsCreated  prometheus.Counter
	TranslationsVerified *prometheus.CounterVec

	registry *prometheus.Registry
}

func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civiclink_http_requests_total",
				Help: "HTTP requests partitioned by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "civiclink_http_request_duration_seconds",
				Help:    "HTTP request latency partitioned by method and route.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"method", "route"},
		),
		ClaimsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civiclink_claims_submitted_total",
			Help: "Claims submitted for review.",
		}),
		ClaimReviews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civiclink_claim_reviews_total",
				Help: "Claim reviews partitioned by resulting status.",
			},
			[]string{"status"},
		),
		FeedbackTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civiclink_feedback_total",
				Help: "Feedback entries partitioned by target document.",
			},
			[]string{"target"},
		),
		TranslationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civiclink_translations_created_total",
			Help: "Translations authored by organizers.",
		}),
		TranslationsVerified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "civiclink_translation_verifications_total",
				Help: "Translation verification changes partitioned by verified state.",
			},
			[]string{"verified"},
		),
		registry: registry,
	}

	all := []prometheus.Collector{
		m.RequestsTotal,
		m.RequestDuration,
		m.ClaimsSubmitted,
		m.ClaimReviews,
		m.FeedbackTotal,
		m.TranslationsCreated,
		m.TranslationsVerified,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range all {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("error registering metric, %w", err)
		}
	}

	return m, nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

func (m *Metrics) observeRequest(method, route string, status int, seconds float64) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}
