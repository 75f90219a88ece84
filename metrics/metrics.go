package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the Prometheus collectors for the API server.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Friendship state changes, labelled by history action (plus "deleted").
	FriendshipTransitions *prometheus.CounterVec

	// Language model calls, labelled by prompt template and outcome.
	TextGenRequests *prometheus.CounterVec
}

// Get returns the process-wide collectors, registering them on first use.
//
// Metrics:
//   - studymate_http_requests_total{method,route,status}
//   - studymate_http_request_duration_seconds{method,route}
//   - studymate_friendship_transitions_total{action}
//   - studymate_textgen_requests_total{template,outcome}
func Get() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "studymate_http_requests_total",
					Help: "Total number of HTTP requests served",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "studymate_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
			FriendshipTransitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "studymate_friendship_transitions_total",
					Help: "Total number of friendship state changes",
				},
				[]string{"action"},
			),
			TextGenRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "studymate_textgen_requests_total",
					Help: "Total number of text generation calls",
				},
				[]string{"template", "outcome"}, // outcome: "ok" or "error"
			),
		}
	})
	return globalMetrics
}

// RecordFriendship counts one friendship transition.
func RecordFriendship(action string) {
	Get().FriendshipTransitions.WithLabelValues(action).Inc()
}

// RecordTextGen counts one text generation call.
func RecordTextGen(template string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	Get().TextGenRequests.WithLabelValues(template, outcome).Inc()
}
