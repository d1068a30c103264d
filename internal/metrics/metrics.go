package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "govlink"

var (
	ExecutionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_executions_started_total",
			Help:      "Account workflow executions started, by mode",
		},
		[]string{"mode"},
	)

	ExecutionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_executions_finished_total",
			Help:      "Account workflow executions reaching a terminal status",
		},
		[]string{"status"},
	)

	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_step_duration_seconds",
			Help:      "Duration of a single workflow state handler",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"state", "outcome"},
	)

	BridgeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bridge_requests_total",
			Help:      "Requests sent to the commercial partition bridge, by operation and status class",
		},
		[]string{"operation", "code"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests served, by method and status class",
		},
		[]string{"method", "code"},
	)

	CostQueriesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cost_queries_skipped_total",
			Help:      "Cost queries left out of an aggregate report",
		},
		[]string{"reason"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		ExecutionsStarted,
		ExecutionsFinished,
		StepDuration,
		BridgeRequests,
		HTTPRequests,
		CostQueriesSkipped,
	}
}

// Register adds every govlink collector to reg. Collectors registered before are kept.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		err := reg.Register(c)
		if err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}

			return err
		}
	}

	return nil
}

// StatusClass buckets an HTTP status code as "2xx", "4xx" and so on; zero means a transport error.
func StatusClass(code int) string {
	if code == 0 {
		return "error"
	}

	return string(rune('0'+code/100)) + "xx"
}
