package wordpress

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics — счётчики и гистограмма исходящих запросов к контент-API.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Outgoing content API requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blog",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Outgoing content API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *metrics) observe(op, outcome string, dur time.Duration) {
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(dur.Seconds())
}

// outcome классифицирует результат вызова для метки метрики.
func outcome(status int, err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		if se.StatusCode >= 500 {
			return "http_5xx"
		}
		return "http_4xx"
	case status == 0:
		return "transport_error"
	default:
		return "error"
	}
}
