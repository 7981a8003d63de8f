package recorder

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_control_service_requests_total",
		Help: "Recording Service requests by operation and outcome",
	}, []string{
		"op",     // status|list|start|stop|pause|replay|delete|export|import|categorize
		"result", // success|service_error|transport_error
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "replay_control_service_request_duration_seconds",
		Help:    "Recording Service round trip latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "code"})
)

func observeRequest(op string, code int, started time.Time, err error) {
	result := "success"
	switch KindOf(err) {
	case KindService:
		result = "service_error"
	case KindTransport:
		result = "transport_error"
	}
	requestTotal.WithLabelValues(op, result).Inc()
	requestDuration.WithLabelValues(op, strconv.Itoa(code)).Observe(time.Since(started).Seconds())
}
