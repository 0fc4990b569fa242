package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var totalRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mexer_http_requests_total",
		Help: "Number of incoming HTTP requests.",
	},
	[]string{"path"},
)

var responseStatus = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mexer_http_response_status",
		Help: "Status of HTTP responses.",
	},
	[]string{"path", "status"},
)

var httpDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
	Name: "mexer_http_response_time_seconds",
	Help: "Duration of HTTP requests.",
	Objectives: map[float64]float64{
		0.50: 0.05,
		0.90: 0.05,
		0.99: 0.01,
	},
}, []string{"path"})

var evaluations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mexer_evaluations_total",
		Help: "Number of expressions evaluated, by outcome.",
	},
	[]string{"kind", "outcome"},
)

var samplePoints = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mexer_sample_points_total",
		Help: "Number of points sampled for plots, by whether they were finite.",
	},
	[]string{"finite"},
)

// statusWriter captures the status code written to a response.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware counts requests and response codes and records latency
// by route.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		totalRequests.WithLabelValues(path).Inc()
		timer := prometheus.NewTimer(httpDuration.WithLabelValues(path))
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		timer.ObserveDuration()
		responseStatus.WithLabelValues(path, strconv.Itoa(sw.status)).Inc()
	})
}
