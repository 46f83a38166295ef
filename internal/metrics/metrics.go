package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todo_gateway_requests_total",
		Help: "REST calls issued by the todo gateway, by operation and result.",
	}, []string{"op", "result"})

	GatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "todo_gateway_request_duration_seconds",
		Help:    "Latency of REST calls issued by the todo gateway.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ControllerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todo_controller_events_total",
		Help: "State transitions emitted by the list controller, by kind.",
	}, []string{"kind"})
)

// Init serves /metrics on addr in the background.
func Init(addr string, logger *zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}
