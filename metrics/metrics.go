package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Players = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catchme_players",
		Help: "Players currently in the room roster (coordinator only).",
	})
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catchme_connections",
		Help: "Websocket connections attached to this worker.",
	})
	RoundsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catchme_rounds_started_total",
		Help: "Rounds started.",
	})
	RoundsWon = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catchme_rounds_won_total",
		Help: "Rounds resolved by a correct guess.",
	})
	Guesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catchme_guesses_total",
		Help: "Chat messages evaluated as guesses.",
	})
	RejectedJoins = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catchme_rejected_joins_total",
		Help: "Connections rejected because the room was full.",
	})
	AuditFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catchme_audit_failures_total",
		Help: "Audit writes that failed or were dropped.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
