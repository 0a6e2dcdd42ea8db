package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus instruments for the money game lifecycle.
type Metrics struct {
	GamesCreated         *prometheus.CounterVec
	PlayerResponses      *prometheus.CounterVec
	StatusTransitions    *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
}

// New registers the lifecycle instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GamesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moneygame_games_created_total",
			Help: "Money games created, by game type.",
		}, []string{"game_type"}),
		PlayerResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moneygame_player_responses_total",
			Help: "Invitation responses recorded, by response.",
		}, []string{"response"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moneygame_status_transitions_total",
			Help: "Game status transitions, by from/to state.",
		}, []string{"from", "to"}),
		NotificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moneygame_notification_failures_total",
			Help: "Realtime publishes that failed and were swallowed.",
		}, []string{"event"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "moneygame_operation_duration_seconds",
			Help:    "Duration of lobby coordinator operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.GamesCreated,
		m.PlayerResponses,
		m.StatusTransitions,
		m.NotificationFailures,
		m.OperationDuration,
	)
	return m
}

// NewNoop returns instruments backed by a throwaway registry, for tests and
// wiring paths that do not scrape.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}
