package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	StreakUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_updates_total",
			Help: "Streak updates after a workout, by resulting status",
		},
		[]string{"status"},
	)
	StreakUpdateFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_update_failures_total",
			Help: "Streak updates aborted by a persistence error",
		},
	)
	PlanAdvances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_advances_total",
			Help: "Users moved to the next plan, by the plan they moved to",
		},
		[]string{"plan"},
	)
	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Push dispatch attempts, by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Register adds the domain collectors to the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(StreakUpdates)
		prometheus.MustRegister(StreakUpdateFailures)
		prometheus.MustRegister(PlanAdvances)
		prometheus.MustRegister(NotificationsDispatched)
	})
}
