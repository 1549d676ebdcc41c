package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "guard_event_duration_sec",
	Help: "Total duration of guard event processing",
})

var violationCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guard_violations",
	Help: "Number of violations recorded, by kind",
}, []string{"kind"})

var enforcementCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guard_enforcements",
	Help: "Number of timeouts attempted, by kind and result",
}, []string{"kind", "result"})

var notificationErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guard_notification_errors",
	Help: "Number of notifications that could not be delivered",
})

var storageErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guard_storage_errors",
	Help: "Number of events whose detection pass aborted on a storage error",
})
