package drill

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "incidentdrill",
		Subsystem: "drill",
		Name:      "sessions_started_total",
		Help:      "Number of drill sessions created",
	})

	phasesAdvancedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "incidentdrill",
		Subsystem: "drill",
		Name:      "phases_advanced_total",
		Help:      "Number of successful phase advances by target phase",
	}, []string{"phase"})

	reportsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "incidentdrill",
		Subsystem: "drill",
		Name:      "reports_generated_total",
		Help:      "Number of formal reports rendered",
	})

	checkpointAnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "incidentdrill",
		Subsystem: "drill",
		Name:      "checkpoint_answers_total",
		Help:      "Number of graded checkpoint answers by outcome",
	}, []string{"phase", "outcome"})
)

func recordCheckpointAnswer(phase string, correct bool) {
	outcome := "incorrect"
	if correct {
		outcome = "correct"
	}
	checkpointAnswersTotal.WithLabelValues(phase, outcome).Inc()
}
