// internal/app/system/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the routing and lifecycle core. Registered on the default
// registry; the bootstrap mounts promhttp on /metrics.
var (
	Assignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carehub_assignments_total",
		Help: "Assignment engine outcomes by result.",
	}, []string{"result"}) // assigned | unassigned | reassigned | released

	AssignmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carehub_assignment_failures_total",
		Help: "Assignment engine failures by kind.",
	}, []string{"kind"}) // capacity | persistence | other

	FormTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carehub_form_transitions_total",
		Help: "Form instance lifecycle transitions by action.",
	}, []string{"action"})

	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carehub_version_conflicts_total",
		Help: "Optimistic concurrency conflicts on form instances.",
	})
)
