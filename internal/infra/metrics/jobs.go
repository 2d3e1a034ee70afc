package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fideliza_jobs_processed_total",
		Help: "Background jobs processed, labeled by kind and status.",
	},
	[]string{"kind", "status"}, // kind: 'mail', status: 'completed', 'failed', 'dropped'
)

func IncJob(kind, status string) {
	jobsProcessedTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}
