package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "api_http_requests_total", Help: "HTTP requests"},
		[]string{"method", "path", "status"},
	)
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_total", Help: "Dispatch attempts by outcome"},
		[]string{"outcome"},
	)
	DispatchRecipientsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_recipients_total", Help: "Per-recipient sends by result"},
		[]string{"result"},
	)
	DispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Time spent dispatching one broadcast",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)
	DispatchReconcileRequired = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "dispatch_reconcile_required_total", Help: "Dispatches whose final state could not be persisted"},
	)

	SchedulerTicks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "scheduler_ticks_total", Help: "Scheduler ticks"},
	)
	SchedulerInitiated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "scheduler_dispatch_initiated_total", Help: "Dispatches initiated by the scheduler"},
	)
	SchedulerSubmitErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "scheduler_submit_errors_total", Help: "Due broadcasts that could not be handed off"},
	)

	WorkerJobsConsumed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "worker_jobs_consumed_total", Help: "Dispatch jobs consumed"},
	)
	WorkerProcessDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "worker_job_process_duration_seconds",
			Help:    "Time spent processing a job",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal, APIRequestDuration,
		DispatchesTotal, DispatchRecipientsTotal, DispatchDuration, DispatchReconcileRequired,
		SchedulerTicks, SchedulerInitiated, SchedulerSubmitErrors,
		WorkerJobsConsumed, WorkerProcessDuration,
	)
}

func Handler() http.Handler { return promhttp.Handler() }
