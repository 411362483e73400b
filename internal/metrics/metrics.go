package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	windowEvaluations *prometheus.CounterVec
	searchDuration    *prometheus.HistogramVec
	providerRequests  *prometheus.CounterVec
	providerRetries   *prometheus.CounterVec
	snapshotWrites    *prometheus.CounterVec
	signalTransitions *prometheus.CounterVec
	dataPoints        *prometheus.GaugeVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_runs_total",
				Help: "Total number of analysis runs",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analyzer_run_duration_seconds",
				Help:    "Analysis run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		windowEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_window_evaluations_total",
				Help: "Total number of moving average windows backtested",
			},
			[]string{"asset"},
		),
		searchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analyzer_search_duration_seconds",
				Help:    "Window search duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"asset"},
		),
		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_provider_requests_total",
				Help: "Total number of market data provider requests",
			},
			[]string{"provider", "status"},
		),
		providerRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_provider_retries_total",
				Help: "Total number of provider request retries",
			},
			[]string{"provider"},
		),
		snapshotWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_snapshot_writes_total",
				Help: "Total number of snapshot store writes",
			},
			[]string{"status"},
		),
		signalTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyzer_signal_transitions_total",
				Help: "Total number of position transitions across runs",
			},
			[]string{"strategy", "position"},
		),
		dataPoints: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "analyzer_data_points",
				Help: "Number of daily closes fetched per asset",
			},
			[]string{"asset"},
		),
	}

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.windowEvaluations)
	reg.MustRegister(r.searchDuration)
	reg.MustRegister(r.providerRequests)
	reg.MustRegister(r.providerRetries)
	reg.MustRegister(r.snapshotWrites)
	reg.MustRegister(r.signalTransitions)
	reg.MustRegister(r.dataPoints)

	return r
}

// RecordRun records an analysis run completion.
func (r *Registry) RecordRun(status string, duration float64) {
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(duration)
}

// RecordWindowEvaluations records backtested windows for an asset's search.
func (r *Registry) RecordWindowEvaluations(asset string, count int) {
	r.windowEvaluations.WithLabelValues(asset).Add(float64(count))
}

// RecordSearch records a window search completion.
func (r *Registry) RecordSearch(asset string, duration float64) {
	r.searchDuration.WithLabelValues(asset).Observe(duration)
}

// RecordProviderRequest records a provider fetch attempt outcome.
func (r *Registry) RecordProviderRequest(provider, status string) {
	r.providerRequests.WithLabelValues(provider, status).Inc()
}

// RecordProviderRetry records a retried provider request.
func (r *Registry) RecordProviderRetry(provider string) {
	r.providerRetries.WithLabelValues(provider).Inc()
}

// RecordSnapshotWrite records a snapshot store write outcome.
func (r *Registry) RecordSnapshotWrite(status string) {
	r.snapshotWrites.WithLabelValues(status).Inc()
}

// RecordSignalTransition records a position change for a strategy.
func (r *Registry) RecordSignalTransition(strategy, position string) {
	r.signalTransitions.WithLabelValues(strategy, position).Inc()
}

// SetDataPoints sets the number of daily closes fetched for an asset.
func (r *Registry) SetDataPoints(asset string, count int) {
	r.dataPoints.WithLabelValues(asset).Set(float64(count))
}

// Push sends all gathered metrics to a Pushgateway. Used by the one-shot
// run command, which exits before a scraper could collect anything.
func (r *Registry) Push(gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(r.Registry).Push()
}
