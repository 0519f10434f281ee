// Package promstats exposes clustering runs as Prometheus metrics. A
// *Collector satisfies cluster.Metrics.
package promstats

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/capclust/cluster"
)

// Collector holds the run and restart metrics.
type Collector struct {
	restarts        *prometheus.CounterVec
	restartDuration prometheus.Histogram
	runs            prometheus.Counter
	runDuration     prometheus.Histogram
	runFailures     prometheus.Gauge
	bestObjective   prometheus.Gauge
}

var _ cluster.Metrics = (*Collector)(nil)

// New creates the metrics under namespace and registers them with reg.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		restarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "restarts_total",
				Help:      "Finished restarts by outcome",
			},
			[]string{"status"},
		),
		restartDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "restart_duration_seconds",
				Help:      "Wall time of one solver restart",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		runs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Clustering runs that reached the restart stage",
			},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a clustering run including preparation",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
		runFailures: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_failed_restarts",
				Help:      "Discarded restarts of the most recent run",
			},
		),
		bestObjective: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_best_objective",
				Help:      "Selected objective of the most recent run, NaN when every restart failed",
			},
		),
	}

	for _, m := range []prometheus.Collector{
		c.restarts, c.restartDuration, c.runs, c.runDuration, c.runFailures, c.bestObjective,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObserveRestart implements cluster.Metrics.
func (c *Collector) ObserveRestart(_ int, elapsed time.Duration, _ float64, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	c.restarts.WithLabelValues(status).Inc()
	c.restartDuration.Observe(elapsed.Seconds())
}

// ObserveRun implements cluster.Metrics.
func (c *Collector) ObserveRun(_, failures int, best float64, elapsed time.Duration) {
	c.runs.Inc()
	c.runDuration.Observe(elapsed.Seconds())
	c.runFailures.Set(float64(failures))
	if math.IsInf(best, 0) {
		best = math.NaN()
	}
	c.bestObjective.Set(best)
}
