package cluster

import "time"

// Metrics observes restarts and runs. Calls are serialised by the
// orchestrator.
type Metrics interface {
	// ObserveRestart is called once per finished restart; err is nil on success.
	ObserveRestart(restart int, elapsed time.Duration, objective float64, err error)

	// ObserveRun is called once per run that reached the restart stage.
	ObserveRun(restarts, failures int, best float64, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRestart(int, time.Duration, float64, error) {}
func (nopMetrics) ObserveRun(int, int, float64, time.Duration)       {}
