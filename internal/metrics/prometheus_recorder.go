package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry        *prom.Registry
	operations      *prom.CounterVec
	persistFailures *prom.CounterVec
	restores        *prom.CounterVec
	lockPauses      prom.Counter
	laps            prom.Gauge
}

// NewPrometheusRecorder constructs and registers the stopwatch metrics on reg.
// A nil registry gets a fresh one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	recorder := &PrometheusRecorder{
		registry: reg,
		operations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lapwatch",
			Name:      "operations_total",
			Help:      "Stopwatch mutations by operation",
		}, []string{"operation"}),
		persistFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lapwatch",
			Name:      "persist_failures_total",
			Help:      "Failed state saves by operation",
		}, []string{"operation"}),
		restores: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lapwatch",
			Name:      "restores_total",
			Help:      "State restores at startup by result",
		}, []string{"result"}),
		lockPauses: prom.NewCounter(prom.CounterOpts{
			Namespace: "lapwatch",
			Name:      "lock_pauses_total",
			Help:      "Pauses triggered by the session lock signal",
		}),
		laps: prom.NewGauge(prom.GaugeOpts{
			Namespace: "lapwatch",
			Name:      "laps",
			Help:      "Number of laps currently recorded",
		}),
	}
	reg.MustRegister(
		recorder.operations,
		recorder.persistFailures,
		recorder.restores,
		recorder.lockPauses,
		recorder.laps,
	)
	return recorder
}

func (recorder *PrometheusRecorder) IncOperation(op string) {
	recorder.operations.WithLabelValues(op).Inc()
}

func (recorder *PrometheusRecorder) IncPersistFailure(op string) {
	recorder.persistFailures.WithLabelValues(op).Inc()
}

func (recorder *PrometheusRecorder) IncRestore(result RestoreResult) {
	recorder.restores.WithLabelValues(string(result)).Inc()
}

func (recorder *PrometheusRecorder) IncLockPause() {
	recorder.lockPauses.Inc()
}

func (recorder *PrometheusRecorder) SetLaps(n int) {
	recorder.laps.Set(float64(n))
}

// WriteTextfile dumps the current metrics in text exposition format, suitable
// for the node_exporter textfile collector.
func (recorder *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, recorder.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
