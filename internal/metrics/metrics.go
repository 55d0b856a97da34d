// Package metrics exposes screening counters on a private Prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ampliscreen"

// Recorder holds the screening collectors. A nil *Recorder is a no-op.
type Recorder struct {
	reg *prometheus.Registry

	stageRows  *prometheus.GaugeVec
	stops      *prometheus.CounterVec
	fallbacks  prometheus.Counter
	partitions *prometheus.CounterVec
	partDur    prometheus.Histogram
}

// New registers every collector on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		stageRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_variants",
			Help:      "Variants remaining after each pipeline stage in the last run.",
		}, []string{"stage"}),
		stops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_stage_total",
			Help:      "Runs that ended early because a stage kept no variants.",
		}, []string{"stage"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compliance_fallback_total",
			Help:      "Runs that fell back to unscreened diagnostic variants.",
		}),
		partitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partitions_total",
			Help:      "Chromosome partitions screened, by result.",
		}, []string{"result"}),
		partDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "partition_duration_seconds",
			Help:      "Time spent screening one chromosome partition.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
	r.reg.MustRegister(r.stageRows, r.stops, r.fallbacks, r.partitions, r.partDur)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Stage records the row count left after stage.
func (r *Recorder) Stage(stage string, rows int) {
	if r == nil {
		return
	}
	r.stageRows.WithLabelValues(stage).Set(float64(rows))
}

// Stopped counts a run that ended at an empty stage.
func (r *Recorder) Stopped(stage string) {
	if r == nil {
		return
	}
	r.stops.WithLabelValues(stage).Inc()
}

// Fallback counts a compliance fallback.
func (r *Recorder) Fallback() {
	if r == nil {
		return
	}
	r.fallbacks.Inc()
}

// Partition records one finished partition. Safe for concurrent use.
func (r *Recorder) Partition(elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.partitions.WithLabelValues(result).Inc()
	r.partDur.Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
