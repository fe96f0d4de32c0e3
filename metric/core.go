package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orthomerge"

// Metrics contains the stage-level metrics shared by all components
type Metrics struct {
	HitsEvaluated    *prometheus.CounterVec
	ClustersBuilt    prometheus.Counter
	ClusterSize      prometheus.Histogram
	MergeDecisions   *prometheus.CounterVec
	MergeDistance    prometheus.Histogram
	ToolDuration     *prometheus.HistogramVec
	MissingData      *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	StageLastSuccess prometheus.Gauge
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		HitsEvaluated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "hitfilter",
				Name:      "hits_total",
				Help:      "Similarity search hits evaluated by the overlap filter",
			},
			[]string{"decision"},
		),

		ClustersBuilt: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "clustering",
				Name:      "clusters_total",
				Help:      "Clusters produced after deduplication",
			},
		),

		ClusterSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "clustering",
				Name:      "cluster_size",
				Help:      "Number of members per cluster",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 89},
			},
		),

		MergeDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "merge",
				Name:      "decisions_total",
				Help:      "Profile merge candidates by acceptance decision",
			},
			[]string{"decision"},
		),

		MergeDistance: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "merge",
				Name:      "mean_distance",
				Help:      "Mean pairwise distance of merge candidates",
				Buckets:   prometheus.LinearBuckets(0, 0.05, 20),
			},
		),

		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tool",
				Name:      "duration_seconds",
				Help:      "Wall time of external tool invocations",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"tool"},
		),

		MissingData: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "data",
				Name:      "skipped_total",
				Help:      "Identifiers or hits skipped because data could not be resolved",
			},
			[]string{"component"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "step_duration_seconds",
				Help:      "Duration of each stage step",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"step"},
		),

		StageLastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "stage",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful stage run",
			},
		),
	}
}

func (c *Metrics) register(reg *prometheus.Registry) {
	reg.MustRegister(
		c.HitsEvaluated,
		c.ClustersBuilt,
		c.ClusterSize,
		c.MergeDecisions,
		c.MergeDistance,
		c.ToolDuration,
		c.MissingData,
		c.StageDuration,
		c.StageLastSuccess,
	)
}

// All Record* methods accept a nil receiver so components can run without metrics.

// RecordHit counts one filter decision
func (c *Metrics) RecordHit(accepted bool) {
	if c == nil {
		return
	}
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	c.HitsEvaluated.WithLabelValues(decision).Inc()
}

// RecordCluster records one final cluster and its size
func (c *Metrics) RecordCluster(size int) {
	if c == nil {
		return
	}
	c.ClustersBuilt.Inc()
	c.ClusterSize.Observe(float64(size))
}

// RecordMerge records a merge candidate's distance and whether it was accepted
func (c *Metrics) RecordMerge(distance float64, accepted bool) {
	if c == nil {
		return
	}
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	c.MergeDecisions.WithLabelValues(decision).Inc()
	c.MergeDistance.Observe(distance)
}

// RecordTool records an external tool invocation
func (c *Metrics) RecordTool(tool string, duration time.Duration) {
	if c == nil {
		return
	}
	c.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordMissing counts one skipped identifier or hit
func (c *Metrics) RecordMissing(component string) {
	if c == nil {
		return
	}
	c.MissingData.WithLabelValues(component).Inc()
}

// RecordStep records how long one stage step took
func (c *Metrics) RecordStep(step string, duration time.Duration) {
	if c == nil {
		return
	}
	c.StageDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordSuccess marks the stage as completed now
func (c *Metrics) RecordSuccess(at time.Time) {
	if c == nil {
		return
	}
	c.StageLastSuccess.Set(float64(at.Unix()))
}
