// Package worker provides a bounded parallel executor for per-item stage tasks
package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/c360/orthomerge/metric"
)

// Executor runs independent tasks with a bounded number of goroutines
type Executor struct {
	workers int

	metrics *Metrics

	// Statistics (atomic)
	submitted int64
	completed int64
	failed    int64

	// Metrics configuration
	metricsRegistry *metric.MetricsRegistry
	metricsPrefix   string
}

// Metrics holds Prometheus metrics for executor monitoring
type Metrics struct {
	submitted    *prometheus.CounterVec
	completed    *prometheus.CounterVec
	failed       *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
}

// Option represents a configuration option for the executor
type Option func(*Executor)

// WithMetricsRegistry configures the executor to register metrics with the stage registry
func WithMetricsRegistry(registry *metric.MetricsRegistry, prefix string) Option {
	return func(e *Executor) {
		e.metricsRegistry = registry
		e.metricsPrefix = prefix
	}
}

// NewExecutor creates an executor running at most workers tasks at once.
// workers <= 0 uses runtime.NumCPU().
func NewExecutor(workers int, opts ...Option) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	e := &Executor{workers: workers}

	for _, opt := range opts {
		opt(e)
	}

	if e.metricsRegistry != nil && e.metricsPrefix != "" {
		e.initializeMetrics()
	}

	return e
}

// initializeMetrics creates and registers metrics with the stage registry
func (e *Executor) initializeMetrics() {
	prefix := e.metricsPrefix

	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prefix + "_tasks_submitted_total",
		Help: "Total tasks submitted to the executor",
	}, []string{"stage"})
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prefix + "_tasks_completed_total",
		Help: "Total tasks that completed successfully",
	}, []string{"stage"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: prefix + "_tasks_failed_total",
		Help: "Total tasks that returned an error",
	}, []string{"stage"})
	taskDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prefix + "_task_duration_seconds",
		Help:    "Time spent running a single task",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"stage", "status"})

	const component = "executor"
	e.metricsRegistry.RegisterCounterVec(component, prefix+"_tasks_submitted_total", submitted)
	e.metricsRegistry.RegisterCounterVec(component, prefix+"_tasks_completed_total", completed)
	e.metricsRegistry.RegisterCounterVec(component, prefix+"_tasks_failed_total", failed)
	e.metricsRegistry.RegisterHistogramVec(component, prefix+"_task_duration_seconds", taskDuration)

	e.metrics = &Metrics{
		submitted:    submitted,
		completed:    completed,
		failed:       failed,
		taskDuration: taskDuration,
	}
}

// Workers returns the concurrency limit
func (e *Executor) Workers() int {
	return e.workers
}

// Map runs fn once per item and returns the results in item order.
//
// Tasks may complete in any order; each result is stored at its item's index
// and nothing is shared between tasks. The first task error cancels the
// context passed to the remaining tasks and is returned once every running
// task has finished. stage labels the executor metrics.
func Map[T, R any](
	ctx context.Context, e *Executor, stage string, items []T, fn func(context.Context, T) (R, error),
) ([]R, error) {
	if e == nil {
		return nil, ErrNilExecutor
	}
	if fn == nil {
		return nil, ErrNilTask
	}

	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, item := range items {
		i, item := i, item
		e.recordSubmitted(stage)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			r, err := runTask(gctx, fn, item)
			e.recordDone(stage, time.Since(start), err)
			if err != nil {
				return err
			}

			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runTask[T, R any](ctx context.Context, fn func(context.Context, T) (R, error), item T) (r R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, p)
		}
	}()
	return fn(ctx, item)
}

func (e *Executor) recordSubmitted(stage string) {
	atomic.AddInt64(&e.submitted, 1)
	if e.metrics != nil {
		e.metrics.submitted.WithLabelValues(stage).Inc()
	}
}

func (e *Executor) recordDone(stage string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		atomic.AddInt64(&e.failed, 1)
	} else {
		atomic.AddInt64(&e.completed, 1)
	}

	if e.metrics == nil {
		return
	}
	if err != nil {
		e.metrics.failed.WithLabelValues(stage).Inc()
	} else {
		e.metrics.completed.WithLabelValues(stage).Inc()
	}
	e.metrics.taskDuration.WithLabelValues(stage, status).Observe(duration.Seconds())
}

// Stats returns current executor statistics
func (e *Executor) Stats() Stats {
	return Stats{
		Workers:   e.workers,
		Submitted: atomic.LoadInt64(&e.submitted),
		Completed: atomic.LoadInt64(&e.completed),
		Failed:    atomic.LoadInt64(&e.failed),
	}
}

// Stats represents executor statistics accumulated over every Map call
type Stats struct {
	Workers   int   `json:"workers"`
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}
