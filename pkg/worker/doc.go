// Package worker provides the stage's parallel executor.
//
// # Overview
//
// The executor maps a task function over a slice of independent items with a
// bounded number of goroutines:
//
//	exec := worker.NewExecutor(8)
//	adjacency, err := worker.Map(ctx, exec, "filter", reports,
//	    func(ctx context.Context, r search.Report) (Entry, error) {
//	        return filterOne(ctx, r)
//	    })
//
// # Result Aggregation
//
// Each task returns its own value, which Map stores at the task's item index.
// Tasks never touch a shared map or file; the caller is the single
// coordinator that folds the returned slice once every task has finished.
// Completion order is not observable through the result.
//
// # Failure Semantics
//
// The first task error cancels the context handed to remaining tasks. Tasks
// not yet started return immediately with the context error. Map waits for
// in-flight tasks and returns the first error; partial results are discarded.
// A panicking task is converted into an error wrapping ErrTaskPanic.
//
// Errors that should not abort the stage (missing data, quality rejections)
// must be handled inside the task and reported through its result.
//
// # Observability
//
// Statistics (submitted, completed, failed) are always tracked with atomics.
// Prometheus metrics are optional:
//
//	exec := worker.NewExecutor(8, worker.WithMetricsRegistry(registry, "orthomerge_executor"))
//
// registers per-stage task counters and a task duration histogram labelled by
// status.
package worker
