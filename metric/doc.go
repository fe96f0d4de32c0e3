// Package metric provides Prometheus metrics for the orthomerge stage.
//
// MetricsRegistry wraps a dedicated prometheus.Registry, registers the
// stage-level Metrics (hit filter decisions, cluster sizes, merge decisions
// and distances, external tool timings, skipped data) together with Go
// runtime collectors, and lets components such as the worker executor and
// the catalog cache register their own collectors under a component name.
//
// The stage is a batch job, so metrics are exported once at the end of a run
// with WriteTextfile, suitable for the node_exporter textfile collector.
//
// Every Record method tolerates a nil *Metrics so components can be used
// without a registry in tests.
package metric
