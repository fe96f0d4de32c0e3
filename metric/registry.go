package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360/orthomerge/errors"
)

// MetricsRegistrar defines the interface for registering component-specific metrics
type MetricsRegistrar interface {
	RegisterCounter(component, metricName string, counter prometheus.Counter) error
	RegisterGauge(component, metricName string, gauge prometheus.Gauge) error
	RegisterCounterVec(component, metricName string, counterVec *prometheus.CounterVec) error
	RegisterHistogramVec(component, metricName string, histogramVec *prometheus.HistogramVec) error
	Unregister(component, metricName string) bool
}

// MetricsRegistry manages the registration and lifecycle of metrics
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewMetricsRegistry creates a new metrics registry with the stage metrics registered
func NewMetricsRegistry() *MetricsRegistry {
	registry := &MetricsRegistry{
		prometheusRegistry: prometheus.NewRegistry(),
		registeredMetrics:  make(map[string]prometheus.Collector),
	}

	registry.Metrics = NewMetrics()
	registry.Metrics.register(registry.prometheusRegistry)

	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the stage metrics
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	if r == nil {
		return nil
	}
	return r.Metrics
}

// RegisterCounter registers a counter metric for a component
func (r *MetricsRegistry) RegisterCounter(component, metricName string, counter prometheus.Counter) error {
	return r.register(component, metricName, "RegisterCounter", counter)
}

// RegisterGauge registers a gauge metric for a component
func (r *MetricsRegistry) RegisterGauge(component, metricName string, gauge prometheus.Gauge) error {
	return r.register(component, metricName, "RegisterGauge", gauge)
}

// RegisterCounterVec registers a counter vector metric for a component
func (r *MetricsRegistry) RegisterCounterVec(component, metricName string, counterVec *prometheus.CounterVec) error {
	return r.register(component, metricName, "RegisterCounterVec", counterVec)
}

// RegisterHistogramVec registers a histogram vector metric for a component
func (r *MetricsRegistry) RegisterHistogramVec(
	component, metricName string, histogramVec *prometheus.HistogramVec) error {
	return r.register(component, metricName, "RegisterHistogramVec", histogramVec)
}

func (r *MetricsRegistry) register(component, metricName, method string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, metricName)

	if _, exists := r.registeredMetrics[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for component %s", metricName, component),
			"MetricsRegistry", method, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapInvalid(err, "MetricsRegistry", method,
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.WrapFatal(err, "MetricsRegistry", method, "register with prometheus")
	}

	r.registeredMetrics[key] = collector
	return nil
}

// Unregister removes a metric from the registry
func (r *MetricsRegistry) Unregister(component, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", component, metricName)

	collector, exists := r.registeredMetrics[key]
	if !exists {
		return false
	}

	success := r.prometheusRegistry.Unregister(collector)
	if success {
		delete(r.registeredMetrics, key)
	}

	return success
}

// WriteTextfile writes every gathered metric to path in the Prometheus text format.
// Batch runs use this with the node_exporter textfile collector instead of serving HTTP.
func (r *MetricsRegistry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.prometheusRegistry); err != nil {
		return errors.Wrap(err, "MetricsRegistry", "WriteTextfile", "write metrics textfile")
	}
	return nil
}
