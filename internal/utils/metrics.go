// internal/utils/metrics.go
package utils

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects application metrics
type MetricsCollector struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram

	mu sync.RWMutex
}

// Counter metric, value updated atomically
type Counter struct {
	name  string
	value int64
}

// Gauge metric, value updated atomically
type Gauge struct {
	name  string
	value int64
}

// Histogram tracks count, sum, min and max
type Histogram struct {
	name  string
	count int64
	sum   int64
	min   int64
	max   int64
	mu    sync.Mutex
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// NewMetricsCollector creates an empty collector (tests use their own)
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

// GetMetricsCollector returns the global metrics collector
func GetMetricsCollector() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

func (m *MetricsCollector) counter(name string) *Counter {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()
	if exists {
		return counter
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if counter, exists = m.counters[name]; !exists {
		counter = &Counter{name: name}
		m.counters[name] = counter
	}
	return counter
}

func (m *MetricsCollector) gauge(name string) *Gauge {
	m.mu.RLock()
	gauge, exists := m.gauges[name]
	m.mu.RUnlock()
	if exists {
		return gauge
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gauge, exists = m.gauges[name]; !exists {
		gauge = &Gauge{name: name}
		m.gauges[name] = gauge
	}
	return gauge
}

// IncrementCounter increments a counter metric
func (m *MetricsCollector) IncrementCounter(name string) {
	atomic.AddInt64(&m.counter(name).value, 1)
}

// AddCounter adds a value to a counter metric
func (m *MetricsCollector) AddCounter(name string, value int64) {
	atomic.AddInt64(&m.counter(name).value, value)
}

// SetGauge sets a gauge metric
func (m *MetricsCollector) SetGauge(name string, value int64) {
	atomic.StoreInt64(&m.gauge(name).value, value)
}

// IncGauge increments a gauge metric
func (m *MetricsCollector) IncGauge(name string) {
	atomic.AddInt64(&m.gauge(name).value, 1)
}

// DecGauge decrements a gauge metric
func (m *MetricsCollector) DecGauge(name string) {
	atomic.AddInt64(&m.gauge(name).value, -1)
}

// GetGauge gets the current value of a gauge
func (m *MetricsCollector) GetGauge(name string) int64 {
	m.mu.RLock()
	gauge, exists := m.gauges[name]
	m.mu.RUnlock()

	if !exists {
		return 0
	}
	return atomic.LoadInt64(&gauge.value)
}

// RecordHistogram records a value in a histogram
func (m *MetricsCollector) RecordHistogram(name string, value int64) {
	m.mu.RLock()
	histogram, exists := m.histograms[name]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		histogram, exists = m.histograms[name]
		if !exists {
			histogram = &Histogram{name: name, min: value, max: value}
			m.histograms[name] = histogram
		}
		m.mu.Unlock()
	}

	histogram.mu.Lock()
	defer histogram.mu.Unlock()

	histogram.count++
	histogram.sum += value
	if value < histogram.min {
		histogram.min = value
	}
	if value > histogram.max {
		histogram.max = value
	}
}

// GetMetrics returns a snapshot of all metrics
func (m *MetricsCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, counter := range m.counters {
		counters[name] = atomic.LoadInt64(&counter.value)
	}

	gauges := make(map[string]int64, len(m.gauges))
	for name, gauge := range m.gauges {
		gauges[name] = atomic.LoadInt64(&gauge.value)
	}

	histograms := make(map[string]map[string]int64, len(m.histograms))
	for name, histogram := range m.histograms {
		histogram.mu.Lock()
		histograms[name] = map[string]int64{
			"count": histogram.count,
			"sum":   histogram.sum,
			"min":   histogram.min,
			"max":   histogram.max,
		}
		histogram.mu.Unlock()
	}

	return map[string]interface{}{
		"counters":   counters,
		"gauges":     gauges,
		"histograms": histograms,
	}
}

// GetCounterValue gets the current value of a counter
func (m *MetricsCollector) GetCounterValue(name string) int64 {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if !exists {
		return 0
	}
	return atomic.LoadInt64(&counter.value)
}

// PipelineMetrics records request, submission and export metrics
type PipelineMetrics struct {
	metrics *MetricsCollector
	logger  *Logger
}

// NewPipelineMetrics creates metrics bound to the given collector (nil -> global)
func NewPipelineMetrics(collector *MetricsCollector) *PipelineMetrics {
	if collector == nil {
		collector = GetMetricsCollector()
	}
	return &PipelineMetrics{
		metrics: collector,
		logger:  GetLogger(),
	}
}

// Collector exposes the underlying collector
func (pm *PipelineMetrics) Collector() *MetricsCollector {
	return pm.metrics
}

// RecordAPIRequest records metrics for an API request
func (pm *PipelineMetrics) RecordAPIRequest(endpoint, method string, statusCode int, duration time.Duration) {
	pm.metrics.IncrementCounter("api_requests_total")
	pm.metrics.IncrementCounter("api_requests_" + method + "_" + endpoint)
	pm.metrics.RecordHistogram("api_response_time_ms", duration.Milliseconds())
	pm.metrics.IncrementCounter("api_responses_" + strconv.Itoa(statusCode/100) + "xx")

	pm.logger.Debug("API request completed", map[string]interface{}{
		"endpoint": endpoint,
		"method":   method,
		"status":   statusCode,
		"duration": duration.Milliseconds(),
	})
}

// RecordSubmission records a chart submission outcome
func (pm *PipelineMetrics) RecordSubmission(chartType string, ok bool) {
	pm.metrics.IncrementCounter("submissions_total")
	if ok {
		pm.metrics.IncrementCounter("submissions_ok_" + chartType)
		return
	}
	pm.metrics.IncrementCounter("submissions_failed")
}

// RecordValidationFailure counts validation failures per kind
func (pm *PipelineMetrics) RecordValidationFailure(kind string) {
	pm.metrics.IncrementCounter("validation_failures_total")
	pm.metrics.IncrementCounter("validation_failures_" + kind)
}

// RecordExport records an export attempt
func (pm *PipelineMetrics) RecordExport(format string, ok bool, duration time.Duration) {
	pm.metrics.IncrementCounter("exports_total")
	if ok {
		pm.metrics.IncrementCounter("exports_ok_" + format)
	} else {
		pm.metrics.IncrementCounter("exports_failed_" + format)
	}
	pm.metrics.RecordHistogram("export_time_ms", duration.Milliseconds())
}

// RecordConnections sets the number of open websocket connections per channel
func (pm *PipelineMetrics) RecordConnections(channel string, count int) {
	pm.metrics.SetGauge("websocket_clients_"+channel, int64(count))
}

// RecordError records an error metric
func (pm *PipelineMetrics) RecordError(errorType, component string) {
	pm.metrics.IncrementCounter("errors_total")
	pm.metrics.IncrementCounter("errors_" + errorType)
	pm.metrics.IncrementCounter("errors_" + component)

	pm.logger.Error("Error recorded", map[string]interface{}{
		"type":      errorType,
		"component": component,
	})
}

// StartMetricsCollection logs a metrics summary every interval until ctx is done
func (pm *PipelineMetrics) StartMetricsCollection(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pm.logger.Info("Periodic metrics report", map[string]interface{}{
					"metrics": pm.metrics.GetMetrics(),
				})
			}
		}
	}()
}
