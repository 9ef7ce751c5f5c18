// Package metrics records counters and timings for the swap program.
//
// The Metrics interface is the sink contract; Collection fans out to any number
// of sinks. The processor records through a Collection so callers can attach
// logging, test or exporter sinks without touching handler code.
package metrics

import (
	"context"
	"log/slog"
	"sync"
)

// Metrics defines the interface for a metrics sink.
type Metrics interface {
	// Flush sends any buffered metrics data.
	Flush(ctx context.Context) error

	// IncrementCounter increments a counter metric by the specified value.
	IncrementCounter(ctx context.Context, name string, value uint64) error

	// RecordHistogram records a value in a histogram metric.
	RecordHistogram(ctx context.Context, name string, value float64) error
}

// Collection manages multiple Metrics implementations and delegates calls to all of them.
type Collection struct {
	metrics []Metrics
	mu      sync.RWMutex
}

// NewCollection creates a new Collection with the given metrics implementations.
func NewCollection(metrics ...Metrics) *Collection {
	return &Collection{
		metrics: metrics,
	}
}

// Add adds a new Metrics implementation to the collection.
func (c *Collection) Add(m Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, m)
}

// Flush flushes all metrics in the collection.
func (c *Collection) Flush(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// IncrementCounter increments a counter across all implementations.
func (c *Collection) IncrementCounter(ctx context.Context, name string, value uint64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.IncrementCounter(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}

// RecordHistogram records a histogram value across all implementations.
func (c *Collection) RecordHistogram(ctx context.Context, name string, value float64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.metrics {
		if err := m.RecordHistogram(ctx, name, value); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of metrics implementations in the collection.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.metrics)
}

// CounterSink keeps counters in memory and optionally logs every change.
type CounterSink struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	counters map[string]uint64
}

// NewCounterSink creates a CounterSink. A nil logger disables logging.
func NewCounterSink(logger *slog.Logger) *CounterSink {
	return &CounterSink{
		logger:   logger,
		counters: make(map[string]uint64),
	}
}

// Flush logs all current counter values.
func (s *CounterSink) Flush(ctx context.Context) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Info("metrics flush", "counters", s.Snapshot())
	return nil
}

// IncrementCounter adds value to the named counter.
func (s *CounterSink) IncrementCounter(ctx context.Context, name string, value uint64) error {
	s.mu.Lock()
	s.counters[name] += value
	total := s.counters[name]
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("counter incremented", "name", name, "value", value, "total", total)
	}
	return nil
}

// RecordHistogram logs the value; histograms are not retained.
func (s *CounterSink) RecordHistogram(ctx context.Context, name string, value float64) error {
	if s.logger != nil {
		s.logger.Debug("histogram recorded", "name", name, "value", value)
	}
	return nil
}

// Counter returns the current value of the named counter.
func (s *CounterSink) Counter(name string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[name]
}

// Snapshot returns a copy of all counters.
func (s *CounterSink) Snapshot() map[string]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]uint64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

// Metric names recorded by the processor.
const (
	MetricInstructionsReceived  = "instructions_received"
	MetricInstructionsSucceeded = "instructions_succeeded"
	MetricInstructionsFailed    = "instructions_failed"
	MetricPoolsInitialized      = "pools_initialized"
	MetricSwapsBaseForToken     = "swaps_base_for_token"
	MetricSwapsTokenForBase     = "swaps_token_for_base"
	MetricRateUpdates           = "rate_updates"
	MetricBaseVolumeIn          = "base_volume_in"
	MetricBaseVolumeOut         = "base_volume_out"
	MetricTokensMinted          = "tokens_minted"
	MetricTokensBurned          = "tokens_burned"
	MetricProcessTimeNanos      = "process_time_nanoseconds"
)

// FailureMetric returns the counter name for failures of the given error code.
func FailureMetric(code string) string {
	return "instructions_failed_" + code
}
