// Package latency records per-operation latencies and derives distribution
// statistics from them.
package latency

import (
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

// Measurement is one recorded operation latency.
type Measurement struct {
	Operation string
	OrderID   uint64
	Start     time.Time
	End       time.Time
}

// Nanoseconds returns the measured latency in nanoseconds.
func (m Measurement) Nanoseconds() uint64 {
	d := m.End.Sub(m.Start)
	if d < 0 {
		return 0
	}
	return uint64(d.Nanoseconds())
}

// Microseconds returns the measured latency in microseconds.
func (m Measurement) Microseconds() float64 {
	return float64(m.Nanoseconds()) / 1000.0
}

// Stats summarizes a latency distribution.
type Stats struct {
	Operations       uint64
	MinNs            uint64
	MaxNs            uint64
	MeanNs           float64
	MedianNs         float64
	P95Ns            float64
	P99Ns            float64
	StdDevNs         float64
	TotalDurationNs  uint64
	ThroughputPerSec float64
}

// String renders the stats block.
func (s Stats) String() string {
	return fmt.Sprintf(
		"operations=%d min=%dns max=%dns mean=%.0fns median=%.0fns p95=%.0fns p99=%.0fns stddev=%.0fns throughput=%.0f ops/s",
		s.Operations, s.MinNs, s.MaxNs, s.MeanNs, s.MedianNs, s.P95Ns, s.P99Ns, s.StdDevNs, s.ThroughputPerSec)
}

// Monitor collects latency measurements. Recording is a no-op while the
// monitor is disabled, so instrumented code paths cost a single atomic read
// when monitoring is off.
type Monitor struct {
	enabled atomic.Bool
	logger  *logger.Logger

	mu           sync.Mutex
	measurements []Measurement
}

// NewMonitor creates a monitor.
func NewMonitor(enabled bool, log *logger.Logger) *Monitor {
	m := &Monitor{
		logger:       log,
		measurements: make([]Measurement, 0, 1024),
	}
	m.enabled.Store(enabled)
	return m
}

// SetEnabled toggles recording.
func (m *Monitor) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// Enabled reports whether the monitor records measurements.
func (m *Monitor) Enabled() bool {
	return m.enabled.Load()
}

// Record stores one measurement.
func (m *Monitor) Record(operation string, orderID uint64, start, end time.Time) {
	if !m.enabled.Load() {
		return
	}

	m.mu.Lock()
	m.measurements = append(m.measurements, Measurement{
		Operation: operation,
		OrderID:   orderID,
		Start:     start,
		End:       end,
	})
	m.mu.Unlock()
}

// Time starts a measurement and returns the function that completes it.
// Intended for defer at the top of the measured operation.
func (m *Monitor) Time(operation string, orderID uint64) func() {
	if !m.enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(operation, orderID, start, time.Now())
	}
}

// Count returns the number of stored measurements.
func (m *Monitor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.measurements)
}

// Clear drops all stored measurements.
func (m *Monitor) Clear() {
	m.mu.Lock()
	m.measurements = m.measurements[:0]
	m.mu.Unlock()
}

// StatsFor computes statistics over measurements of one operation type.
// An empty operation selects all measurements.
func (m *Monitor) StatsFor(operation string) Stats {
	m.mu.Lock()
	latencies := make([]uint64, 0, len(m.measurements))
	var earliest, latest time.Time
	for _, measurement := range m.measurements {
		if operation != "" && measurement.Operation != operation {
			continue
		}
		latencies = append(latencies, measurement.Nanoseconds())
		if earliest.IsZero() || measurement.Start.Before(earliest) {
			earliest = measurement.Start
		}
		if latest.IsZero() || measurement.End.After(latest) {
			latest = measurement.End
		}
	}
	m.mu.Unlock()

	if len(latencies) == 0 {
		return Stats{}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum uint64
	for _, ns := range latencies {
		sum += ns
	}
	mean := float64(sum) / float64(len(latencies))

	var variance float64
	for _, ns := range latencies {
		diff := float64(ns) - mean
		variance += diff * diff
	}
	variance /= float64(len(latencies))

	stats := Stats{
		Operations: uint64(len(latencies)),
		MinNs:      latencies[0],
		MaxNs:      latencies[len(latencies)-1],
		MeanNs:     mean,
		MedianNs:   percentile(latencies, 50),
		P95Ns:      percentile(latencies, 95),
		P99Ns:      percentile(latencies, 99),
		StdDevNs:   math.Sqrt(variance),
	}

	if wall := latest.Sub(earliest); wall > 0 {
		stats.TotalDurationNs = uint64(wall.Nanoseconds())
		stats.ThroughputPerSec = float64(len(latencies)) / wall.Seconds()
	}

	return stats
}

// LogStats writes the aggregate statistics through the logger.
func (m *Monitor) LogStats() {
	stats := m.StatsFor("")
	m.logger.Info("latency statistics",
		logger.Field{Key: "operations", Value: stats.Operations},
		logger.Field{Key: "min_ns", Value: stats.MinNs},
		logger.Field{Key: "max_ns", Value: stats.MaxNs},
		logger.Field{Key: "mean_ns", Value: stats.MeanNs},
		logger.Field{Key: "median_ns", Value: stats.MedianNs},
		logger.Field{Key: "p95_ns", Value: stats.P95Ns},
		logger.Field{Key: "p99_ns", Value: stats.P99Ns},
		logger.Field{Key: "stddev_ns", Value: stats.StdDevNs},
		logger.Field{Key: "throughput_per_sec", Value: stats.ThroughputPerSec},
	)
}

// ExportCSV writes all measurements as
// `operation_type,order_id,latency_ns,latency_us` rows, microseconds with
// three decimals.
func (m *Monitor) ExportCSV(path string) error {
	m.mu.Lock()
	measurements := make([]Measurement, len(m.measurements))
	copy(measurements, m.measurements)
	m.mu.Unlock()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create latency export %s: %w", path, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, "operation_type,order_id,latency_ns,latency_us"); err != nil {
		return fmt.Errorf("write latency export header: %w", err)
	}
	for _, measurement := range measurements {
		_, err := fmt.Fprintf(file, "%s,%d,%d,%.3f\n",
			measurement.Operation, measurement.OrderID,
			measurement.Nanoseconds(), measurement.Microseconds())
		if err != nil {
			return fmt.Errorf("write latency export row: %w", err)
		}
	}

	return nil
}

// percentile interpolates the p-th percentile over sorted nanosecond
// latencies.
func percentile(sorted []uint64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return float64(sorted[0])
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return float64(sorted[lower])
	}
	weight := rank - float64(lower)
	return float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight
}
