package latency

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

func newTestMonitor(t *testing.T, enabled bool) *Monitor {
	t.Helper()

	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)

	return NewMonitor(enabled, log)
}

func record(m *Monitor, operation string, orderID uint64, ns int64) {
	start := time.Unix(0, 1_000_000_000)
	m.Record(operation, orderID, start, start.Add(time.Duration(ns)))
}

func TestMonitor_DisabledIsNoOp(t *testing.T) {
	m := newTestMonitor(t, false)

	record(m, "order_submission", 1, 1000)
	m.Time("order_submission", 2)()

	assert.Equal(t, 0, m.Count())
	assert.Equal(t, Stats{}, m.StatsFor(""))
}

func TestMonitor_RecordAndCount(t *testing.T) {
	m := newTestMonitor(t, true)

	record(m, "order_submission", 1, 1000)
	record(m, "order_cancel", 2, 2000)

	assert.Equal(t, 2, m.Count())

	m.Clear()
	assert.Equal(t, 0, m.Count())
}

func TestMonitor_StatsFor(t *testing.T) {
	m := newTestMonitor(t, true)

	for i, ns := range []int64{100, 200, 300, 400, 500} {
		record(m, "order_submission", uint64(i+1), ns)
	}
	record(m, "order_cancel", 99, 10_000)

	stats := m.StatsFor("order_submission")
	assert.Equal(t, uint64(5), stats.Operations)
	assert.Equal(t, uint64(100), stats.MinNs)
	assert.Equal(t, uint64(500), stats.MaxNs)
	assert.InDelta(t, 300, stats.MeanNs, 0.001)
	assert.InDelta(t, 300, stats.MedianNs, 0.001)
	assert.InDelta(t, 480, stats.P95Ns, 0.001)
	assert.InDelta(t, 496, stats.P99Ns, 0.001)
	assert.InDelta(t, 141.42, stats.StdDevNs, 0.01)

	// Empty operation selects everything.
	all := m.StatsFor("")
	assert.Equal(t, uint64(6), all.Operations)
	assert.Equal(t, uint64(10_000), all.MaxNs)

	assert.Equal(t, Stats{}, m.StatsFor("unknown"))
}

func TestMonitor_Time(t *testing.T) {
	m := newTestMonitor(t, true)

	stop := m.Time("order_submission", 7)
	time.Sleep(time.Millisecond)
	stop()

	require.Equal(t, 1, m.Count())
	stats := m.StatsFor("order_submission")
	assert.GreaterOrEqual(t, stats.MinNs, uint64(time.Millisecond.Nanoseconds()))
}

func TestMonitor_ExportCSV(t *testing.T) {
	m := newTestMonitor(t, true)

	record(m, "order_submission", 42, 1500)

	path := filepath.Join(t.TempDir(), "latency.csv")
	require.NoError(t, m.ExportCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "operation_type,order_id,latency_ns,latency_us", lines[0])
	assert.Equal(t, "order_submission,42,1500,1.500", lines[1])
}

func TestPercentile(t *testing.T) {
	sorted := []uint64{100, 200, 300, 400}

	assert.Equal(t, float64(0), percentile(nil, 50))
	assert.Equal(t, float64(100), percentile(sorted[:1], 99))
	assert.InDelta(t, 250, percentile(sorted, 50), 0.001)
	assert.InDelta(t, 100, percentile(sorted, 0), 0.001)
	assert.InDelta(t, 400, percentile(sorted, 100), 0.001)
}
