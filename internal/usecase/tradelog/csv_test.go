package tradelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func testTrade() orderbookv1.Trade {
	ts := time.Date(2024, 3, 15, 9, 30, 0, 123_000_000, time.UTC)
	return orderbookv1.NewTrade(2, 1, 10_000, 5, ts)
}

func TestWriter_HeaderOnNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")

	w, err := NewWriter(path, newTestLogger(t))
	require.NoError(t, err)

	w.Append(testTrade())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "2024-03-15 09:30:00.123,2,1,10000,5", lines[1])
}

func TestWriter_ReopenAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	log := newTestLogger(t)

	w, err := NewWriter(path, log)
	require.NoError(t, err)
	w.Append(testTrade())
	require.NoError(t, w.Close())

	w, err = NewWriter(path, log)
	require.NoError(t, err)
	w.Append(testTrade())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, 1, strings.Count(string(data), Header))
}

func TestWriter_AppendAfterCloseIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")

	w, err := NewWriter(path, newTestLogger(t))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w.Append(testTrade())
	// Close again is a no-op.
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))
}

func TestWriter_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")

	w, err := NewWriter(path, newTestLogger(t))
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, path, w.Path())
}

func TestWriter_OpenFailure(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "missing", "trades.csv"), newTestLogger(t))
	assert.Error(t, err)
}
