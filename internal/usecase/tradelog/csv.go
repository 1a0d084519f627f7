// Package tradelog appends executed trades to a CSV file.
package tradelog

import (
	"fmt"
	"os"
	"sync"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

// Header is the first row of a trade-log file.
const Header = "timestamp,buyOrderID,sellOrderID,price,quantity"

// Writer appends one CSV row per trade. Writes are serialized by the writer's
// own mutex, independent of the book lock, and the file is synced after each
// row. A write failure is logged and swallowed: a failed row never rolls back
// the trade that produced it.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	logger *logger.Logger
}

// NewWriter opens the trade log in append mode, creating it if needed. The
// header row is written iff the file is empty on open.
func NewWriter(path string, log *logger.Logger) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trade log %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat trade log %s: %w", path, err)
	}
	if info.Size() == 0 {
		if _, err := fmt.Fprintln(file, Header); err != nil {
			file.Close()
			return nil, fmt.Errorf("write trade log header: %w", err)
		}
	}

	return &Writer{
		file:   file,
		path:   path,
		logger: log,
	}, nil
}

// Path returns the file path the writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one trade row and flushes it to disk.
func (w *Writer) Append(trade orderbookv1.Trade) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return
	}

	if _, err := fmt.Fprintln(w.file, trade.CSVRow()); err != nil {
		w.logger.Error(err,
			logger.Field{Key: "operation", Value: "trade_log_append"},
			logger.Field{Key: "path", Value: w.path},
		)
		return
	}
	if err := w.file.Sync(); err != nil {
		w.logger.Error(err,
			logger.Field{Key: "operation", Value: "trade_log_sync"},
			logger.Field{Key: "path", Value: w.path},
		)
	}
}

// Close closes the underlying file. Further appends are silently dropped.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
