// Package engine implements the continuous double-auction matching engine:
// the price-time priority match loop, trade emission and market statistics.
package engine

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
	"github.com/Aditya-k24/book-order-simulator/internal/usecase/orderbook"
	"github.com/Aditya-k24/book-order-simulator/internal/usecase/tradelog"
	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

// TradeCallback is invoked synchronously once per executed trade, after the
// trade is appended to the record and the statistics counters are advanced.
type TradeCallback func(orderbookv1.Trade)

// OrderCallback is invoked when a residual rests on the book after a submit
// and when a resting order leaves the book through a full fill or a cancel.
type OrderCallback func(*orderbookv1.Order)

// Engine matches incoming orders against the book under price-time priority.
//
// A single engine mutex serializes submissions and cancels, so a whole match
// loop runs atomically with respect to other submissions. The book keeps its
// own per-operation lock underneath, which keeps read-side queries (depth,
// best prices, snapshots) safe at any time. Neither lock is a callback
// guard: sinks run without the book lock and must not re-enter the engine.
type Engine struct {
	symbol string
	book   *orderbook.Orderbook
	logger *logger.Logger

	mu sync.Mutex // serializes SubmitOrder / CancelOrder / Clear

	tradesMu sync.RWMutex
	trades   []orderbookv1.Trade

	tradeCount  atomic.Uint64
	totalVolume atomic.Uint64
	totalValue  atomic.Uint64

	callbackMu    sync.RWMutex
	tradeCallback TradeCallback
	orderCallback OrderCallback

	csvMu sync.Mutex
	csv   *tradelog.Writer
}

// NewEngine creates a matching engine for the given symbol.
func NewEngine(symbol string, log *logger.Logger) *Engine {
	return NewEngineWithOptions(symbol, log, DefaultEngineOptions())
}

// NewEngineWithOptions creates a matching engine with custom options.
func NewEngineWithOptions(symbol string, log *logger.Logger, options *Options) *Engine {
	return &Engine{
		symbol: symbol,
		book:   orderbook.NewOrderbook(symbol),
		logger: log,
		trades: make([]orderbookv1.Trade, 0, options.TradeCapacity),
	}
}

// Symbol returns the trading symbol.
func (e *Engine) Symbol() string {
	return e.symbol
}

// Book returns the underlying order book for read-side queries.
func (e *Engine) Book() *orderbook.Orderbook {
	return e.book
}

// SubmitOrder runs the match loop for the incoming order and rests any
// unfilled remainder on the book. It returns false only for a nil order.
func (e *Engine) SubmitOrder(order *orderbookv1.Order) bool {
	if order == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.matchOrder(order)

	if !order.IsFilled() {
		if e.book.AddOrder(order) {
			e.notifyOrderCallback(order)
		}
	}

	return true
}

// CancelOrder removes a resting order from the book. On success the order
// callback is notified; an unknown ID returns false and changes nothing.
func (e *Engine) CancelOrder(orderID uint64) bool {
	e.mu.Lock()
	// Fetch before removal so the event sink still sees the order.
	order := e.book.GetOrder(orderID)
	cancelled := e.book.CancelOrder(orderID)
	e.mu.Unlock()

	if cancelled && order != nil {
		e.notifyOrderCallback(order)
	}
	return cancelled
}

// ProcessBatch submits each order in turn and returns how many succeeded.
func (e *Engine) ProcessBatch(orders []*orderbookv1.Order) int {
	processed := 0
	for _, order := range orders {
		if e.SubmitOrder(order) {
			processed++
		}
	}
	return processed
}

// Clear drops all book state, the trade record and the statistics counters.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.book.Clear()

	e.tradesMu.Lock()
	e.trades = e.trades[:0]
	e.tradesMu.Unlock()

	e.tradeCount.Store(0)
	e.totalVolume.Store(0)
	e.totalValue.Store(0)
}

// matchOrder iteratively executes the incoming order against the best
// opposing level until the order is filled or nothing at the best level
// crosses. Consuming the best resting order exposes the next level on the
// following iteration, so multi-level sweeps occur across iterations.
func (e *Engine) matchOrder(incoming *orderbookv1.Order) int {
	executed := 0

	for !incoming.IsFilled() {
		resting := e.book.BestLevelOrders(incoming.Side.Opposite())
		if len(resting) == 0 {
			break
		}

		// Earliest-timestamp crossing order wins. The queue is FIFO under a
		// single clock, but the selection rule is the timestamp, not the
		// queue position.
		var best *orderbookv1.Order
		for _, candidate := range resting {
			if candidate == nil || candidate.IsFilled() {
				continue
			}
			if !crosses(incoming, candidate) {
				continue
			}
			if best == nil || candidate.Timestamp.Before(best.Timestamp) {
				best = candidate
			}
		}
		if best == nil {
			break
		}

		// The passive side sets the price; the aggressor's price is only the
		// crossing threshold.
		tradePrice := best.Price
		tradeQty := min(incoming.RemainingQuantity(), best.RemainingQuantity())

		e.executeTrade(incoming, best, tradePrice, tradeQty)

		incomingPre := incoming.RemainingQuantity()
		bestPre := best.RemainingQuantity()
		incoming.Reduce(tradeQty)
		best.Reduce(tradeQty)

		// The incoming order normally is not in the book yet; the book
		// ignores the unknown ID.
		e.book.UpdateQuantity(incoming.ID, incomingPre, incomingPre-tradeQty)
		e.book.UpdateQuantity(best.ID, bestPre, bestPre-tradeQty)

		if best.IsFilled() {
			e.book.CancelOrder(best.ID)
			e.notifyOrderCallback(best)
		}

		executed++
	}

	return executed
}

// crosses reports whether the incoming order's price crosses the resting
// order's price.
func crosses(incoming, resting *orderbookv1.Order) bool {
	if incoming.Side == orderbookv1.Buy {
		return incoming.Price >= resting.Price
	}
	return incoming.Price <= resting.Price
}

// executeTrade records one fill between the two orders and fans it out to the
// sinks: trade record append, statistics counters, CSV row, trade callback,
// in that order.
func (e *Engine) executeTrade(a, b *orderbookv1.Order, price, quantity uint64) orderbookv1.Trade {
	buy, sell := a, b
	if buy.Side != orderbookv1.Buy {
		buy, sell = sell, buy
	}

	trade := orderbookv1.NewTrade(buy.ID, sell.ID, price, quantity, time.Now())

	e.tradesMu.Lock()
	e.trades = append(e.trades, trade)
	e.tradesMu.Unlock()

	e.tradeCount.Add(1)
	e.totalVolume.Add(quantity)
	e.totalValue.Add(price * quantity)

	e.logTradeToCSV(trade)
	e.notifyTradeCallback(trade)

	return trade
}

// SetTradeCallback replaces the trade execution callback. A nil callback
// disables it.
func (e *Engine) SetTradeCallback(callback TradeCallback) {
	e.callbackMu.Lock()
	e.tradeCallback = callback
	e.callbackMu.Unlock()
}

// SetOrderCallback replaces the order event callback. A nil callback
// disables it.
func (e *Engine) SetOrderCallback(callback OrderCallback) {
	e.callbackMu.Lock()
	e.orderCallback = callback
	e.callbackMu.Unlock()
}

// EnableCSVLogging opens (or reopens) the CSV trade log at the given path.
func (e *Engine) EnableCSVLogging(path string) error {
	writer, err := tradelog.NewWriter(path, e.logger)
	if err != nil {
		return err
	}

	e.csvMu.Lock()
	old := e.csv
	e.csv = writer
	e.csvMu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// DisableCSVLogging closes the CSV trade log if one is open.
func (e *Engine) DisableCSVLogging() error {
	e.csvMu.Lock()
	old := e.csv
	e.csv = nil
	e.csvMu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// TradeCount returns the total number of trades executed.
func (e *Engine) TradeCount() uint64 {
	return e.tradeCount.Load()
}

// TotalVolume returns the total quantity traded.
func (e *Engine) TotalVolume() uint64 {
	return e.totalVolume.Load()
}

// TotalValue returns the sum of price*quantity over all trades.
func (e *Engine) TotalValue() uint64 {
	return e.totalValue.Load()
}

// AverageTradePrice returns totalValue/totalVolume, or 0 before any trade.
func (e *Engine) AverageTradePrice() uint64 {
	volume := e.totalVolume.Load()
	if volume == 0 {
		return 0
	}
	return e.totalValue.Load() / volume
}

// Trades returns a copy of the executed trades in execution order.
func (e *Engine) Trades() []orderbookv1.Trade {
	e.tradesMu.RLock()
	defer e.tradesMu.RUnlock()

	trades := make([]orderbookv1.Trade, len(e.trades))
	copy(trades, e.trades)
	return trades
}

// OrderBookSnapshot renders up to `levels` levels per side of the book.
func (e *Engine) OrderBookSnapshot(levels int) string {
	return e.book.String(levels)
}

// MarketStats renders the engine's market statistics block.
func (e *Engine) MarketStats() string {
	var sb strings.Builder
	sb.WriteString("\n=== Market Statistics ===\n")
	fmt.Fprintf(&sb, "Symbol: %s\n", e.symbol)
	fmt.Fprintf(&sb, "Total Trades: %d\n", e.tradeCount.Load())
	fmt.Fprintf(&sb, "Total Volume: %d\n", e.totalVolume.Load())
	fmt.Fprintf(&sb, "Total Value: %d\n", e.totalValue.Load())
	fmt.Fprintf(&sb, "Active Orders: %d\n", e.book.OrderCount())

	bid, ask := e.book.BestPrices()
	fmt.Fprintf(&sb, "Best Bid: %d (Qty: %d)\n", bid, e.book.BestBidQuantity())
	fmt.Fprintf(&sb, "Best Ask: %d (Qty: %d)\n", ask, e.book.BestAskQuantity())
	fmt.Fprintf(&sb, "Spread: %d\n", e.book.Spread())

	if avg := e.AverageTradePrice(); avg > 0 {
		fmt.Fprintf(&sb, "Average Trade Price: %d\n", avg)
	}
	sb.WriteString("========================\n")

	return sb.String()
}

func (e *Engine) logTradeToCSV(trade orderbookv1.Trade) {
	e.csvMu.Lock()
	writer := e.csv
	e.csvMu.Unlock()

	if writer != nil {
		writer.Append(trade)
	}
}

func (e *Engine) notifyTradeCallback(trade orderbookv1.Trade) {
	e.callbackMu.RLock()
	callback := e.tradeCallback
	e.callbackMu.RUnlock()

	if callback != nil {
		callback(trade)
	}
}

func (e *Engine) notifyOrderCallback(order *orderbookv1.Order) {
	e.callbackMu.RLock()
	callback := e.orderCallback
	e.callbackMu.RUnlock()

	if callback != nil {
		callback(order)
	}
}
