// Package orderbook implements the per-symbol limit order book: two
// price-ordered level maps, an order-ID index and the single exclusive lock
// that guards them.
package orderbook

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
)

const btreeDegree = 32

// DepthLevel is one (price, total quantity) pair of a market-depth snapshot.
type DepthLevel struct {
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`
}

// Orderbook holds the resting orders for one symbol.
//
// Bids and asks are kept in price-ordered B-trees so the best price on either
// side is an O(log L) endpoint lookup. A flat ID index gives O(1) cancel and
// lookup. Every public operation acquires the book mutex; the lock is never
// held across callback invocations.
type Orderbook struct {
	symbol string

	mu     sync.Mutex
	bids   *btree.Map[uint64, *orderbookv1.PriceLevel]
	asks   *btree.Map[uint64, *orderbookv1.PriceLevel]
	orders map[uint64]*orderbookv1.Order
}

// NewOrderbook creates a new empty orderbook for the given symbol.
func NewOrderbook(symbol string) *Orderbook {
	return &Orderbook{
		symbol: symbol,
		bids:   btree.NewMap[uint64, *orderbookv1.PriceLevel](btreeDegree),
		asks:   btree.NewMap[uint64, *orderbookv1.PriceLevel](btreeDegree),
		orders: make(map[uint64]*orderbookv1.Order),
	}
}

// Symbol returns the trading symbol this book belongs to.
func (ob *Orderbook) Symbol() string {
	return ob.symbol
}

// AddOrder places a resting order at its price level, creating the level if
// needed. It returns false for a nil order, an order with zero remaining
// quantity, or a duplicate order ID; the book is unchanged in those cases.
func (ob *Orderbook) AddOrder(order *orderbookv1.Order) bool {
	if order == nil || order.RemainingQuantity() == 0 {
		return false
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	if _, exists := ob.orders[order.ID]; exists {
		return false
	}

	levels := ob.sideLevels(order.Side)
	level, exists := levels.Get(order.Price)
	if !exists {
		level = orderbookv1.NewPriceLevel(order.Price)
		levels.Set(order.Price, level)
	}

	if err := level.AddOrder(order); err != nil {
		if level.IsEmpty() {
			levels.Delete(order.Price)
		}
		return false
	}

	ob.orders[order.ID] = order
	return true
}

// CancelOrder removes the order from its level queue and the ID index and
// collapses the level if it became empty. Cancelling an unknown ID returns
// false and leaves the book untouched.
func (ob *Orderbook) CancelOrder(orderID uint64) bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, exists := ob.orders[orderID]
	if !exists {
		return false
	}

	levels := ob.sideLevels(order.Side)
	if level, ok := levels.Get(order.Price); ok {
		level.RemoveOrder(orderID)
		if level.IsEmpty() {
			levels.Delete(order.Price)
		}
	}

	delete(ob.orders, orderID)
	return true
}

// BestBid returns the highest bid price, or 0 when no bids rest.
func (ob *Orderbook) BestBid() uint64 {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	price, _, ok := ob.bids.Max()
	if !ok {
		return 0
	}
	return price
}

// BestAsk returns the lowest ask price, or 0 when no asks rest.
func (ob *Orderbook) BestAsk() uint64 {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	price, _, ok := ob.asks.Min()
	if !ok {
		return 0
	}
	return price
}

// BestPrices returns the best bid and best ask in one lock acquisition.
func (ob *Orderbook) BestPrices() (bid, ask uint64) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if price, _, ok := ob.bids.Max(); ok {
		bid = price
	}
	if price, _, ok := ob.asks.Min(); ok {
		ask = price
	}
	return bid, ask
}

// Spread returns bestAsk - bestBid, or 0 when either side is empty.
func (ob *Orderbook) Spread() uint64 {
	bid, ask := ob.BestPrices()
	if bid == 0 || ask == 0 {
		return 0
	}
	return ask - bid
}

// BestBidQuantity returns the cached total quantity at the best bid level.
func (ob *Orderbook) BestBidQuantity() uint64 {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	_, level, ok := ob.bids.Max()
	if !ok {
		return 0
	}
	return level.TotalQuantity
}

// BestAskQuantity returns the cached total quantity at the best ask level.
func (ob *Orderbook) BestAskQuantity() uint64 {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	_, level, ok := ob.asks.Min()
	if !ok {
		return 0
	}
	return level.TotalQuantity
}

// GetOrder returns the resting order with the given ID, or nil.
func (ob *Orderbook) GetOrder(orderID uint64) *orderbookv1.Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.orders[orderID]
}

// OrdersAtPrice returns a copy of the order queue at the given price and side,
// in insertion order. Empty when the level does not exist.
func (ob *Orderbook) OrdersAtPrice(price uint64, side orderbookv1.Side) []*orderbookv1.Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	level, ok := ob.sideLevels(side).Get(price)
	if !ok {
		return nil
	}
	return level.GetOrders()
}

// BestLevelOrders returns a copy of the order queue at the most competitive
// price on the requested side: the highest bid level or the lowest ask level.
// Empty when the side is empty.
func (ob *Orderbook) BestLevelOrders(side orderbookv1.Side) []*orderbookv1.Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	var level *orderbookv1.PriceLevel
	var ok bool
	if side == orderbookv1.Buy {
		_, level, ok = ob.bids.Max()
	} else {
		_, level, ok = ob.asks.Min()
	}
	if !ok {
		return nil
	}
	return level.GetOrders()
}

// UpdateQuantity forwards a remaining-quantity change to the containing
// level's cached total. An unknown order ID is a silent no-op: the matcher
// calls this for the incoming order too, which normally is not in the book.
func (ob *Orderbook) UpdateQuantity(orderID uint64, oldQty, newQty uint64) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	order, exists := ob.orders[orderID]
	if !exists {
		return
	}

	if level, ok := ob.sideLevels(order.Side).Get(order.Price); ok {
		level.AdjustQuantity(oldQty, newQty)
	}
}

// Depth returns up to `levels` (price, total quantity) pairs per side, bids
// ordered high to low and asks low to high. The walk starts at the extremes
// and does not mutate the book.
func (ob *Orderbook) Depth(levels int) (bids, asks []DepthLevel) {
	if levels <= 0 {
		return nil, nil
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	bids = make([]DepthLevel, 0, levels)
	asks = make([]DepthLevel, 0, levels)

	ob.bids.Reverse(func(price uint64, level *orderbookv1.PriceLevel) bool {
		bids = append(bids, DepthLevel{Price: price, Quantity: level.TotalQuantity})
		return len(bids) < levels
	})
	ob.asks.Scan(func(price uint64, level *orderbookv1.PriceLevel) bool {
		asks = append(asks, DepthLevel{Price: price, Quantity: level.TotalQuantity})
		return len(asks) < levels
	})

	return bids, asks
}

// OrderCount returns the number of resting orders.
func (ob *Orderbook) OrderCount() int {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return len(ob.orders)
}

// IsEmpty checks if the book holds no resting orders.
func (ob *Orderbook) IsEmpty() bool {
	return ob.OrderCount() == 0
}

// Clear drops all resting orders and levels.
func (ob *Orderbook) Clear() {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.bids = btree.NewMap[uint64, *orderbookv1.PriceLevel](btreeDegree)
	ob.asks = btree.NewMap[uint64, *orderbookv1.PriceLevel](btreeDegree)
	ob.orders = make(map[uint64]*orderbookv1.Order)
}

// Validate checks the book's cross-structure invariants: every resting order
// sits in exactly one level on its side at its price, no empty level is
// retained, cached level totals match their queues, and no resting order has
// zero remaining quantity.
func (ob *Orderbook) Validate() error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	indexed := 0
	var walkErr error
	walk := func(side orderbookv1.Side) func(price uint64, level *orderbookv1.PriceLevel) bool {
		return func(price uint64, level *orderbookv1.PriceLevel) bool {
			if level.IsEmpty() {
				walkErr = fmt.Errorf("empty %s level retained at %d", side, price)
				return false
			}
			if err := level.Validate(); err != nil {
				walkErr = err
				return false
			}
			for _, order := range level.Orders {
				if ob.orders[order.ID] != order {
					walkErr = fmt.Errorf("order %d at level %d missing from ID index", order.ID, price)
					return false
				}
				if order.Side != side || order.Price != price {
					walkErr = fmt.Errorf("order %d queued on wrong level %s/%d", order.ID, side, price)
					return false
				}
				indexed++
			}
			return true
		}
	}

	ob.bids.Scan(walk(orderbookv1.Buy))
	if walkErr != nil {
		return walkErr
	}
	ob.asks.Scan(walk(orderbookv1.Sell))
	if walkErr != nil {
		return walkErr
	}

	if indexed != len(ob.orders) {
		return fmt.Errorf("ID index holds %d orders, levels hold %d", len(ob.orders), indexed)
	}

	return nil
}

// String renders up to `levels` levels per side, asks above bids.
func (ob *Orderbook) String(levels int) string {
	bids, asks := ob.Depth(levels)

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Order Book: %s ===\n", ob.symbol)

	sb.WriteString("ASKS (price x quantity):\n")
	for i := len(asks) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "  %8d x %-8d\n", asks[i].Price, asks[i].Quantity)
	}
	sb.WriteString("---\n")
	sb.WriteString("BIDS (price x quantity):\n")
	for _, level := range bids {
		fmt.Fprintf(&sb, "  %8d x %-8d\n", level.Price, level.Quantity)
	}

	return sb.String()
}

func (ob *Orderbook) sideLevels(side orderbookv1.Side) *btree.Map[uint64, *orderbookv1.PriceLevel] {
	if side == orderbookv1.Buy {
		return ob.bids
	}
	return ob.asks
}
