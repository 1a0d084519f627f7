package orderbookv1

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	ErrNilOrder      = errors.New("order cannot be nil")
	ErrInvalidPrice  = errors.New("price must be positive")
	ErrZeroQuantity  = errors.New("quantity must be positive")
	ErrOrderNotFound = errors.New("order not found")
)

// Side represents the direction of an order.
type Side int

const (
	// Buy represents a bid order.
	Buy Side = iota
	// Sell represents an ask order.
	Sell
)

// String returns a human readable side name.
func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the side an order of side s matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType represents the type of order.
type OrderType int

const (
	// Limit represents a limit order.
	Limit OrderType = iota
	// Market represents a market order. The tag is informational only: the
	// matcher treats every order by its stated price.
	Market
)

// String returns a human readable type name.
func (t OrderType) String() string {
	if t == Market {
		return "MARKET"
	}
	return "LIMIT"
}

// Order represents a single order in the order book.
//
// ID, Side, Type, Price, Quantity and Timestamp are set at creation and never
// change. The remaining quantity is the only mutable field; it is held in an
// atomic so book observers (depth queries, the market-data stream) may read it
// without holding the book lock while the matcher decrements it.
type Order struct {
	ID        uint64    `json:"id"`
	Side      Side      `json:"side"`
	Type      OrderType `json:"type"`
	Price     uint64    `json:"price"`    // in whole ticks
	Quantity  uint64    `json:"quantity"` // original quantity, immutable
	Timestamp time.Time `json:"timestamp"`

	remaining atomic.Uint64
}

// NewOrder creates a new limit order with the given parameters.
func NewOrder(id uint64, side Side, price, quantity uint64, timestamp time.Time) *Order {
	o := &Order{
		ID:        id,
		Side:      side,
		Type:      Limit,
		Price:     price,
		Quantity:  quantity,
		Timestamp: timestamp,
	}
	o.remaining.Store(quantity)
	return o
}

// RemainingQuantity returns the unfilled quantity.
func (o *Order) RemainingQuantity() uint64 {
	return o.remaining.Load()
}

// Reduce decrements the remaining quantity by at most qty and returns the
// actual reduction. The remaining quantity never underflows.
func (o *Order) Reduce(qty uint64) uint64 {
	for {
		current := o.remaining.Load()
		actual := min(qty, current)
		if o.remaining.CompareAndSwap(current, current-actual) {
			return actual
		}
	}
}

// IsFilled checks if the order is completely filled.
func (o *Order) IsFilled() bool {
	return o.remaining.Load() == 0
}

// IsPartiallyFilled checks if the order is partially filled.
func (o *Order) IsPartiallyFilled() bool {
	remaining := o.remaining.Load()
	return remaining > 0 && remaining < o.Quantity
}

// FilledQuantity returns the original quantity minus the remaining quantity.
func (o *Order) FilledQuantity() uint64 {
	return o.Quantity - o.remaining.Load()
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == Buy
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == Sell
}

// String returns a formatted representation of the order.
func (o *Order) String() string {
	return fmt.Sprintf("Order{id=%d %s %s price=%d qty=%d remaining=%d}",
		o.ID, o.Side, o.Type, o.Price, o.Quantity, o.RemainingQuantity())
}
