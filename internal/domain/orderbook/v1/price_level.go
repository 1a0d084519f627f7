package orderbookv1

import (
	"fmt"
)

// PriceLevel represents a single price level in the order book: a FIFO queue
// of resting orders plus a cached total of their remaining quantities.
//
// The level carries no lock of its own; the owning book's mutex guards every
// mutation. The queue is a plain slice because FIFO at a level is cheap and
// per-level depth is typically small.
type PriceLevel struct {
	Price         uint64   `json:"price"`
	TotalQuantity uint64   `json:"totalQuantity"`
	Orders        []*Order `json:"orders"`
}

// NewPriceLevel creates a new empty price level at the given price.
func NewPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: make([]*Order, 0, 4),
	}
}

// AddOrder appends an order to the queue and updates the total quantity.
func (l *PriceLevel) AddOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	remaining := order.RemainingQuantity()
	if remaining == 0 {
		return fmt.Errorf("%w: order %d", ErrZeroQuantity, order.ID)
	}

	l.Orders = append(l.Orders, order)
	l.TotalQuantity += remaining

	return nil
}

// RemoveOrder removes the first order with the given ID from the queue and
// updates the total quantity. It reports whether the order was found.
func (l *PriceLevel) RemoveOrder(orderID uint64) bool {
	for i, o := range l.Orders {
		if o.ID == orderID {
			l.TotalQuantity -= o.RemainingQuantity()
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			return true
		}
	}
	return false
}

// AdjustQuantity updates the cached total after an order's remaining quantity
// changed from oldQty to newQty. No search is performed.
func (l *PriceLevel) AdjustQuantity(oldQty, newQty uint64) {
	l.TotalQuantity = l.TotalQuantity - oldQty + newQty
}

// IsEmpty checks if the level has no orders.
func (l *PriceLevel) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this level.
func (l *PriceLevel) OrderCount() int {
	return len(l.Orders)
}

// GetOrders returns a copy of the order queue in insertion order.
func (l *PriceLevel) GetOrders() []*Order {
	orders := make([]*Order, len(l.Orders))
	copy(orders, l.Orders)
	return orders
}

// Clear drops all orders and resets the total quantity.
func (l *PriceLevel) Clear() {
	l.Orders = l.Orders[:0]
	l.TotalQuantity = 0
}

// Validate performs basic validation of the level's state.
func (l *PriceLevel) Validate() error {
	if l.Price == 0 {
		return fmt.Errorf("%w: level price is zero", ErrInvalidPrice)
	}

	var calculated uint64
	for _, order := range l.Orders {
		if order == nil {
			return fmt.Errorf("nil order found at level %d", l.Price)
		}
		remaining := order.RemainingQuantity()
		if remaining == 0 {
			return fmt.Errorf("%w: order %d rests with zero remaining", ErrZeroQuantity, order.ID)
		}
		calculated += remaining
	}

	if calculated != l.TotalQuantity {
		return fmt.Errorf("quantity mismatch at level %d: calculated %d, cached %d",
			l.Price, calculated, l.TotalQuantity)
	}

	return nil
}
