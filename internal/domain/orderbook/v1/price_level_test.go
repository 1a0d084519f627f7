package orderbookv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(id uint64, side Side, price, quantity uint64) *Order {
	return NewOrder(id, side, price, quantity, time.Now())
}

func TestNewPriceLevel(t *testing.T) {
	level := NewPriceLevel(10_000)

	assert.Equal(t, uint64(10_000), level.Price)
	assert.Equal(t, uint64(0), level.TotalQuantity)
	assert.True(t, level.IsEmpty())
	assert.Equal(t, 0, level.OrderCount())
}

func TestPriceLevel_AddOrder(t *testing.T) {
	level := NewPriceLevel(10_000)

	order1 := newTestOrder(1, Sell, 10_000, 10)
	order2 := newTestOrder(2, Sell, 10_000, 5)

	require.NoError(t, level.AddOrder(order1))
	require.NoError(t, level.AddOrder(order2))

	assert.Equal(t, 2, level.OrderCount())
	assert.Equal(t, uint64(15), level.TotalQuantity)

	// FIFO: insertion order preserved.
	orders := level.GetOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, uint64(1), orders[0].ID)
	assert.Equal(t, uint64(2), orders[1].ID)
}

func TestPriceLevel_AddOrder_Invalid(t *testing.T) {
	level := NewPriceLevel(10_000)

	assert.ErrorIs(t, level.AddOrder(nil), ErrNilOrder)

	zero := newTestOrder(1, Buy, 10_000, 0)
	assert.ErrorIs(t, level.AddOrder(zero), ErrZeroQuantity)

	assert.True(t, level.IsEmpty())
	assert.Equal(t, uint64(0), level.TotalQuantity)
}

func TestPriceLevel_RemoveOrder(t *testing.T) {
	level := NewPriceLevel(10_000)

	order1 := newTestOrder(1, Buy, 10_000, 10)
	order2 := newTestOrder(2, Buy, 10_000, 5)
	require.NoError(t, level.AddOrder(order1))
	require.NoError(t, level.AddOrder(order2))

	assert.True(t, level.RemoveOrder(1))
	assert.Equal(t, uint64(5), level.TotalQuantity)
	assert.Equal(t, 1, level.OrderCount())

	// Removing an unknown ID reports false and changes nothing.
	assert.False(t, level.RemoveOrder(99))
	assert.Equal(t, uint64(5), level.TotalQuantity)

	assert.True(t, level.RemoveOrder(2))
	assert.True(t, level.IsEmpty())
	assert.Equal(t, uint64(0), level.TotalQuantity)
}

func TestPriceLevel_AdjustQuantity(t *testing.T) {
	level := NewPriceLevel(10_000)

	order := newTestOrder(1, Sell, 10_000, 10)
	require.NoError(t, level.AddOrder(order))

	order.Reduce(4)
	level.AdjustQuantity(10, 6)

	assert.Equal(t, uint64(6), level.TotalQuantity)
	require.NoError(t, level.Validate())
}

func TestPriceLevel_Validate_Mismatch(t *testing.T) {
	level := NewPriceLevel(10_000)

	order := newTestOrder(1, Sell, 10_000, 10)
	require.NoError(t, level.AddOrder(order))

	// Reduce without adjusting the cached total.
	order.Reduce(3)
	assert.Error(t, level.Validate())
}

func TestOrder_Reduce(t *testing.T) {
	order := newTestOrder(1, Buy, 100, 10)

	assert.Equal(t, uint64(4), order.Reduce(4))
	assert.Equal(t, uint64(6), order.RemainingQuantity())
	assert.True(t, order.IsPartiallyFilled())
	assert.Equal(t, uint64(4), order.FilledQuantity())

	// Clamped at remaining: never underflows.
	assert.Equal(t, uint64(6), order.Reduce(100))
	assert.Equal(t, uint64(0), order.RemainingQuantity())
	assert.True(t, order.IsFilled())
	assert.False(t, order.IsPartiallyFilled())
}

func TestSide_Opposite(t *testing.T) {
	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
}

func TestTrade_CSVRow(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 30, 0, 123_000_000, time.Local)
	trade := NewTrade(2, 1, 10_000, 5, ts)

	assert.Equal(t, "2024-03-15 09:30:00.123,2,1,10000,5", trade.CSVRow())
	assert.Equal(t, uint64(50_000), trade.Notional())
}
