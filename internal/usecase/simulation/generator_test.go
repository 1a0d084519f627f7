package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
)

func TestGenerator_NextOrder_Bounds(t *testing.T) {
	cfg := GeneratorConfig{
		BasePrice:   10_000,
		PriceRange:  1_000,
		MinQuantity: 1,
		MaxQuantity: 100,
	}
	gen := NewGenerator(cfg, 42)

	for i := 0; i < 1_000; i++ {
		order := gen.NextOrder()
		require.NotNil(t, order)

		assert.Equal(t, uint64(i+1), order.ID)
		assert.GreaterOrEqual(t, order.Price, uint64(9_000))
		assert.LessOrEqual(t, order.Price, uint64(11_000))
		assert.GreaterOrEqual(t, order.RemainingQuantity(), uint64(1))
		assert.LessOrEqual(t, order.RemainingQuantity(), uint64(100))
	}
}

func TestGenerator_Reproducible(t *testing.T) {
	cfg := DefaultGeneratorConfig()

	a := NewGenerator(cfg, 7)
	b := NewGenerator(cfg, 7)

	for i := 0; i < 100; i++ {
		oa, ob := a.NextOrder(), b.NextOrder()
		assert.Equal(t, oa.ID, ob.ID)
		assert.Equal(t, oa.Side, ob.Side)
		assert.Equal(t, oa.Price, ob.Price)
		assert.Equal(t, oa.Quantity, ob.Quantity)
	}
}

func TestGenerator_GenerateBatch(t *testing.T) {
	gen := NewGenerator(DefaultGeneratorConfig(), 1)

	orders := gen.GenerateBatch(50)
	require.Len(t, orders, 50)

	seen := make(map[uint64]bool, len(orders))
	for _, order := range orders {
		assert.False(t, seen[order.ID])
		seen[order.ID] = true
	}
}

func TestGenerator_GenerateAggressive(t *testing.T) {
	cfg := GeneratorConfig{
		BasePrice:   10_000,
		PriceRange:  1_000,
		MinQuantity: 1,
		MaxQuantity: 1_000,
	}
	gen := NewGenerator(cfg, 3)

	orders := gen.GenerateAggressive(200)
	require.Len(t, orders, 200)

	// The first half prices through the far side of the band.
	for _, order := range orders[:100] {
		if order.Side == orderbookv1.Buy {
			assert.GreaterOrEqual(t, order.Price, cfg.BasePrice+cfg.PriceRange)
		} else {
			assert.LessOrEqual(t, order.Price, cfg.BasePrice-cfg.PriceRange)
		}
	}

	// The second half stays inside it.
	for _, order := range orders[100:] {
		assert.GreaterOrEqual(t, order.Price, cfg.BasePrice-cfg.PriceRange)
		assert.LessOrEqual(t, order.Price, cfg.BasePrice+cfg.PriceRange)
	}
}

func TestGenerator_QuantityFloor(t *testing.T) {
	// Max below min collapses to min.
	gen := NewGenerator(GeneratorConfig{BasePrice: 100, PriceRange: 10, MinQuantity: 5, MaxQuantity: 1}, 9)

	for i := 0; i < 20; i++ {
		assert.Equal(t, uint64(5), gen.NextOrder().RemainingQuantity())
	}
}
