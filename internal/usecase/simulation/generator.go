// Package simulation generates synthetic order flow for driving the engine.
package simulation

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
)

// GeneratorConfig bounds the random order stream.
type GeneratorConfig struct {
	BasePrice   uint64 // mid price in ticks
	PriceRange  uint64 // +/- from base
	MinQuantity uint64
	MaxQuantity uint64
}

// DefaultGeneratorConfig returns the generation bounds used by the simulator
// when nothing is configured.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		BasePrice:   10000,
		PriceRange:  1000,
		MinQuantity: 1,
		MaxQuantity: 1000,
	}
}

// Generator produces random orders with unique, monotonically increasing IDs.
// Safe for concurrent use.
type Generator struct {
	cfg GeneratorConfig

	mu  sync.Mutex
	rng *rand.Rand

	nextID atomic.Uint64
}

// NewGenerator creates a generator seeded for a reproducible stream.
func NewGenerator(cfg GeneratorConfig, seed int64) *Generator {
	if cfg.MaxQuantity < cfg.MinQuantity {
		cfg.MaxQuantity = cfg.MinQuantity
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NextOrder generates one random order around the configured mid price.
func (g *Generator) NextOrder() *orderbookv1.Order {
	g.mu.Lock()
	price := g.randomPrice()
	quantity := g.randomQuantity()
	side := g.randomSide()
	g.mu.Unlock()

	return orderbookv1.NewOrder(g.nextID.Add(1), side, price, quantity, time.Now())
}

// GenerateBatch generates n random orders.
func (g *Generator) GenerateBatch(n int) []*orderbookv1.Order {
	orders := make([]*orderbookv1.Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, g.NextOrder())
	}
	return orders
}

// GenerateAggressive generates n orders where roughly half rest around the
// mid to build a book and the other half price through the spread so they are
// likely to match.
func (g *Generator) GenerateAggressive(n int) []*orderbookv1.Order {
	orders := make([]*orderbookv1.Order, 0, n)

	crossing := n / 2
	for i := 0; i < crossing; i++ {
		g.mu.Lock()
		side := g.randomSide()
		quantity := g.randomQuantity()
		overshoot := g.randomQuantity() % 500

		var price uint64
		if side == orderbookv1.Buy {
			price = g.cfg.BasePrice + g.cfg.PriceRange + overshoot
		} else {
			floor := g.cfg.BasePrice - g.cfg.PriceRange
			if floor > overshoot {
				price = floor - overshoot
			} else {
				price = 1
			}
		}
		g.mu.Unlock()

		orders = append(orders, orderbookv1.NewOrder(g.nextID.Add(1), side, price, quantity, time.Now()))
	}

	orders = append(orders, g.GenerateBatch(n-crossing)...)
	return orders
}

// randomPrice picks a price uniformly within [base-range, base+range].
// Callers hold g.mu.
func (g *Generator) randomPrice() uint64 {
	low := uint64(1)
	if g.cfg.BasePrice > g.cfg.PriceRange {
		low = g.cfg.BasePrice - g.cfg.PriceRange
	}
	high := g.cfg.BasePrice + g.cfg.PriceRange
	return low + uint64(g.rng.Int63n(int64(high-low+1)))
}

// randomQuantity picks a quantity uniformly within [min, max]. Callers hold
// g.mu.
func (g *Generator) randomQuantity() uint64 {
	span := g.cfg.MaxQuantity - g.cfg.MinQuantity
	if span == 0 {
		return g.cfg.MinQuantity
	}
	return g.cfg.MinQuantity + uint64(g.rng.Int63n(int64(span+1)))
}

// randomSide flips a fair coin. Callers hold g.mu.
func (g *Generator) randomSide() orderbookv1.Side {
	if g.rng.Intn(2) == 0 {
		return orderbookv1.Buy
	}
	return orderbookv1.Sell
}
