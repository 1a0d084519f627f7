package engine

import (
	"testing"
	"time"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
)

// Benchmark test cases structure
type benchmarkTestCase struct {
	name      string
	setupData func(*Engine, *testing.B)
	operation func(*Engine, int)
}

func benchmarkOrder(i int) *orderbookv1.Order {
	side := orderbookv1.Buy
	price := uint64(9_950 + i%100)
	if i%2 == 0 {
		side = orderbookv1.Sell
		price = uint64(10_050 + i%100)
	}
	return orderbookv1.NewOrder(uint64(i+1), side, price, uint64(1+i%50), time.Now())
}

func BenchmarkEngine_SubmitOrder(b *testing.B) {
	testCases := []benchmarkTestCase{
		{
			name:      "resting_orders",
			setupData: func(e *Engine, b *testing.B) {},
			operation: func(e *Engine, i int) {
				e.SubmitOrder(benchmarkOrder(i))
			},
		},
		{
			name: "crossing_orders",
			setupData: func(e *Engine, b *testing.B) {
				for i := 0; i < 10_000; i++ {
					e.SubmitOrder(orderbookv1.NewOrder(uint64(1_000_000+i), orderbookv1.Sell,
						uint64(10_000+i%100), 10, time.Now()))
				}
			},
			operation: func(e *Engine, i int) {
				e.SubmitOrder(orderbookv1.NewOrder(uint64(i+1), orderbookv1.Buy,
					uint64(10_100), 10, time.Now()))
			},
		},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			e := newTestEngine(b)
			tc.setupData(e, b)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tc.operation(e, i)
			}
		})
	}
}

func BenchmarkOrderbook_Depth(b *testing.B) {
	e := newTestEngine(b)
	for i := 0; i < 10_000; i++ {
		e.SubmitOrder(benchmarkOrder(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Book().Depth(10)
	}
}
