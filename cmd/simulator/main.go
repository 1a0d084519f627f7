// Command simulator drives the matching engine with synthetic order flow.
// It runs a multithreaded simulation by default, plus benchmark and
// aggressive-flow modes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Aditya-k24/book-order-simulator/internal/app/engine"
	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
	"github.com/Aditya-k24/book-order-simulator/internal/usecase/executor"
	"github.com/Aditya-k24/book-order-simulator/internal/usecase/latency"
	"github.com/Aditya-k24/book-order-simulator/internal/usecase/simulation"
	"github.com/Aditya-k24/book-order-simulator/internal/usecase/stream"
	"github.com/Aditya-k24/book-order-simulator/internal/usecase/tradepublisher"
	"github.com/Aditya-k24/book-order-simulator/pkg/config"
	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

const submitOperation = "order_submission"

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	config.MustLoad(cfg)

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	benchmark := fs.Bool("benchmark", false, "run benchmark tests")
	aggressive := fs.Bool("aggressive", false, "run aggressive order simulation")
	fs.IntVar(&cfg.Orders, "orders", cfg.Orders, "number of orders")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "number of worker threads")
	fs.StringVar(&cfg.Symbol, "symbol", cfg.Symbol, "trading symbol")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "batch size for thread-pool processing")
	noCSV := fs.Bool("no-csv", false, "disable CSV trade logging")
	noPerf := fs.Bool("no-perf", false, "disable latency monitoring")
	fs.StringVar(&cfg.CSVFile, "csv-file", cfg.CSVFile, "CSV trade log path")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "serve market data on this address (empty = off)")
	seed := fs.Int64("seed", time.Now().UnixNano(), "seed for the order generator")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if *noCSV {
		cfg.EnableCSV = false
	}
	if *noPerf {
		cfg.EnablePerf = false
	}

	fmt.Println("==========================================")
	fmt.Println("  Low-Latency Order Book Simulator")
	fmt.Println("  High-Frequency Trading Infrastructure")
	fmt.Println("==========================================")

	switch {
	case *benchmark:
		runBenchmark(*seed)
	case *aggressive:
		runAggressiveSimulation(*seed)
	default:
		runMultiThreadedSimulation(*seed)
	}

	_ = log.Sync()
	fmt.Println("\nSimulation completed successfully!")
}

func newGenerator(seed int64) *simulation.Generator {
	return simulation.NewGenerator(simulation.GeneratorConfig{
		BasePrice:   cfg.BasePrice,
		PriceRange:  cfg.PriceRange,
		MinQuantity: cfg.MinQuantity,
		MaxQuantity: cfg.MaxQuantity,
	}, seed)
}

// setupEngine builds the engine with the configured sinks and returns it with
// a teardown function.
func setupEngine(csvFile string) (*engine.Engine, func()) {
	eng := engine.NewEngine(cfg.Symbol, log)

	var teardown []func()

	if cfg.EnableCSV {
		if err := eng.EnableCSVLogging(csvFile); err != nil {
			log.Error(err, logger.Field{Key: "operation", Value: "enable_csv"})
		} else {
			teardown = append(teardown, func() { _ = eng.DisableCSVLogging() })
		}
	}

	if cfg.KafkaConfig.PublisherEnabled() {
		publisher := tradepublisher.NewPublisher(cfg.KafkaConfig, cfg.Symbol, log)
		eng.SetTradeCallback(func(trade orderbookv1.Trade) {
			_ = publisher.PublishTrade(context.Background(), trade)
		})
		teardown = append(teardown, func() { _ = publisher.Close() })
	}

	if cfg.ListenAddr != "" {
		server := stream.NewServer(cfg.ListenAddr, cfg.Symbol, eng.Book(), log)
		server.Start()
		if !cfg.KafkaConfig.PublisherEnabled() {
			eng.SetTradeCallback(server.BroadcastTrade)
		}
		teardown = append(teardown, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		})
	}

	return eng, func() {
		for i := len(teardown) - 1; i >= 0; i-- {
			teardown[i]()
		}
	}
}

func runBenchmark(seed int64) {
	fmt.Println("\n=== Running Benchmark Tests ===")

	monitor := latency.NewMonitor(cfg.EnablePerf, log)
	eng, teardown := setupEngine("benchmark_trades.csv")
	defer teardown()

	generator := newGenerator(seed)

	fmt.Printf("Generating %d orders...\n", cfg.Orders)
	orders := generator.GenerateBatch(cfg.Orders)

	fmt.Println("Processing orders...")
	start := time.Now()

	processed := 0
	for _, order := range orders {
		stop := monitor.Time(submitOperation, order.ID)
		ok := eng.SubmitOrder(order)
		stop()
		if ok {
			processed++
		}
	}

	elapsed := time.Since(start)

	fmt.Println("\nBenchmark Results:")
	fmt.Printf("Orders Processed: %d\n", processed)
	fmt.Printf("Total Time: %d microseconds\n", elapsed.Microseconds())
	fmt.Printf("Throughput: %.0f orders/second\n", float64(processed)/elapsed.Seconds())

	reportLatency(monitor, "benchmark_latency.csv")
	fmt.Println(eng.MarketStats())
}

func runMultiThreadedSimulation(seed int64) {
	fmt.Println("\n=== Multi-Threaded Simulation ===")
	fmt.Printf("Orders: %d\n", cfg.Orders)
	fmt.Printf("Threads: %d\n", cfg.Threads)
	fmt.Printf("Symbol: %s\n", cfg.Symbol)

	monitor := latency.NewMonitor(cfg.EnablePerf, log)
	eng, teardown := setupEngine(cfg.CSVFile)
	defer teardown()

	pool := executor.NewPool(cfg.Threads, cfg.Threads*4, log)
	generator := newGenerator(seed)

	fmt.Println("Generating orders...")
	orders := generator.GenerateBatch(cfg.Orders)

	fmt.Println("Processing orders with thread pool...")
	start := time.Now()

	for begin := 0; begin < len(orders); begin += cfg.BatchSize {
		end := min(begin+cfg.BatchSize, len(orders))
		batch := orders[begin:end]

		if err := pool.Submit(func() {
			for _, order := range batch {
				stop := monitor.Time(submitOperation, order.ID)
				eng.SubmitOrder(order)
				stop()
			}
		}); err != nil {
			log.Error(err, logger.Field{Key: "operation", Value: "submit_batch"})
		}
	}

	pool.Stop()
	elapsed := time.Since(start)
	processed := pool.Completed() * uint64(cfg.BatchSize)
	if processed > uint64(len(orders)) {
		processed = uint64(len(orders))
	}

	fmt.Println("\nSimulation Results:")
	fmt.Printf("Orders Processed: %d\n", processed)
	fmt.Printf("Total Time: %d microseconds\n", elapsed.Microseconds())
	fmt.Printf("Throughput: %.0f orders/second\n", float64(processed)/elapsed.Seconds())

	reportLatency(monitor, "simulation_latency.csv")
	fmt.Println(eng.MarketStats())
	fmt.Println(pool.Stats())
}

func runAggressiveSimulation(seed int64) {
	fmt.Println("\n=== Aggressive Order Simulation ===")

	monitor := latency.NewMonitor(cfg.EnablePerf, log)
	eng, teardown := setupEngine("aggressive_trades.csv")
	defer teardown()

	generator := newGenerator(seed)

	fmt.Println("Generating aggressive orders for maximum matching...")
	orders := generator.GenerateAggressive(cfg.Orders)

	fmt.Printf("Processing %d orders...\n", len(orders))
	start := time.Now()

	processed := 0
	for _, order := range orders {
		stop := monitor.Time(submitOperation, order.ID)
		ok := eng.SubmitOrder(order)
		stop()
		if ok {
			processed++
		}
	}

	elapsed := time.Since(start)

	fmt.Println("\nAggressive Simulation Results:")
	fmt.Printf("Orders Processed: %d\n", processed)
	fmt.Printf("Trades Executed: %d\n", eng.TradeCount())
	fmt.Printf("Total Volume: %d\n", eng.TotalVolume())
	if processed > 0 {
		fmt.Printf("Fill Rate: %.1f%%\n", float64(eng.TradeCount()*2)/float64(processed)*100)
	}
	fmt.Printf("Total Time: %d microseconds\n", elapsed.Microseconds())
	fmt.Printf("Throughput: %.0f orders/second\n", float64(processed)/elapsed.Seconds())

	reportLatency(monitor, "aggressive_latency.csv")
	fmt.Println(eng.MarketStats())

	fmt.Println("\nFinal Order Book State:")
	fmt.Println(eng.OrderBookSnapshot(10))
}

func reportLatency(monitor *latency.Monitor, exportPath string) {
	if !monitor.Enabled() {
		return
	}

	stats := monitor.StatsFor(submitOperation)
	fmt.Printf("\nLatency (%s): %s\n", submitOperation, stats)
	monitor.LogStats()

	if err := monitor.ExportCSV(exportPath); err != nil {
		log.Error(err, logger.Field{Key: "operation", Value: "export_latency"})
	}
}
