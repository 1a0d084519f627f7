package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // a missing .env file is not an error

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the simulator.
type Config struct {
	Symbol string `env:"SYMBOL" envDefault:"AAPL"` // Trading symbol, e.g. AAPL

	// Simulation sizing
	Orders    int `env:"ORDERS" envDefault:"100000"`
	Threads   int `env:"THREADS" envDefault:"4"`
	BatchSize int `env:"BATCH_SIZE" envDefault:"100"`

	// Order generation
	BasePrice   uint64 `env:"BASE_PRICE" envDefault:"10000"` // in ticks
	PriceRange  uint64 `env:"PRICE_RANGE" envDefault:"1000"` // +/- from base
	MinQuantity uint64 `env:"MIN_QUANTITY" envDefault:"1"`
	MaxQuantity uint64 `env:"MAX_QUANTITY" envDefault:"1000"`

	// Sinks and instrumentation
	EnableCSV  bool   `env:"ENABLE_CSV" envDefault:"true"`
	CSVFile    string `env:"CSV_FILE" envDefault:"simulation_trades.csv"`
	EnablePerf bool   `env:"ENABLE_PERF" envDefault:"true"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:""` // websocket market-data server, disabled when empty

	KafkaConfig `envPrefix:"KAFKA_"` // trade publisher, disabled when no brokers
}

// KafkaConfig holds the configuration for the Kafka trade publisher.
type KafkaConfig struct {
	Brokers []string `env:"BROKER"`
	Topic   string   `env:"TOPIC" envDefault:"trades"`
}

// PublisherEnabled reports whether a Kafka trade publisher should be wired.
func (c KafkaConfig) PublisherEnabled() bool {
	return len(c.Brokers) > 0
}
