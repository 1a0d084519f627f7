// Package tradepublisher forwards executed trades to a Kafka topic.
package tradepublisher

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
	"github.com/Aditya-k24/book-order-simulator/pkg/config"
	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

// Publisher represents a Kafka publisher for executed trades.
type Publisher struct {
	kafkaWriter *kafka.Writer
	symbol      string
	logger      *logger.Logger
}

// tradeEvent is the wire shape of one published trade.
type tradeEvent struct {
	Symbol string            `json:"symbol"`
	Trade  orderbookv1.Trade `json:"trade"`
}

// NewPublisher creates a new Kafka publisher for trade events.
func NewPublisher(cfg config.KafkaConfig, symbol string, log *logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		symbol:      symbol,
		logger:      log,
	}
}

// PublishTrade publishes one executed trade to the trade topic.
func (p *Publisher) PublishTrade(ctx context.Context, trade orderbookv1.Trade) error {
	payload, err := json.Marshal(tradeEvent{
		Symbol: p.symbol,
		Trade:  trade,
	})
	if err != nil {
		p.logger.Error(err,
			logger.Field{Key: "operation", Value: "marshal_trade"},
			logger.Field{Key: "trade", Value: trade.String()},
		)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(p.symbol),
		Value: payload,
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "operation", Value: "publish_trade"},
			logger.Field{Key: "trade", Value: trade.String()},
		)
		return err
	}
	return nil
}

// Close properly closes the Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
