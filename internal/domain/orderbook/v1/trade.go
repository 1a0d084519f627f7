package orderbookv1

import (
	"fmt"
	"time"
)

// csvTimeLayout formats trade timestamps for the CSV trade log.
const csvTimeLayout = "2006-01-02 15:04:05.000"

// Trade represents a completed trade between two orders. Trades are immutable
// value records: created on execution and never mutated.
type Trade struct {
	BuyOrderID  uint64    `json:"buyOrderID"`
	SellOrderID uint64    `json:"sellOrderID"`
	Price       uint64    `json:"price"`
	Quantity    uint64    `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"` // engine time of execution
}

// NewTrade creates a trade record for a fill between a buy and a sell order.
func NewTrade(buyOrderID, sellOrderID, price, quantity uint64, timestamp time.Time) Trade {
	return Trade{
		BuyOrderID:  buyOrderID,
		SellOrderID: sellOrderID,
		Price:       price,
		Quantity:    quantity,
		Timestamp:   timestamp,
	}
}

// Notional returns price multiplied by quantity.
func (t Trade) Notional() uint64 {
	return t.Price * t.Quantity
}

// CSVRow returns the trade as a CSV row matching the trade-log header
// `timestamp,buyOrderID,sellOrderID,price,quantity`. The row carries the
// trade's own execution timestamp, not the wall clock at write time.
func (t Trade) CSVRow() string {
	return fmt.Sprintf("%s,%d,%d,%d,%d",
		t.Timestamp.Format(csvTimeLayout), t.BuyOrderID, t.SellOrderID, t.Price, t.Quantity)
}

// String returns a formatted representation of the trade.
func (t Trade) String() string {
	return fmt.Sprintf("Trade{buy=%d sell=%d price=%d qty=%d}",
		t.BuyOrderID, t.SellOrderID, t.Price, t.Quantity)
}
