// Package stream serves live market data over websockets: executed trades as
// they happen and book depth on request.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	orderbookv1 "github.com/Aditya-k24/book-order-simulator/internal/domain/orderbook/v1"
	"github.com/Aditya-k24/book-order-simulator/internal/usecase/orderbook"
	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

const (
	subscriptionBuffer = 256
	writeTimeout       = 5 * time.Second
	defaultDepthLevels = 10
)

// Server exposes the market-data endpoints:
//
//	GET /ws/trades  websocket stream of executed trades (JSON frames)
//	GET /depth      book depth snapshot, ?levels=N
type Server struct {
	symbol   string
	book     *orderbook.Orderbook
	hub      *Hub
	logger   *logger.Logger
	server   *http.Server
	upgrader websocket.Upgrader
}

// depthResponse is the wire shape of one depth snapshot.
type depthResponse struct {
	Symbol string                 `json:"symbol"`
	Bids   []orderbook.DepthLevel `json:"bids"`
	Asks   []orderbook.DepthLevel `json:"asks"`
}

// NewServer creates a market-data server bound to the given address.
func NewServer(addr, symbol string, book *orderbook.Orderbook, log *logger.Logger) *Server {
	s := &Server{
		symbol: symbol,
		book:   book,
		hub:    NewHub(),
		logger: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/trades", s.handleTrades)
	mux.HandleFunc("/depth", s.handleDepth)

	s.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

// BroadcastTrade pushes one executed trade to all connected clients. Wire it
// as the engine's trade callback.
func (s *Server) BroadcastTrade(trade orderbookv1.Trade) {
	payload, err := json.Marshal(trade)
	if err != nil {
		s.logger.Error(err, logger.Field{Key: "operation", Value: "marshal_trade"})
		return
	}
	s.hub.Broadcast(payload)
}

// Start serves until Shutdown is called.
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(err, logger.Field{Key: "operation", Value: "market_data_listen"})
		}
	}()
	s.logger.Info("market data server listening",
		logger.Field{Key: "addr", Value: s.server.Addr},
		logger.Field{Key: "symbol", Value: s.symbol},
	)
}

// Shutdown stops accepting connections and drains active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(err, logger.Field{Key: "operation", Value: "ws_upgrade"})
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(subscriptionBuffer)
	defer s.hub.Unsubscribe(sub)

	// Reader loop only to observe the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case message, ok := <-sub.C():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	levels := defaultDepthLevels
	if raw := r.URL.Query().Get("levels"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "levels must be a positive integer", http.StatusBadRequest)
			return
		}
		levels = parsed
	}

	bids, asks := s.book.Depth(levels)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(depthResponse{
		Symbol: s.symbol,
		Bids:   bids,
		Asks:   asks,
	}); err != nil {
		s.logger.Error(err, logger.Field{Key: "operation", Value: "encode_depth"})
	}
}
