package positionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/marvelquant/position-monitor/internal/marketdata"
)

// SymbolTokenResolver maps an instrument token to the tradeable symbol the
// market-data service subscribes by, and back. Production code backs this
// with the same InstrumentRegistry used for replacement-leg resolution.
type SymbolTokenResolver interface {
	SymbolForToken(token int64) (string, error)
	TokenForSymbol(symbol string) (int64, error)
}

// MarketDataTickSource adapts marketdata.MarketDataService's symbol-keyed,
// callback-based subscription API to the token-keyed, channel-based
// TickSource this package's dispatcher consumes.
type MarketDataTickSource struct {
	svc      *marketdata.MarketDataService
	resolver SymbolTokenResolver

	mu      sync.Mutex
	streams map[string]chan []Tick // userID -> channel
}

// NewMarketDataTickSource constructs a TickSource backed by an existing
// MarketDataService.
func NewMarketDataTickSource(svc *marketdata.MarketDataService, resolver SymbolTokenResolver) *MarketDataTickSource {
	return &MarketDataTickSource{
		svc:      svc,
		resolver: resolver,
		streams:  make(map[string]chan []Tick),
	}
}

// Subscribe resolves tokens to symbols and forwards each incoming
// marketdata.MarketData tick as a single-element []Tick batch on the
// returned channel.
func (s *MarketDataTickSource) Subscribe(userID string, tokens []int64) (<-chan []Tick, error) {
	symbols := make([]string, 0, len(tokens))
	for _, token := range tokens {
		symbol, err := s.resolver.SymbolForToken(token)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}

	ch := make(chan []Tick, 256)
	s.mu.Lock()
	s.streams[userID] = ch
	s.mu.Unlock()

	callback := func(data marketdata.MarketData) {
		token, err := s.resolver.TokenForSymbol(data.Symbol)
		if err != nil {
			return
		}
		tick := Tick{InstrumentToken: token, LastTradedPrice: data.LastPrice, ArrivalTime: time.Now()}
		select {
		case ch <- []Tick{tick}:
		default:
			// slow consumer: drop rather than block the market-data callback
		}
	}

	if err := s.svc.SubscribeToMarketData(context.Background(), symbols, callback); err != nil {
		s.mu.Lock()
		delete(s.streams, userID)
		s.mu.Unlock()
		close(ch)
		return nil, err
	}

	return ch, nil
}

// Unsubscribe tears down the underlying market-data subscription and closes
// the user's channel.
func (s *MarketDataTickSource) Unsubscribe(userID string, tokens []int64) error {
	symbols := make([]string, 0, len(tokens))
	for _, token := range tokens {
		symbol, err := s.resolver.SymbolForToken(token)
		if err != nil {
			continue
		}
		symbols = append(symbols, symbol)
	}

	if err := s.svc.UnsubscribeFromMarketData(context.Background(), symbols); err != nil {
		return err
	}

	s.mu.Lock()
	ch, ok := s.streams[userID]
	delete(s.streams, userID)
	s.mu.Unlock()
	if ok {
		close(ch)
	}
	return nil
}
