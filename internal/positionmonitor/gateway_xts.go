package positionmonitor

import (
	"context"
	"fmt"
	"time"

	"github.com/marvelquant/position-monitor/internal/broker/common"
)

// XTSGateway adapts a common.BrokerClient built for either XTS variant
// (constructed via broker/factory.NewBrokerClient with BrokerTypeXTSClient
// or BrokerTypeXTSPro) into an OrderGateway for one execution. The XTS order
// model uses ExchangeInstrumentID rather than Zerodha's TradingSymbol.
type XTSGateway struct {
	client      common.BrokerClient
	clientID    string
	direction   Direction
	underlying  string
	expiry      time.Time
	instruments InstrumentRegistry
}

func NewXTSGateway(client common.BrokerClient, clientID string, direction Direction, underlying string, expiry time.Time, instruments InstrumentRegistry) *XTSGateway {
	return &XTSGateway{client: client, clientID: clientID, direction: direction, underlying: underlying, expiry: expiry, instruments: instruments}
}

func (g *XTSGateway) exitSide() string {
	if g.direction == DirectionShort {
		return "BUY"
	}
	return "SELL"
}

func (g *XTSGateway) PlaceExitOrders(ctx context.Context, executionID string, legs []*Leg, reason string) error {
	for _, leg := range legs {
		order := &common.Order{
			ExchangeSegment:       "NSEFO",
			ExchangeInstrumentID:  fmt.Sprintf("%d", leg.InstrumentToken),
			OrderSide:             g.exitSide(),
			OrderType:             "MARKET",
			ProductType:           "MIS",
			TimeInForce:           "DAY",
			OrderQuantity:         leg.Quantity,
			ClientID:              g.clientID,
			OrderUniqueIdentifier: fmt.Sprintf("%s-exit-%s", executionID, leg.Symbol),
		}
		if _, err := g.client.PlaceOrder(order); err != nil {
			return fmt.Errorf("position-monitor: exit order for %s failed: %w", leg.Symbol, err)
		}
	}
	return nil
}

func (g *XTSGateway) PlaceReplacementOrder(ctx context.Context, side LegTypeTag, targetPremium float64) (ReplacementFill, error) {
	if g.instruments == nil {
		return ReplacementFill{}, fmt.Errorf("position-monitor: no instrument registry configured for replacement resolution")
	}

	symbol, token, err := g.instruments.Resolve(g.underlying, g.expiry, targetPremium, side)
	if err != nil {
		return ReplacementFill{}, fmt.Errorf("position-monitor: instrument resolution failed: %w", err)
	}

	order := &common.Order{
		ExchangeSegment:      "NSEFO",
		ExchangeInstrumentID: fmt.Sprintf("%d", token),
		OrderSide:            g.exitSide(),
		OrderType:            "MARKET",
		ProductType:          "MIS",
		TimeInForce:          "DAY",
		OrderQuantity:        1,
		ClientID:             g.clientID,
	}
	resp, err := g.client.PlaceOrder(order)
	if err != nil {
		return ReplacementFill{}, fmt.Errorf("position-monitor: replacement order failed: %w", err)
	}

	quotes, err := g.client.GetQuote([]string{symbol})
	fillPrice := targetPremium
	if err == nil {
		if q, ok := quotes[symbol]; ok {
			fillPrice = q.LastPrice
		}
	}

	return ReplacementFill{OrderID: resp.OrderID, Symbol: symbol, Token: token, FillPrice: fillPrice}, nil
}
