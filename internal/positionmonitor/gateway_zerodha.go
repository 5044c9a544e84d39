package positionmonitor

import (
	"context"
	"fmt"
	"time"

	"github.com/marvelquant/position-monitor/internal/broker/common"
)

// ZerodhaGateway adapts a common.BrokerClient (constructed via
// broker/factory.NewBrokerClient with BrokerTypeZerodha) into an
// OrderGateway for one execution.
type ZerodhaGateway struct {
	client      common.BrokerClient
	clientID    string
	direction   Direction
	underlying  string
	expiry      time.Time
	instruments InstrumentRegistry
}

func NewZerodhaGateway(client common.BrokerClient, clientID string, direction Direction, underlying string, expiry time.Time, instruments InstrumentRegistry) *ZerodhaGateway {
	return &ZerodhaGateway{client: client, clientID: clientID, direction: direction, underlying: underlying, expiry: expiry, instruments: instruments}
}

// exitSide returns the order side that closes a position opened in the
// gateway's configured direction: LONG positions are closed by selling,
// SHORT positions by buying back.
func (g *ZerodhaGateway) exitSide() string {
	if g.direction == DirectionShort {
		return "BUY"
	}
	return "SELL"
}

func (g *ZerodhaGateway) PlaceExitOrders(ctx context.Context, executionID string, legs []*Leg, reason string) error {
	for _, leg := range legs {
		order := &common.Order{
			TradingSymbol:         leg.Symbol,
			OrderSide:             g.exitSide(),
			OrderType:             "MARKET",
			ProductType:           "MIS",
			Variety:               "regular",
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

func (g *ZerodhaGateway) PlaceReplacementOrder(ctx context.Context, side LegTypeTag, targetPremium float64) (ReplacementFill, error) {
	if g.instruments == nil {
		return ReplacementFill{}, fmt.Errorf("position-monitor: no instrument registry configured for replacement resolution")
	}

	strike := targetPremium
	symbol, token, err := g.instruments.Resolve(g.underlying, g.expiry, strike, side)
	if err != nil {
		return ReplacementFill{}, fmt.Errorf("position-monitor: instrument resolution failed: %w", err)
	}

	order := &common.Order{
		TradingSymbol: symbol,
		OrderSide:     g.exitSide(),
		OrderType:     "MARKET",
		ProductType:   "MIS",
		Variety:       "regular",
		OrderQuantity: 1,
		ClientID:      g.clientID,
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
