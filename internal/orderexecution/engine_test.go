package orderexecution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBroker is the minimal BrokerAdapter double needed to exercise the
// engine's execute-then-notify path without a real broker connection.
type fakeBroker struct {
	placed *OrderResponse
}

func (b *fakeBroker) PlaceOrder(ctx context.Context, request *OrderRequest) (*OrderResponse, error) {
	return b.placed, nil
}

func (b *fakeBroker) ModifyOrder(ctx context.Context, orderID string, request *OrderRequest) (*OrderResponse, error) {
	return b.placed, nil
}

func (b *fakeBroker) CancelOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	return b.placed, nil
}

func (b *fakeBroker) GetOrderStatus(ctx context.Context, orderID string) (*Order, error) {
	return b.placed.Order, nil
}

func (b *fakeBroker) GetOrders(ctx context.Context) ([]*Order, error) {
	return []*Order{b.placed.Order}, nil
}

// TestEngineNotifiesRegisteredCallbackOnFill exercises the exact path
// cmd/server/main.go relies on to start a PositionMonitor: a smart-routed
// order execution that completes as Executed must reach every registered
// OrderUpdateCallback.
func TestEngineNotifiesRegisteredCallbackOnFill(t *testing.T) {
	router := NewDefaultSmartRouter(BestPrice)
	broker := &fakeBroker{placed: &OrderResponse{
		Status: true,
		Order: &Order{
			ID:            "O1",
			Symbol:        "NIFTY26AUG24000CE",
			Status:        Executed,
			StrategyID:    "strat-1",
			ParentOrderID: "parent-1",
			BrokerOrderID: "BRK1",
		},
	}}
	router.RegisterBroker("zerodha", broker)

	engine := NewOrderExecutionEngine(router)

	received := make(chan *Order, 1)
	engine.RegisterCallback(func(order *Order) {
		received <- order
	})

	_, err := engine.ExecuteOrder(context.Background(), &OrderRequest{Symbol: "NIFTY26AUG24000CE"})
	require.NoError(t, err)

	order := <-received
	assert.Equal(t, Executed, order.Status)
	assert.Equal(t, "strat-1", order.StrategyID)
}

func TestSmartRouterRoutesByBestPrice(t *testing.T) {
	router := NewDefaultSmartRouter(BestPrice)
	broker := &fakeBroker{}
	router.RegisterBroker("zerodha", broker)

	routed, err := router.RouteOrder(context.Background(), &OrderRequest{Symbol: "NIFTY26AUG24000CE"})
	require.NoError(t, err)
	assert.Same(t, broker, routed)
}

func TestSmartRouterErrorsWithNoBrokers(t *testing.T) {
	router := NewDefaultSmartRouter(BestPrice)
	_, err := router.RouteOrder(context.Background(), &OrderRequest{Symbol: "NIFTY26AUG24000CE"})
	assert.Error(t, err)
}
