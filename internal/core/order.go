package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/marvelquant/position-monitor/internal/broker"
)

// OrderService handles order operations
type OrderService struct {
	brokerFactory *broker.BrokerFactory
}

// NewOrderService creates a new order service
func NewOrderService(brokerFactory *broker.BrokerFactory) *OrderService {
	return &OrderService{
		brokerFactory: brokerFactory,
	}
}

// OrderRequest represents a request to place an order
type OrderRequest struct {
	UserID          string                 `json:"user_id"`
	BrokerName      string                 `json:"broker_name"`
	Symbol          string                 `json:"symbol"`
	Exchange        string                 `json:"exchange"`
	OrderType       broker.OrderType       `json:"order_type"`
	TransactionType broker.TransactionType `json:"transaction_type"`
	ProductType     broker.ProductType     `json:"product_type"`
	Quantity        int                    `json:"quantity"`
	Price           float64                `json:"price,omitempty"`
	TriggerPrice    float64                `json:"trigger_price,omitempty"`
	PortfolioID     string                 `json:"portfolio_id,omitempty"`
	StrategyID      string                 `json:"strategy_id,omitempty"`
	LegID           int                    `json:"leg_id,omitempty"`
}

// OrderResponse represents a response from placing an order
type OrderResponse struct {
	Success      bool   `json:"success"`
	OrderID      string `json:"order_id,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// PlaceOrder places an order
func (s *OrderService) PlaceOrder(ctx context.Context, request OrderRequest) (*OrderResponse, error) {
	// Get the broker
	brokerInstance, err := s.brokerFactory.GetBroker(request.BrokerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get broker: %w", err)
	}

	// Create broker order request
	brokerRequest := broker.OrderRequest{
		Symbol:          request.Symbol,
		Exchange:        request.Exchange,
		OrderType:       request.OrderType,
		TransactionType: request.TransactionType,
		ProductType:     request.ProductType,
		Quantity:        request.Quantity,
		Price:           request.Price,
		TriggerPrice:    request.TriggerPrice,
	}

	// Place the order
	brokerResponse, err := brokerInstance.PlaceOrder(ctx, brokerRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	// Return the response
	return &OrderResponse{
		Success:      brokerResponse.Success,
		OrderID:      brokerResponse.OrderID,
		ErrorMessage: brokerResponse.ErrorMessage,
	}, nil
}

// ModifyOrder modifies an existing order
func (s *OrderService) ModifyOrder(ctx context.Context, orderID string, request OrderRequest) (*OrderResponse, error) {
	// Get the broker
	brokerInstance, err := s.brokerFactory.GetBroker(request.BrokerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get broker: %w", err)
	}

	// Create broker order request
	brokerRequest := broker.OrderRequest{
		Symbol:          request.Symbol,
		Exchange:        request.Exchange,
		OrderType:       request.OrderType,
		TransactionType: request.TransactionType,
		ProductType:     request.ProductType,
		Quantity:        request.Quantity,
		Price:           request.Price,
		TriggerPrice:    request.TriggerPrice,
	}

	// Modify the order
	brokerResponse, err := brokerInstance.ModifyOrder(ctx, orderID, brokerRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to modify order: %w", err)
	}

	// Return the response
	return &OrderResponse{
		Success:      brokerResponse.Success,
		OrderID:      brokerResponse.OrderID,
		ErrorMessage: brokerResponse.ErrorMessage,
	}, nil
}

// CancelOrder cancels an order
func (s *OrderService) CancelOrder(ctx context.Context, orderID string, brokerName string) (*OrderResponse, error) {
	// Get the broker
	brokerInstance, err := s.brokerFactory.GetBroker(brokerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get broker: %w", err)
	}

	// Cancel the order
	brokerResponse, err := brokerInstance.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	// Return the response
	return &OrderResponse{
		Success:      brokerResponse.Success,
		OrderID:      brokerResponse.OrderID,
		ErrorMessage: brokerResponse.ErrorMessage,
	}, nil
}

// GetOrder gets an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID string, brokerName string) (*broker.Order, error) {
	// Get the broker
	brokerInstance, err := s.brokerFactory.GetBroker(brokerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get broker: %w", err)
	}

	// Get the order
	order, err := brokerInstance.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetOrders gets all orders for a broker
func (s *OrderService) GetOrders(ctx context.Context, brokerName string) ([]broker.Order, error) {
	// Get the broker
	brokerInstance, err := s.brokerFactory.GetBroker(brokerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get broker: %w", err)
	}

	// Get the orders
	orders, err := brokerInstance.GetOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	return orders, nil
}

// ExecutionEngine handles order execution
type ExecutionEngine struct {
	orderService *OrderService
}

// NewExecutionEngine creates a new execution engine
func NewExecutionEngine(orderService *OrderService) *ExecutionEngine {
	return &ExecutionEngine{
		orderService: orderService,
	}
}

// ExecutionRequest represents a request to execute a strategy
type ExecutionRequest struct {
	UserID      string `json:"user_id"`
	PortfolioID string `json:"portfolio_id"`
	StrategyID  string `json:"strategy_id"`
}

// ExecutionResponse represents a response from executing a strategy
type ExecutionResponse struct {
	Success      bool     `json:"success"`
	OrderIDs     []string `json:"order_ids,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// ExecuteStrategy executes a strategy
func (e *ExecutionEngine) ExecuteStrategy(ctx context.Context, request ExecutionRequest) (*ExecutionResponse, error) {
	// This would typically involve:
	// 1. Retrieving the strategy and portfolio from the database
	// 2. Calculating the orders to place based on the strategy
	// 3. Placing the orders using the OrderService
	// 4. Tracking the execution status
	// 5. Implementing risk checks

	// For this implementation, we'll return a placeholder
	log.Printf("Executing strategy %s for portfolio %s", request.StrategyID, request.PortfolioID)

	return &ExecutionResponse{
		Success:  true,
		OrderIDs: []string{"placeholder-order-id"},
	}, nil
}

// MonitorExecution monitors the execution of a strategy
func (e *ExecutionEngine) MonitorExecution(ctx context.Context, portfolioID string) error {
	// This would typically involve:
	// 1. Retrieving the portfolio and its orders from the database
	// 2. Checking the status of each order
	// 3. Updating the portfolio status
	// 4. Implementing risk management

	// For this implementation, we'll return a placeholder
	log.Printf("Monitoring execution for portfolio %s", portfolioID)

	return nil
}

// StartExecutionMonitoring starts monitoring execution for all active portfolios
func (e *ExecutionEngine) StartExecutionMonitoring(ctx context.Context) error {
	// This would typically involve:
	// 1. Retrieving all active portfolios from the database
	// 2. Starting a goroutine for each portfolio to monitor execution
	// 3. Implementing circuit breakers and safety mechanisms

	// For this implementation, we'll return a placeholder
	log.Printf("Starting execution monitoring")

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Printf("Execution monitoring tick")
				// This would typically involve checking all active portfolios
			}
		}
	}()

	return nil
}
