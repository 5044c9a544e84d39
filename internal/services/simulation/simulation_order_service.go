package services

import (
	"errors"
	"time"
	"github.com/google/uuid"
	"github.com/marvelquant/position-monitor/internal/models"
)

// SimulationOrderService handles operations related to simulation orders
type SimulationOrderService struct {
	// Dependencies would be injected here in a real implementation
	// For example: database connection, virtual balance service, etc.
}

// NewSimulationOrderService creates a new instance of SimulationOrderService
func NewSimulationOrderService() *SimulationOrderService {
	return &SimulationOrderService{}
}

// CreateOrder creates a new simulation order
func (s *SimulationOrderService) CreateOrder(accountID string, orderData models.SimulationOrder) (*models.SimulationOrder, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	
	// Validate order data
	if orderData.Symbol == "" {
		return nil, errors.New("symbol is required")
	}
	
	if orderData.Quantity <= 0 {
		return nil, errors.New("quantity must be greater than zero")
	}
	
	if orderData.Side != "BUY" && orderData.Side != "SELL" {
		return nil, errors.New("side must be either BUY or SELL")
	}
	
	if orderData.OrderType == "" {
		return nil, errors.New("order type is required")
	}
	
	// Create new order
	order := models.SimulationOrder{
		Order: models.Order{
			ID:           uuid.New().String(),
			UserID:       orderData.UserID,
			Symbol:       orderData.Symbol,
			Quantity:     orderData.Quantity,
			Side:         orderData.Side,
			OrderType:    orderData.OrderType,
			Price:        orderData.Price,
			StopPrice:    orderData.StopPrice,
			Status:       "PENDING",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
			ExpiryDate:   orderData.ExpiryDate,
			FilledQty:    0,
			AvgFillPrice: 0,
			ProductType:  orderData.ProductType,
			Validity:     orderData.Validity,
			Environment:  "SIM", // Always SIM for simulation orders
		},
		SimulationAccountID: accountID,
		SimulatedFillPrice:  0,
		SimulatedFillTime:   time.Time{},
		SlippageAmount:      0,
		LatencyMs:           0,
		CommissionAmount:    0,
		IsBacktestOrder:     orderData.IsBacktestOrder,
		BacktestDate:        orderData.BacktestDate,
	}
	
	// In a real implementation, we would save the order to the database here
	
	// Process the order (in a real implementation, this would be done asynchronously)
	err := s.processOrder(&order)
	if err != nil {
		return nil, err
	}
	
	return &order, nil
}

// GetOrder retrieves a simulation order by ID
func (s *SimulationOrderService) GetOrder(orderID string) (*models.SimulationOrder, error) {
	if orderID == "" {
		return nil, errors.New("order ID is required")
	}
	
	// In a real implementation, we would retrieve the order from the database
	
	// For now, return a mock order
	return &models.SimulationOrder{
		Order: models.Order{
			ID:           orderID,
			UserID:       "user123",
			Symbol:       "AAPL",
			Quantity:     100,
			Side:         "BUY",
			OrderType:    "MARKET",
			Price:        0,
			StopPrice:    0,
			Status:       "FILLED",
			CreatedAt:    time.Now().Add(-1 * time.Hour),
			UpdatedAt:    time.Now().Add(-30 * time.Minute),
			ExpiryDate:   time.Now().Add(24 * time.Hour),
			FilledQty:    100,
			AvgFillPrice: 150.25,
			ProductType:  "MIS",
			Validity:     "DAY",
			Environment:  "SIM",
		},
		SimulationAccountID: "sim1",
		SimulatedFillPrice:  150.25,
		SimulatedFillTime:   time.Now().Add(-30 * time.Minute),
		SlippageAmount:      0.15,
		LatencyMs:           100,
		CommissionAmount:    15.03,
		IsBacktestOrder:     false,
		BacktestDate:        nil,
	}, nil
}

// GetOrdersByAccount retrieves all simulation orders for an account
func (s *SimulationOrderService) GetOrdersByAccount(accountID string) ([]models.SimulationOrder, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	
	// In a real implementation, we would retrieve the orders from the database
	
	// For now, return mock orders
	return []models.SimulationOrder{
		{
			Order: models.Order{
				ID:           "order1",
				UserID:       "user123",
				Symbol:       "AAPL",
				Quantity:     100,
				Side:         "BUY",
				OrderType:    "MARKET",
				Price:        0,
				StopPrice:    0,
				Status:       "FILLED",
				CreatedAt:    time.Now().Add(-1 * time.Hour),
				UpdatedAt:    time.Now().Add(-30 * time.Minute),
				ExpiryDate:   time.Now().Add(24 * time.Hour),
				FilledQty:    100,
				AvgFillPrice: 150.25,
				ProductType:  "MIS",
				Validity:     "DAY",
				Environment:  "SIM",
			},
			SimulationAccountID: accountID,
			SimulatedFillPrice:  150.25,
			SimulatedFillTime:   time.Now().Add(-30 * time.Minute),
			SlippageAmount:      0.15,
			LatencyMs:           100,
			CommissionAmount:    15.03,
			IsBacktestOrder:     false,
			BacktestDate:        nil,
		},
		{
			Order: models.Order{
				ID:           "order2",
				UserID:       "user123",
				Symbol:       "MSFT",
				Quantity:     50,
				Side:         "SELL",
				OrderType:    "LIMIT",
				Price:        280.50,
				StopPrice:    0,
				Status:       "PENDING",
				CreatedAt:    time.Now().Add(-30 * time.Minute),
				UpdatedAt:    time.Now().Add(-30 * time.Minute),
				ExpiryDate:   time.Now().Add(24 * time.Hour),
				FilledQty:    0,
				AvgFillPrice: 0,
				ProductType:  "MIS",
				Validity:     "DAY",
				Environment:  "SIM",
			},
			SimulationAccountID: accountID,
			SimulatedFillPrice:  0,
			SimulatedFillTime:   time.Time{},
			SlippageAmount:      0,
			LatencyMs:           0,
			CommissionAmount:    0,
			IsBacktestOrder:     false,
			BacktestDate:        nil,
		},
	}, nil
}

// CancelOrder cancels a simulation order
func (s *SimulationOrderService) CancelOrder(orderID string) (*models.SimulationOrder, error) {
	if orderID == "" {
		return nil, errors.New("order ID is required")
	}
	
	// In a real implementation, we would:
	// 1. Retrieve the order from the database
	// 2. Check if the order can be cancelled
	// 3. Update the order status to CANCELLED
	// 4. Save the order to the database
	
	// For now, return a mock cancelled order
	return &models.SimulationOrder{
		Order: models.Order{
			ID:           orderID,
			UserID:       "user123",
			Symbol:       "MSFT",
			Quantity:     50,
			Side:         "SELL",
			OrderType:    "LIMIT",
			Price:        280.50,
			StopPrice:    0,
			Status:       "CANCELLED",
			CreatedAt:    time.Now().Add(-30 * time.Minute),
			UpdatedAt:    time.Now(),
			ExpiryDate:   time.Now().Add(24 * time.Hour),
			FilledQty:    0,
			AvgFillPrice: 0,
			ProductType:  "MIS",
			Validity:     "DAY",
			Environment:  "SIM",
		},
		SimulationAccountID: "sim1",
		SimulatedFillPrice:  0,
		SimulatedFillTime:   time.Time{},
		SlippageAmount:      0,
		LatencyMs:           0,
		CommissionAmount:    0,
		IsBacktestOrder:     false,
		BacktestDate:        nil,
	}, nil
}

// ModifyOrder modifies a simulation order
func (s *SimulationOrderService) ModifyOrder(orderID string, orderData models.SimulationOrder) (*models.SimulationOrder, error) {
	if orderID == "" {
		return nil, errors.New("order ID is required")
	}
	
	// In a real implementation, we would:
	// 1. Retrieve the order from the database
	// 2. Check if the order can be modified
	// 3. Update the order with the new data
	// 4. Save the order to the database
	
	// For now, return a mock modified order
	return &models.SimulationOrder{
		Order: models.Order{
			ID:           orderID,
			UserID:       "user123",
			Symbol:       "MSFT",
			Quantity:     orderData.Quantity,
			Side:         "SELL",
			OrderType:    "LIMIT",
			Price:        orderData.Price,
			StopPrice:    orderData.StopPrice,
			Status:       "PENDING",
			CreatedAt:    time.Now().Add(-30 * time.Minute),
			UpdatedAt:    time.Now(),
			ExpiryDate:   orderData.ExpiryDate,
			FilledQty:    0,
			AvgFillPrice: 0,
			ProductType:  orderData.ProductType,
			Validity:     orderData.Validity,
			Environment:  "SIM",
		},
		SimulationAccountID: "sim1",
		SimulatedFillPrice:  0,
		SimulatedFillTime:   time.Time{},
		SlippageAmount:      0,
		LatencyMs:           0,
		CommissionAmount:    0,
		IsBacktestOrder:     orderData.IsBacktestOrder,
		BacktestDate:        orderData.BacktestDate,
	}, nil
}

// processOrder processes a simulation order (simulates execution)
func (s *SimulationOrderService) processOrder(order *models.SimulationOrder) error {
	// In a real implementation, this would be much more complex and would
	// interact with the market simulation engine
	
	// For now, just simulate a simple market order execution
	if order.OrderType == "MARKET" {
		// Simulate market price
		var marketPrice float64
		if order.Symbol == "AAPL" {
			marketPrice = 150.25
		} else if order.Symbol == "MSFT" {
			marketPrice = 280.50
		} else if order.Symbol == "GOOGL" {
			marketPrice = 2100.75
		} else {
			marketPrice = 100.00
		}
		
		// Simulate slippage
		slippagePercentage := 0.001 // 0.1%
		slippageAmount := marketPrice * slippagePercentage
		if order.Side == "BUY" {
			marketPrice += slippageAmount
		} else {
			marketPrice -= slippageAmount
		}
		
		// Simulate latency
		latencyMs := 100
		
		// Simulate commission
		commissionPercentage := 0.001 // 0.1%
		commissionAmount := marketPrice * float64(order.Quantity) * commissionPercentage
		
		// Update order
		order.Status = "FILLED"
		order.FilledQty = order.Quantity
		order.AvgFillPrice = marketPrice
		order.UpdatedAt = time.Now()
		order.SimulatedFillPrice = marketPrice
		order.SimulatedFillTime = time.Now()
		order.SlippageAmount = slippageAmount
		order.LatencyMs = latencyMs
		order.CommissionAmount = commissionAmount
		
		// In a real implementation, we would:
		// 1. Update the order in the database
		// 2. Create a position or update an existing position
		// 3. Update the account balance
		// 4. Create a transaction record
	} else if order.OrderType == "LIMIT" {
		// For limit orders, we would check if the current market price
		// satisfies the limit price condition
		
		// For now, just leave the order in PENDING status
		// In a real implementation, this would be handled by a separate
		// process that continuously checks pending orders against market prices
	} else if order.OrderType == "STOP" || order.OrderType == "STOP_LIMIT" {
		// For stop orders, we would check if the current market price
		// has reached the stop price
		
		// For now, just leave the order in PENDING status
		// In a real implementation, this would be handled by a separate
		// process that continuously checks pending orders against market prices
	}
	
	return nil
}

// GetOrderHistory retrieves the order history for a simulation account
func (s *SimulationOrderService) GetOrderHistory(accountID string, startDate, endDate time.Time, symbol string) ([]models.SimulationOrder, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	
	// In a real implementation, we would retrieve the orders from the database
	// filtered by date range and symbol
	
	// For now, return mock orders
	return []models.SimulationOrder{
		{
			Order: models.Order{
				ID:           "order1",
				UserID:       "user123",
				Symbol:       "AAPL",
				Quantity:     100,
				Side:         "BUY",
				OrderType:    "MARKET",
				Price:        0,
				StopPrice:    0,
				Status:       "FILLED",
				CreatedAt:    time.Now().Add(-24 * time.Hour),
				UpdatedAt:    time.Now().Add(-24 * time.Hour),
				ExpiryDate:   time.Now().Add(24 * time.Hour),
				FilledQty:    100,
				AvgFillPrice: 148.50,
				ProductType:  "MIS",
				Validity:     "DAY",
				Environment:  "SIM",
			},
			SimulationAccountID: accountID,
			SimulatedFillPrice:  148.50,
			SimulatedFillTime:   time.Now().Add(-24 * time.Hour),
			SlippageAmount:      0.15,
			LatencyMs:           100,
			CommissionAmount:    14.85,
			IsBacktestOrder:     false,
			BacktestDate:        nil,
		},
		{
			Order: models.Order{
				ID:           "order2",
				UserID:       "user123",
				Symbol:       "AAPL",
				Quantity:     100,
				Side:         "SELL",
				OrderType:    "LIMIT",
				Price:        152.00,
				StopPrice:    0,
				Status:       "FILLED",
				CreatedAt:    time.Now().Add(-12 * time.Hour),
				UpdatedAt:    time.Now().Add(-12 * time.Hour),
				ExpiryDate:   time.Now().Add(24 * time.Hour),
				FilledQty:    100,
				AvgFillPrice: 152.00,
				ProductType:  "MIS",
				Validity:     "DAY",
				Environment:  "SIM",
			},
			SimulationAccountID: accountID,
			SimulatedFillPrice:  152.00,
			SimulatedFillTime:   time.Now().Add(-12 * time.Hour),
			SlippageAmount:      0.15,
			LatencyMs:           100,
			CommissionAmount:    15.20,
			IsBacktestOrder:     false,
			BacktestDate:        nil,
		},
	}, nil
}

// GetOrderStatistics retrieves statistics for orders in a simulation account
func (s *SimulationOrderService) GetOrderStatistics(accountID string, startDate, endDate time.Time) (map[string]interface{}, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	
	// In a real implementation, we would calculate statistics based on
	// orders in the database
	
	// For now, return mock statistics
	return map[string]interface{}{
		"totalOrders":        20,
		"filledOrders":       15,
		"cancelledOrders":    3,
		"rejectedOrders":     2,
		"buyOrders":          12,
		"sellOrders":         8,
		"marketOrders":       10,
		"limitOrders":        8,
		"stopOrders":         2,
		"averageLatencyMs":   105,
		"averageSlippage":    0.12,
		"totalCommission":    250.75,
		"averageCommission":  12.54,
		"mostTradedSymbols":  []string{"AAPL", "MSFT", "GOOGL"},
		"averageFillTime":    "00:00:00.105",
		"orderFillRate":      0.75,
		"averageOrderSize":   75,
		"largestOrderSize":   200,
		"smallestOrderSize":  10,
	}, nil
}
