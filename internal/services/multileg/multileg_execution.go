package multileg

import (
	"errors"
	"time"

	"github.com/marvelquant/position-monitor/internal/models"
	"github.com/marvelquant/position-monitor/internal/services/order"
)

// ExecutionEngine handles the execution of multileg strategies
type ExecutionEngine struct {
	multilegService MultilegService
	orderService    order.OrderService
	activeStrategies map[string]bool
}

// NewExecutionEngine creates a new ExecutionEngine
func NewExecutionEngine(multilegService MultilegService, orderService order.OrderService) *ExecutionEngine {
	return &ExecutionEngine{
		multilegService: multilegService,
		orderService:    orderService,
		activeStrategies: make(map[string]bool),
	}
}

// ExecuteStrategy executes a multileg strategy
func (e *ExecutionEngine) ExecuteStrategy(strategyID string) error {
	// Check if strategy is already being executed
	if e.activeStrategies[strategyID] {
		return errors.New("strategy is already being executed")
	}
	
	// Get the strategy
	strategy, err := e.multilegService.GetMultilegStrategyByID(strategyID)
	if err != nil {
		return err
	}
	
	// Mark strategy as active
	e.activeStrategies[strategyID] = true
	
	// Execute the strategy in a goroutine
	go func() {
		defer func() {
			// Mark strategy as inactive when done
			delete(e.activeStrategies, strategyID)
		}()
		
		// Execute the strategy based on execution parameters
		if strategy.ExecutionParams.Sequential {
			e.executeSequentially(strategy)
		} else {
			e.executeSimultaneously(strategy)
		}
	}()
	
	return nil
}

// executeSequentially executes legs of a strategy in sequence
func (e *ExecutionEngine) executeSequentially(strategy *models.MultilegStrategy) {
	// Sort legs by sequence
	legs := sortLegsBySequence(strategy.Legs)
	
	// Execute each leg in sequence
	for _, leg := range legs {
		// Check if strategy is still active
		if !e.activeStrategies[strategy.ID] {
			return
		}
		
		// Execute the leg
		e.executeLeg(strategy, &leg)
		
		// Wait for leg to be executed
		// In a real implementation, this would involve waiting for order execution
		time.Sleep(1 * time.Second)
	}
}

// executeSimultaneously executes legs of a strategy simultaneously
func (e *ExecutionEngine) executeSimultaneously(strategy *models.MultilegStrategy) {
	// Execute all legs at once
	for i := range strategy.Legs {
		// Check if strategy is still active
		if !e.activeStrategies[strategy.ID] {
			return
		}
		
		// Execute the leg
		leg := strategy.Legs[i]
		go e.executeLeg(strategy, &leg)
	}
}

// executeLeg executes a single leg of a strategy
func (e *ExecutionEngine) executeLeg(strategy *models.MultilegStrategy, leg *models.Leg) {
	// Create an order for the leg
	order := &models.Order{
		UserID:      strategy.UserID,
		StrategyID:  strategy.ID,
		Symbol:      leg.Symbol,
		OrderType:   convertExecutionTypeToOrderType(leg.ExecutionType),
		Side:        convertLegTypeToOrderSide(leg.Type),
		Quantity:    leg.Quantity,
		Price:       leg.Price,
		Status:      models.OrderStatusNew,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	
	// Submit the order
	_, err := e.orderService.CreateOrder(order)
	if err != nil {
		// Handle error
		// In a real implementation, this would involve updating the leg status
		leg.Status = models.LegStatusFailed
	} else {
		// Update leg status
		leg.Status = models.LegStatusExecuted
		leg.OrderID = order.ID
		leg.ExecutionTime = time.Now()
		leg.ExecutedPrice = order.Price
	}
	
	// Update the strategy
	strategy.UpdatedAt = time.Now()
	e.multilegService.UpdateMultilegStrategy(strategy)
}

// RangeBreakoutMonitor monitors for range breakouts
type RangeBreakoutMonitor struct {
	multilegService MultilegService
	executionEngine *ExecutionEngine
	activeMonitors  map[string]bool
}

// NewRangeBreakoutMonitor creates a new RangeBreakoutMonitor
func NewRangeBreakoutMonitor(multilegService MultilegService, executionEngine *ExecutionEngine) *RangeBreakoutMonitor {
	return &RangeBreakoutMonitor{
		multilegService: multilegService,
		executionEngine: executionEngine,
		activeMonitors:  make(map[string]bool),
	}
}

// StartMonitoring starts monitoring for range breakouts
func (m *RangeBreakoutMonitor) StartMonitoring() {
	// Start a goroutine to monitor for range breakouts
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		
		for {
			select {
			case <-ticker.C:
				m.checkRangeBreakouts()
			}
		}
	}()
}

// MonitorStrategy starts monitoring a specific strategy for range breakouts
func (m *RangeBreakoutMonitor) MonitorStrategy(strategyID string) error {
	// Check if strategy exists
	strategy, err := m.multilegService.GetMultilegStrategyByID(strategyID)
	if err != nil {
		return err
	}
	
	// Check if range breakout is enabled
	if !strategy.ExecutionParams.RangeBreakout.Enabled {
		return errors.New("range breakout is not enabled for this strategy")
	}
	
	// Mark strategy as being monitored
	m.activeMonitors[strategyID] = true
	
	return nil
}

// StopMonitoringStrategy stops monitoring a specific strategy
func (m *RangeBreakoutMonitor) StopMonitoringStrategy(strategyID string) {
	delete(m.activeMonitors, strategyID)
}

// checkRangeBreakouts checks for range breakouts for all monitored strategies
func (m *RangeBreakoutMonitor) checkRangeBreakouts() {
	// Get a copy of the monitored strategies
	monitoredStrategies := make(map[string]bool)
	for id, active := range m.activeMonitors {
		monitoredStrategies[id] = active
	}
	
	// Check each monitored strategy
	for strategyID := range monitoredStrategies {
		// Get the strategy
		strategy, err := m.multilegService.GetMultilegStrategyByID(strategyID)
		if err != nil {
			continue
		}
		
		// Check if range breakout is enabled
		if !strategy.ExecutionParams.RangeBreakout.Enabled {
			continue
		}
		
		// Check for breakout
		// In a real implementation, this would involve checking market data
		// For now, we'll just simulate a breakout detection
		
		// If breakout detected, execute the strategy
		// m.executionEngine.ExecuteStrategy(strategyID)
	}
}

// DynamicHedgeService handles dynamic hedging for multileg strategies
type DynamicHedgeService struct {
	multilegService MultilegService
	orderService    order.OrderService
	activeHedges    map[string]bool
}

// NewDynamicHedgeService creates a new DynamicHedgeService
func NewDynamicHedgeService(multilegService MultilegService, orderService order.OrderService) *DynamicHedgeService {
	return &DynamicHedgeService{
		multilegService: multilegService,
		orderService:    orderService,
		activeHedges:    make(map[string]bool),
	}
}

// StartHedging starts the hedging service
func (h *DynamicHedgeService) StartHedging() {
	// Start a goroutine to monitor and adjust hedges
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		
		for {
			select {
			case <-ticker.C:
				h.adjustHedges()
			}
		}
	}()
}

// HedgeStrategy starts hedging a specific strategy
func (h *DynamicHedgeService) HedgeStrategy(strategyID string) error {
	// Check if strategy exists
	strategy, err := h.multilegService.GetMultilegStrategyByID(strategyID)
	if err != nil {
		return err
	}
	
	// Check if hedging is enabled
	if !strategy.HedgeParams.Enabled {
		return errors.New("hedging is not enabled for this strategy")
	}
	
	// Mark strategy as being hedged
	h.activeHedges[strategyID] = true
	
	// Create initial hedge
	h.createHedge(strategy)
	
	return nil
}

// StopHedgingStrategy stops hedging a specific strategy
func (h *DynamicHedgeService) StopHedgingStrategy(strategyID string) {
	delete(h.activeHedges, strategyID)
}

// adjustHedges adjusts hedges for all active strategies
func (h *DynamicHedgeService) adjustHedges() {
	// Get a copy of the active hedges
	activeHedges := make(map[string]bool)
	for id, active := range h.activeHedges {
		activeHedges[id] = active
	}
	
	// Adjust each active hedge
	for strategyID := range activeHedges {
		// Get the strategy
		strategy, err := h.multilegService.GetMultilegStrategyByID(strategyID)
		if err != nil {
			continue
		}
		
		// Check if hedging is enabled
		if !strategy.HedgeParams.Enabled {
			continue
		}
		
		// Adjust the hedge
		h.adjustHedge(strategy)
	}
}

// createHedge creates a hedge for a strategy
func (h *DynamicHedgeService) createHedge(strategy *models.MultilegStrategy) {
	// In a real implementation, this would involve calculating the appropriate hedge
	// and creating orders to establish the hedge
	
	// For now, we'll just simulate creating a hedge
}

// adjustHedge adjusts the hedge for a strategy
func (h *DynamicHedgeService) adjustHedge(strategy *models.MultilegStrategy) {
	// In a real implementation, this would involve calculating the appropriate adjustment
	// and creating orders to adjust the hedge
	
	// For now, we'll just simulate adjusting a hedge
}

// Helper functions

// sortLegsBySequence sorts legs by their sequence number
func sortLegsBySequence(legs []models.Leg) []models.Leg {
	// Simple bubble sort for demonstration
	result := make([]models.Leg, len(legs))
	copy(result, legs)
	
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[i].Sequence > result[j].Sequence {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	
	return result
}

// convertExecutionTypeToOrderType converts a leg execution type to an order type
func convertExecutionTypeToOrderType(executionType models.ExecutionType) models.OrderType {
	switch executionType {
	case models.ExecutionTypeMarket:
		return models.OrderTypeMarket
	case models.ExecutionTypeLimit:
		return models.OrderTypeLimit
	case models.ExecutionTypeStop:
		return models.OrderTypeStop
	case models.ExecutionTypeStopLimit:
		return models.OrderTypeStopLimit
	default:
		return models.OrderTypeMarket
	}
}

// convertLegTypeToOrderSide converts a leg type to an order side
func convertLegTypeToOrderSide(legType models.LegType) models.OrderSide {
	switch legType {
	case models.LegTypeBuy, models.LegTypeBuyToOpen, models.LegTypeBuyToClose:
		return models.OrderSideBuy
	case models.LegTypeSell, models.LegTypeSellToOpen, models.LegTypeSellToClose:
		return models.OrderSideSell
	default:
		return models.OrderSideBuy
	}
}
