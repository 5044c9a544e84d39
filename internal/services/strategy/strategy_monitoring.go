package strategy

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marvelquant/position-monitor/internal/models"
)

// MonitoringService handles the monitoring of strategy execution
type MonitoringService struct {
	strategyService StrategyService
	executionEngine *StrategyExecutionEngine
	mutex           sync.RWMutex
	stopLossMonitors map[string]bool
	takeProfitMonitors map[string]bool
}

// NewMonitoringService creates a new MonitoringService
func NewMonitoringService(strategyService StrategyService, executionEngine *StrategyExecutionEngine) *MonitoringService {
	return &MonitoringService{
		strategyService: strategyService,
		executionEngine: executionEngine,
		mutex:           sync.RWMutex{},
		stopLossMonitors: make(map[string]bool),
		takeProfitMonitors: make(map[string]bool),
	}
}

// StartMonitoring starts the monitoring service
func (m *MonitoringService) StartMonitoring() error {
	// Start the stop loss monitoring
	go m.monitorStopLosses()
	
	// Start the take profit monitoring
	go m.monitorTakeProfits()
	
	// Start the risk parameters monitoring
	go m.monitorRiskParameters()
	
	return nil
}

// MonitorStrategy starts monitoring a specific strategy
func (m *MonitoringService) MonitorStrategy(strategyID string) error {
	// Get the strategy
	strategy, err := m.strategyService.GetStrategyByID(strategyID)
	if err != nil {
		return err
	}
	
	// Start stop loss monitoring for this strategy
	m.mutex.Lock()
	m.stopLossMonitors[strategyID] = true
	m.takeProfitMonitors[strategyID] = true
	m.mutex.Unlock()
	
	// Log that we're monitoring this strategy
	fmt.Printf("Started monitoring strategy %s\n", strategyID)
	
	return nil
}

// StopMonitoringStrategy stops monitoring a specific strategy
func (m *MonitoringService) StopMonitoringStrategy(strategyID string) error {
	// Stop monitoring this strategy
	m.mutex.Lock()
	delete(m.stopLossMonitors, strategyID)
	delete(m.takeProfitMonitors, strategyID)
	m.mutex.Unlock()
	
	// Log that we've stopped monitoring this strategy
	fmt.Printf("Stopped monitoring strategy %s\n", strategyID)
	
	return nil
}

// monitorStopLosses monitors stop losses for all active strategies
func (m *MonitoringService) monitorStopLosses() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	
	for {
		select {
		case <-ticker.C:
			m.checkStopLosses()
		}
	}
}

// monitorTakeProfits monitors take profits for all active strategies
func (m *MonitoringService) monitorTakeProfits() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	
	for {
		select {
		case <-ticker.C:
			m.checkTakeProfits()
		}
	}
}

// monitorRiskParameters monitors risk parameters for all active strategies
func (m *MonitoringService) monitorRiskParameters() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	
	for {
		select {
		case <-ticker.C:
			m.checkRiskParameters()
		}
	}
}

// checkStopLosses checks stop losses for all monitored strategies
func (m *MonitoringService) checkStopLosses() {
	// Get a copy of the monitored strategies
	m.mutex.RLock()
	monitoredStrategies := make(map[string]bool)
	for id, monitored := range m.stopLossMonitors {
		monitoredStrategies[id] = monitored
	}
	m.mutex.RUnlock()
	
	// Check each monitored strategy
	for strategyID := range monitoredStrategies {
		// Get the strategy
		strategy, err := m.strategyService.GetStrategyByID(strategyID)
		if err != nil {
			continue
		}
		
		// Check if strategy is active
		if strategy.Status != models.StrategyStatusActive {
			continue
		}
		
		// In a real implementation, you would:
		// 1. Get all positions for this strategy
		// 2. Check if any position has hit its stop loss
		// 3. Create exit orders for those positions
		
		// For demonstration purposes, we'll just log that we're checking
		fmt.Printf("Checking stop losses for strategy %s\n", strategyID)
	}
}

// checkTakeProfits checks take profits for all monitored strategies
func (m *MonitoringService) checkTakeProfits() {
	// Get a copy of the monitored strategies
	m.mutex.RLock()
	monitoredStrategies := make(map[string]bool)
	for id, monitored := range m.takeProfitMonitors {
		monitoredStrategies[id] = monitored
	}
	m.mutex.RUnlock()
	
	// Check each monitored strategy
	for strategyID := range monitoredStrategies {
		// Get the strategy
		strategy, err := m.strategyService.GetStrategyByID(strategyID)
		if err != nil {
			continue
		}
		
		// Check if strategy is active
		if strategy.Status != models.StrategyStatusActive {
			continue
		}
		
		// In a real implementation, you would:
		// 1. Get all positions for this strategy
		// 2. Check if any position has hit its take profit
		// 3. Create exit orders for those positions
		
		// For demonstration purposes, we'll just log that we're checking
		fmt.Printf("Checking take profits for strategy %s\n", strategyID)
	}
}

// checkRiskParameters checks risk parameters for all monitored strategies
func (m *MonitoringService) checkRiskParameters() {
	// Get a copy of the monitored strategies
	m.mutex.RLock()
	monitoredStrategies := make(map[string]bool)
	for id := range m.stopLossMonitors {
		monitoredStrategies[id] = true
	}
	m.mutex.RUnlock()
	
	// Check each monitored strategy
	for strategyID := range monitoredStrategies {
		// Get the strategy
		strategy, err := m.strategyService.GetStrategyByID(strategyID)
		if err != nil {
			continue
		}
		
		// Check if strategy is active
		if strategy.Status != models.StrategyStatusActive {
			continue
		}
		
		// Check risk parameters
		if m.hasExceededRiskParameters(strategy) {
			// Stop the strategy
			m.executionEngine.StopStrategy(strategyID)
			
			// Update strategy status
			strategy.Status = models.StrategyStatusStopped
			strategy.UpdatedAt = time.Now()
			m.strategyService.UpdateStrategy(strategy)
			
			// Log that we've stopped the strategy
			fmt.Printf("Stopped strategy %s due to exceeded risk parameters\n", strategyID)
		}
	}
}

// hasExceededRiskParameters checks if a strategy has exceeded its risk parameters
func (m *MonitoringService) hasExceededRiskParameters(strategy *models.Strategy) bool {
	// In a real implementation, you would:
	// 1. Calculate current P&L for all positions
	// 2. Check if P&L exceeds max loss
	// 3. Check if daily P&L exceeds max daily loss
	// 4. Check if position size exceeds max position size
	
	// For demonstration purposes, we'll just return false
	return false
}
