package core

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Strategy represents a trading strategy
type Strategy struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description"`
	IsActive              bool      `json:"is_active"`
	MaxProfitValue        float64   `json:"max_profit_value"`
	MaxProfitType         string    `json:"max_profit_type"`
	TargetAction          string    `json:"target_action"`
	TargetMonitoring      string    `json:"target_monitoring"`
	MaxLossValue          float64   `json:"max_loss_value"`
	MaxLossType           string    `json:"max_loss_type"`
	SLAction              string    `json:"sl_action"`
	SLMonitoring          string    `json:"sl_monitoring"`
	ProfitLockingEnabled  bool      `json:"profit_locking_enabled"`
	ProfitLockingThreshold float64   `json:"profit_locking_threshold"`
	ProfitLockingValue    float64   `json:"profit_locking_value"`
	ProfitTrailingEnabled bool      `json:"profit_trailing_enabled"`
	ProfitTrailingStep    float64   `json:"profit_trailing_step"`
	ProfitTrailingValue   float64   `json:"profit_trailing_value"`
	SLTrailingEnabled     bool      `json:"sl_trailing_enabled"`
	SLTrailingStep        float64   `json:"sl_trailing_step"`
	SLTrailingValue       float64   `json:"sl_trailing_value"`
	SchedulingEnabled     bool      `json:"scheduling_enabled"`
	SchedulingType        string    `json:"scheduling_type"`
	SchedulingConfig      map[string]interface{} `json:"scheduling_config"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// StrategyService handles strategy operations
type StrategyService struct {
	portfolioService *PortfolioService
}

// NewStrategyService creates a new strategy service
func NewStrategyService(portfolioService *PortfolioService) *StrategyService {
	return &StrategyService{
		portfolioService: portfolioService,
	}
}

// CreateStrategy creates a new strategy
func (s *StrategyService) CreateStrategy(ctx context.Context, strategy Strategy) (*Strategy, error) {
	// This would typically involve:
	// 1. Validating the strategy data
	// 2. Storing the strategy in the database

	// For this implementation, we'll return a placeholder
	log.Printf("Creating strategy %s", strategy.Name)

	// Generate a placeholder ID
	strategy.ID = fmt.Sprintf("strategy-%d", time.Now().UnixNano())
	strategy.CreatedAt = time.Now()
	strategy.UpdatedAt = time.Now()

	return &strategy, nil
}

// UpdateStrategy updates an existing strategy
func (s *StrategyService) UpdateStrategy(ctx context.Context, strategy Strategy) (*Strategy, error) {
	// This would typically involve:
	// 1. Validating the strategy data
	// 2. Updating the strategy in the database

	// For this implementation, we'll return a placeholder
	log.Printf("Updating strategy %s", strategy.ID)

	strategy.UpdatedAt = time.Now()

	return &strategy, nil
}

// GetStrategy gets a strategy by ID
func (s *StrategyService) GetStrategy(ctx context.Context, strategyID string) (*Strategy, error) {
	// This would typically involve:
	// 1. Retrieving the strategy from the database

	// For this implementation, we'll return a placeholder
	log.Printf("Getting strategy %s", strategyID)

	return &Strategy{
		ID:          strategyID,
		Name:        "Placeholder Strategy",
		Description: "This is a placeholder strategy",
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Time{},
	}, nil
}

// DeleteStrategy deletes a strategy
func (s *StrategyService) DeleteStrategy(ctx context.Context, strategyID string) error {
	// This would typically involve:
	// 1. Deleting the strategy from the database

	// For this implementation, we'll return a placeholder
	log.Printf("Deleting strategy %s", strategyID)

	return nil
}

// GetPortfoliosForStrategy gets all portfolios for a strategy
func (s *StrategyService) GetPortfoliosForStrategy(ctx context.Context, strategyID string) ([]Portfolio, error) {
	// This would typically involve:
	// 1. Retrieving all portfolios for the strategy from the database

	// For this implementation, we'll return a placeholder
	log.Printf("Getting portfolios for strategy %s", strategyID)

	return []Portfolio{
		{
			ID:        "placeholder-portfolio-id",
			StrategyID: strategyID,
			Name:      "Placeholder Portfolio",
			CreatedAt: time.Now(),
			UpdatedAt: time.Time{},
		},
	}, nil
}

// ExecuteStrategy executes a strategy across all its portfolios
func (s *StrategyService) ExecuteStrategy(ctx context.Context, strategyID string, userID string) (map[string]*ExecutionResponse, error) {
	// This would typically involve:
	// 1. Retrieving the strategy from the database
	// 2. Retrieving all portfolios for the strategy
	// 3. Executing each portfolio

	// For this implementation, we'll return a placeholder
	log.Printf("Executing strategy %s", strategyID)

	// Get portfolios for strategy (placeholder)
	portfolios, err := s.GetPortfoliosForStrategy(ctx, strategyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolios for strategy: %w", err)
	}

	// Execute each portfolio
	responses := make(map[string]*ExecutionResponse)
	for _, portfolio := range portfolios {
		response, err := s.portfolioService.ExecutePortfolio(ctx, portfolio.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to execute portfolio %s: %w", portfolio.ID, err)
		}
		responses[portfolio.ID] = response
	}

	return responses, nil
}

// RiskManager handles risk management
type RiskManager struct {
	portfolioService *PortfolioService
}

// NewRiskManager creates a new risk manager
func NewRiskManager(portfolioService *PortfolioService) *RiskManager {
	return &RiskManager{
		portfolioService: portfolioService,
	}
}

// StartRiskMonitoring starts monitoring risk for all active portfolios
func (m *RiskManager) StartRiskMonitoring(ctx context.Context) error {
	// This would typically involve:
	// 1. Retrieving all active portfolios from the database
	// 2. Starting a goroutine for each portfolio to monitor risk
	// 3. Implementing risk management actions

	// For this implementation, we'll return a placeholder
	log.Printf("Starting risk monitoring")

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Printf("Risk monitoring tick")
				// This would typically involve checking all active portfolios for risk breaches
			}
		}
	}()

	return nil
}

// CheckPortfolioRisk checks risk for a single portfolio
func (m *RiskManager) CheckPortfolioRisk(ctx context.Context, portfolioID string) (bool, error) {
	// This would typically involve:
	// 1. Retrieving the portfolio and its positions
	// 2. Calculating current P&L
	// 3. Checking against risk thresholds
	// 4. Taking action if thresholds are breached

	// For this implementation, we'll return a placeholder
	log.Printf("Checking risk for portfolio %s", portfolioID)

	// Placeholder: no risk breach
	return false, nil
}

// ApplyRiskAction applies a risk management action to a portfolio
func (m *RiskManager) ApplyRiskAction(ctx context.Context, portfolioID string, action string) error {
	// This would typically involve:
	// 1. Retrieving the portfolio
	// 2. Applying the specified risk action (e.g., square off, hedge)

	// For this implementation, we'll return a placeholder
	log.Printf("Applying risk action %s to portfolio %s", action, portfolioID)

	switch action {
	case "SQUARE_OFF":
		_, err := m.portfolioService.SquareOffPortfolio(ctx, portfolioID, "system")
		if err != nil {
			return fmt.Errorf("failed to square off portfolio: %w", err)
		}
	case "HEDGE":
		// Placeholder for hedging logic
		log.Printf("Applying hedge to portfolio %s", portfolioID)
	default:
		return fmt.Errorf("unknown risk action: %s", action)
	}

	return nil
}
