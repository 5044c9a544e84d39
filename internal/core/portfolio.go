package core

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Portfolio represents a trading portfolio
type Portfolio struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	StrategyID         string    `json:"strategy_id"`
	Name               string    `json:"name"`
	Symbol             string    `json:"symbol"`
	Exchange           string    `json:"exchange"`
	Expiry             string    `json:"expiry"`
	DefaultLots        int       `json:"default_lots"`
	IsActive           bool      `json:"is_active"`
	IsPositional       bool      `json:"is_positional"`
	BuyTradesFirst     bool      `json:"buy_trades_first"`
	AllowFarStrikes    bool      `json:"allow_far_strikes"`
	UseImpliedFutures  bool      `json:"use_implied_futures"`
	Product            string    `json:"product"`
	LegFailureAction   string    `json:"leg_failure_action"`
	LegsExecution      string    `json:"legs_execution"`
	MaxLots            int       `json:"max_lots"`
	PremiumGap         float64   `json:"premium_gap"`
	RunOnDays          string    `json:"run_on_days"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	SQOffTime          string    `json:"sq_off_time"`
	ExecutionMode      string    `json:"execution_mode"`
	EntryOrderType     string    `json:"entry_order_type"`
	RangeBreakout      bool      `json:"range_breakout_enabled"`
	RangeEndTime       string    `json:"range_end_time"`
	HighBuffer         float64   `json:"high_buffer"`
	LowBuffer          float64   `json:"low_buffer"`
	UseOppositeSideForSL bool    `json:"use_opposite_side_for_sl"`
	RangeBuffer        float64   `json:"range_buffer"`
	DynamicHedge       bool      `json:"dynamic_hedge_enabled"`
	HedgeType          string    `json:"hedge_type"`
	HedgeInterval      int       `json:"hedge_interval"`
	HedgeThreshold     float64   `json:"hedge_threshold"`
	MaxProfitValue     float64   `json:"max_profit_value"`
	MaxProfitType      string    `json:"max_profit_type"`
	MaxLossValue       float64   `json:"max_loss_value"`
	MaxLossType        string    `json:"max_loss_type"`
	MonitoringFrequency int      `json:"monitoring_frequency"`
	MonitoringType     string    `json:"monitoring_type"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Legs               []PortfolioLeg `json:"legs"`
}

// PortfolioLeg represents a leg in a portfolio
type PortfolioLeg struct {
	ID                  string    `json:"id"`
	PortfolioID         string    `json:"portfolio_id"`
	LegID               int       `json:"leg_id"`
	BuySell             string    `json:"buy_sell"`
	OptionType          string    `json:"option_type"`
	Strike              string    `json:"strike"`
	Lots                int       `json:"lots"`
	Expiry              string    `json:"expiry"`
	IsIdle              bool      `json:"is_idle"`
	LTP                 float64   `json:"ltp"`
	HedgeRequired       bool      `json:"hedge_required"`
	WaitAndTrade        string    `json:"wait_and_trade"`
	TargetType          string    `json:"target_type"`
	TargetValue         float64   `json:"target_value"`
	TrailTarget         bool      `json:"trail_target"`
	TrailTargetValue    float64   `json:"trail_target_value"`
	SLType              string    `json:"sl_type"`
	SLValue             float64   `json:"sl_value"`
	TrailSL             bool      `json:"trail_sl"`
	TrailSLValue        float64   `json:"trail_sl_value"`
	OnTargetAction      string    `json:"on_target_action"`
	OnStoplossAction    string    `json:"on_stoploss_action"`
	OnStartAction       string    `json:"on_start_action"`
	StartTime           string    `json:"start_time"`
	SpreadLimit         float64   `json:"spread_limit"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// PortfolioService handles portfolio operations
type PortfolioService struct {
	executionEngine *ExecutionEngine
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(executionEngine *ExecutionEngine) *PortfolioService {
	return &PortfolioService{
		executionEngine: executionEngine,
	}
}

// CreatePortfolio creates a new portfolio
func (s *PortfolioService) CreatePortfolio(ctx context.Context, portfolio Portfolio) (*Portfolio, error) {
	// This would typically involve:
	// 1. Validating the portfolio data
	// 2. Storing the portfolio in the database
	// 3. Creating the portfolio legs

	// For this implementation, we'll return a placeholder
	log.Printf("Creating portfolio %s", portfolio.Name)

	// Generate a placeholder ID
	portfolio.ID = fmt.Sprintf("portfolio-%d", time.Now().UnixNano())
	portfolio.CreatedAt = time.Now()
	portfolio.UpdatedAt = time.Now()

	// Generate placeholder IDs for legs
	for i := range portfolio.Legs {
		portfolio.Legs[i].ID = fmt.Sprintf("leg-%d", time.Now().UnixNano()+int64(i))
		portfolio.Legs[i].PortfolioID = portfolio.ID
		portfolio.Legs[i].CreatedAt = time.Now()
		portfolio.Legs[i].UpdatedAt = time.Now()
	}

	return &portfolio, nil
}

// UpdatePortfolio updates an existing portfolio
func (s *PortfolioService) UpdatePortfolio(ctx context.Context, portfolio Portfolio) (*Portfolio, error) {
	// This would typically involve:
	// 1. Validating the portfolio data
	// 2. Updating the portfolio in the database
	// 3. Updating the portfolio legs

	// For this implementation, we'll return a placeholder
	log.Printf("Updating portfolio %s", portfolio.ID)

	portfolio.UpdatedAt = time.Now()

	// Update legs
	for i := range portfolio.Legs {
		portfolio.Legs[i].UpdatedAt = time.Now()
	}

	return &portfolio, nil
}

// GetPortfolio gets a portfolio by ID
func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID string) (*Portfolio, error) {
	// This would typically involve:
	// 1. Retrieving the portfolio from the database
	// 2. Retrieving the portfolio legs from the database

	// For this implementation, we'll return a placeholder
	log.Printf("Getting portfolio %s", portfolioID)

	return &Portfolio{
		ID:        portfolioID,
		Name:      "Placeholder Portfolio",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Legs: []PortfolioLeg{
			{
				ID:         "placeholder-leg-id",
				PortfolioID: portfolioID,
				LegID:      1,
				BuySell:    "BUY",
				OptionType: "CE",
				Strike:     "18000",
				Lots:       1,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			},
		},
	}, nil
}

// DeletePortfolio deletes a portfolio
func (s *PortfolioService) DeletePortfolio(ctx context.Context, portfolioID string) error {
	// This would typically involve:
	// 1. Deleting the portfolio legs from the database
	// 2. Deleting the portfolio from the database

	// For this implementation, we'll return a placeholder
	log.Printf("Deleting portfolio %s", portfolioID)

	return nil
}

// ExecutePortfolio executes a portfolio
func (s *PortfolioService) ExecutePortfolio(ctx context.Context, portfolioID string, userID string) (*ExecutionResponse, error) {
	// Execute the portfolio using the execution engine
	return s.executionEngine.ExecuteStrategy(ctx, ExecutionRequest{
		UserID:      userID,
		PortfolioID: portfolioID,
	})
}

// SquareOffPortfolio squares off a portfolio
func (s *PortfolioService) SquareOffPortfolio(ctx context.Context, portfolioID string, userID string) (*ExecutionResponse, error) {
	// This would typically involve:
	// 1. Retrieving the portfolio and its positions
	// 2. Creating square-off orders for all positions
	// 3. Executing the orders

	// For this implementation, we'll return a placeholder
	log.Printf("Squaring off portfolio %s", portfolioID)

	return &ExecutionResponse{
		Success:  true,
		OrderIDs: []string{"placeholder-square-off-order-id"},
	}, nil
}

// GetPortfolioPositions gets the positions for a portfolio
func (s *PortfolioService) GetPortfolioPositions(ctx context.Context, portfolioID string) ([]Position, error) {
	// This would typically involve:
	// 1. Retrieving the portfolio positions from the database
	// 2. Calculating the current P&L

	// For this implementation, we'll return a placeholder
	log.Printf("Getting positions for portfolio %s", portfolioID)

	return []Position{
		{
			PortfolioID:  portfolioID,
			Symbol:       "NIFTY",
			OptionType:   "CE",
			Strike:       "18000",
			Expiry:       "25APR2025",
			Quantity:     1,
			EntryPrice:   250.0,
			CurrentPrice: 275.0,
			PnL:          25.0,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		},
	}, nil
}

// Position represents a portfolio position
type Position struct {
	PortfolioID  string    `json:"portfolio_id"`
	Symbol       string    `json:"symbol"`
	OptionType   string    `json:"option_type"`
	Strike       string    `json:"strike"`
	Expiry       string    `json:"expiry"`
	Quantity     int       `json:"quantity"`
	EntryPrice   float64   `json:"entry_price"`
	CurrentPrice float64   `json:"current_price"`
	PnL          float64   `json:"pnl"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PortfolioManager manages portfolios
type PortfolioManager struct {
	portfolioService *PortfolioService
}

// NewPortfolioManager creates a new portfolio manager
func NewPortfolioManager(portfolioService *PortfolioService) *PortfolioManager {
	return &PortfolioManager{
		portfolioService: portfolioService,
	}
}

// StartPortfolioManagement starts managing all active portfolios
func (m *PortfolioManager) StartPortfolioManagement(ctx context.Context) error {
	// This would typically involve:
	// 1. Retrieving all active portfolios from the database
	// 2. Starting a goroutine for each portfolio to manage it
	// 3. Implementing risk management and monitoring

	// For this implementation, we'll return a placeholder
	log.Printf("Starting portfolio management")

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Printf("Portfolio management tick")
				// This would typically involve checking all active portfolios
			}
		}
	}()

	return nil
}

// ManagePortfolio manages a single portfolio
func (m *PortfolioManager) ManagePortfolio(ctx context.Context, portfolioID string) error {
	// This would typically involve:
	// 1. Retrieving the portfolio and its positions
	// 2. Checking if any risk management actions are needed
	// 3. Executing any necessary orders

	// For this implementation, we'll return a placeholder
	log.Printf("Managing portfolio %s", portfolioID)

	return nil
}
