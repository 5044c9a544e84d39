package services

import (
	"errors"
	"time"
	"github.com/google/uuid"
	"github.com/marvelquant/position-monitor/internal/models"
)

// BacktestService handles operations related to backtesting
type BacktestService struct {
	// Dependencies would be injected here in a real implementation
	// For example: database connection, market simulation service, etc.
	marketSimulationService *MarketSimulationService
	simulationOrderService  *SimulationOrderService
	virtualBalanceService   *VirtualBalanceService
}

// NewBacktestService creates a new instance of BacktestService
func NewBacktestService() *BacktestService {
	return &BacktestService{
		marketSimulationService: NewMarketSimulationService(),
		simulationOrderService:  NewSimulationOrderService(),
		virtualBalanceService:   NewVirtualBalanceService(),
	}
}

// CreateBacktestSession creates a new backtest session
func (s *BacktestService) CreateBacktestSession(accountID string, sessionData models.BacktestSession) (*models.BacktestSession, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	
	// Validate session data
	if sessionData.Name == "" {
		return nil, errors.New("session name is required")
	}
	
	if sessionData.StartDate.IsZero() || sessionData.EndDate.IsZero() {
		return nil, errors.New("start and end dates are required")
	}
	
	if sessionData.StartDate.After(sessionData.EndDate) {
		return nil, errors.New("start date must be before end date")
	}
	
	if len(sessionData.Symbols) == 0 {
		return nil, errors.New("at least one symbol is required")
	}
	
	if sessionData.Timeframe == "" {
		return nil, errors.New("timeframe is required")
	}
	
	if sessionData.InitialBalance <= 0 {
		return nil, errors.New("initial balance must be greater than zero")
	}
	
	// Create new session
	session := models.BacktestSession{
		ID:                 uuid.New().String(),
		SimulationAccountID: accountID,
		Name:               sessionData.Name,
		Description:        sessionData.Description,
		StartDate:          sessionData.StartDate,
		EndDate:            sessionData.EndDate,
		Symbols:            sessionData.Symbols,
		Timeframe:          sessionData.Timeframe,
		InitialBalance:     sessionData.InitialBalance,
		FinalBalance:       sessionData.InitialBalance, // Initially set to initial balance
		TotalTrades:        0,
		WinningTrades:      0,
		LosingTrades:       0,
		ProfitFactor:       0,
		SharpeRatio:        0,
		MaxDrawdown:        0,
		AnnualizedReturn:   0,
		CreatedAt:          time.Now(),
		CompletedAt:        nil,
		Status:             "PENDING",
		StrategyID:         sessionData.StrategyID,
		Parameters:         sessionData.Parameters,
	}
	
	// In a real implementation, we would save the session to the database here
	
	return &session, nil
}

// GetBacktestSession retrieves a backtest session by ID
func (s *BacktestService) GetBacktestSession(sessionID string) (*models.BacktestSession, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}
	
	// In a real implementation, we would retrieve the session from the database
	
	// For now, return a mock session
	return &models.BacktestSession{
		ID:                 sessionID,
		SimulationAccountID: "sim1",
		Name:               "Test Backtest Session",
		Description:        "Test session for backtesting",
		StartDate:          time.Now().Add(-30 * 24 * time.Hour),
		EndDate:            time.Now(),
		Symbols:            []string{"AAPL", "MSFT", "GOOGL"},
		Timeframe:          "1d",
		InitialBalance:     100000.0,
		FinalBalance:       115000.0,
		TotalTrades:        50,
		WinningTrades:      30,
		LosingTrades:       20,
		ProfitFactor:       2.5,
		SharpeRatio:        1.8,
		MaxDrawdown:        5000.0,
		AnnualizedReturn:   15.0,
		CreatedAt:          time.Now().Add(-31 * 24 * time.Hour),
		CompletedAt:        nil,
		Status:             "RUNNING",
		StrategyID:         "strategy1",
		Parameters:         map[string]interface{}{"param1": 10, "param2": "value"},
	}, nil
}

// GetBacktestSessionsByAccount retrieves all backtest sessions for an account
func (s *BacktestService) GetBacktestSessionsByAccount(accountID string) ([]models.BacktestSession, error) {
	if accountID == "" {
		return nil, errors.New("account ID is required")
	}
	
	// In a real implementation, we would retrieve the sessions from the database
	
	// For now, return mock sessions
	return []models.BacktestSession{
		{
			ID:                 "session1",
			SimulationAccountID: accountID,
			Name:               "Moving Average Crossover Backtest",
			Description:        "Testing MA crossover strategy",
			StartDate:          time.Now().Add(-60 * 24 * time.Hour),
			EndDate:            time.Now().Add(-30 * 24 * time.Hour),
			Symbols:            []string{"AAPL", "MSFT", "GOOGL"},
			Timeframe:          "1d",
			InitialBalance:     100000.0,
			FinalBalance:       112000.0,
			TotalTrades:        45,
			WinningTrades:      28,
			LosingTrades:       17,
			ProfitFactor:       2.2,
			SharpeRatio:        1.6,
			MaxDrawdown:        4500.0,
			AnnualizedReturn:   12.0,
			CreatedAt:          time.Now().Add(-61 * 24 * time.Hour),
			CompletedAt:        &[]time.Time{time.Now().Add(-29 * 24 * time.Hour)}[0],
			Status:             "COMPLETED",
			StrategyID:         "strategy1",
			Parameters:         map[string]interface{}{"shortMA": 10, "longMA": 50},
		},
		{
			ID:                 "session2",
			SimulationAccountID: accountID,
			Name:               "RSI Strategy Backtest",
			Description:        "Testing RSI-based strategy",
			StartDate:          time.Now().Add(-30 * 24 * time.Hour),
			EndDate:            time.Now(),
			Symbols:            []string{"AAPL", "MSFT", "GOOGL"},
			Timeframe:          "1d",
			InitialBalance:     100000.0,
			FinalBalance:       105000.0,
			TotalTrades:        30,
			WinningTrades:      18,
			LosingTrades:       12,
			ProfitFactor:       1.8,
			SharpeRatio:        1.4,
			MaxDrawdown:        3500.0,
			AnnualizedReturn:   5.0,
			CreatedAt:          time.Now().Add(-31 * 24 * time.Hour),
			CompletedAt:        nil,
			Status:             "RUNNING",
			StrategyID:         "strategy2",
			Parameters:         map[string]interface{}{"rsiPeriod": 14, "oversold": 30, "overbought": 70},
		},
	}, nil
}

// RunBacktest runs a backtest session
func (s *BacktestService) RunBacktest(sessionID string) error {
	if sessionID == "" {
		return errors.New("session ID is required")
	}
	
	// In a real implementation, we would:
	// 1. Retrieve the session from the database
	// 2. Update the session status to RUNNING
	// 3. Run the backtest asynchronously
	// 4. Update the session with results when complete
	
	// For now, just return success
	return nil
}

// StopBacktest stops a running backtest session
func (s *BacktestService) StopBacktest(sessionID string) error {
	if sessionID == "" {
		return errors.New("session ID is required")
	}
	
	// In a real implementation, we would:
	// 1. Retrieve the session from the database
	// 2. Check if the session is running
	// 3. Stop the backtest process
	// 4. Update the session status to STOPPED
	
	// For now, just return success
	return nil
}

// GetBacktestResults retrieves the results of a backtest session
func (s *BacktestService) GetBacktestResults(sessionID string) ([]models.BacktestResult, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}
	
	// In a real implementation, we would retrieve the results from the database
	
	// For now, return mock results
	var results []models.BacktestResult
	
	// Generate mock result points
	startDate := time.Now().Add(-30 * 24 * time.Hour)
	endDate := time.Now()
	currentDate := startDate
	initialEquity := 100000.0
	currentEquity := initialEquity
	maxEquity := initialEquity
	
	for currentDate.Before(endDate) {
		// Simulate equity curve
		dailyReturn := (float64(currentDate.Nanosecond()%200) / 1000.0) - 0.1 // Random between -0.1 and 0.1
		currentEquity *= (1.0 + dailyReturn)
		
		// Update max equity
		if currentEquity > maxEquity {
			maxEquity = currentEquity
		}
		
		// Calculate drawdown
		drawdown := (maxEquity - currentEquity) / maxEquity * 100.0
		if drawdown < 0 {
			drawdown = 0
		}
		
		// Create result point
		result := models.BacktestResult{
			ID:               uuid.New().String(),
			BacktestSessionID: sessionID,
			Timestamp:        currentDate,
			EquityCurve:      currentEquity,
			DrawdownCurve:    drawdown,
			OpenPositions:    currentDate.Day() % 5, // Random number of open positions
			CumulativePnL:    currentEquity - initialEquity,
			DailyPnL:         currentEquity * dailyReturn,
			MarketValue:      currentEquity * 0.8, // 80% of equity in positions
			CashBalance:      currentEquity * 0.2, // 20% of equity in cash
		}
		
		results = append(results, result)
		
		// Increment date
		currentDate = currentDate.Add(24 * time.Hour)
	}
	
	return results, nil
}

// GetBacktestPerformanceMetrics retrieves performance metrics for a backtest session
func (s *BacktestService) GetBacktestPerformanceMetrics(sessionID string) (map[string]interface{}, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}
	
	// In a real implementation, we would calculate metrics based on
	// backtest results in the database
	
	// For now, return mock metrics
	return map[string]interface{}{
		"totalReturn":        15.0,
		"annualizedReturn":   12.5,
		"sharpeRatio":        1.8,
		"sortinoRatio":       2.2,
		"maxDrawdown":        5.0,
		"maxDrawdownDuration": "15 days",
		"winRate":            0.65,
		"profitFactor":       2.5,
		"averageWin":         1200.0,
		"averageLoss":        -500.0,
		"largestWin":         3500.0,
		"largestLoss":        -1200.0,
		"averageHoldingPeriod": "3.5 days",
		"totalTrades":        50,
		"winningTrades":      32,
		"losingTrades":       18,
		"expectancy":         450.0,
		"calmarRatio":        2.5,
		"ulcerIndex":         1.2,
		"informationRatio":   1.5,
		"alphaAnnualized":    5.2,
		"betaVsMarket":       0.85,
	}, nil
}

// GetBacktestTrades retrieves all trades executed during a backtest session
func (s *BacktestService) GetBacktestTrades(sessionID string) ([]models.SimulationOrder, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}
	
	// In a real implementation, we would retrieve the trades from the database
	
	// For now, return mock trades
	var trades []models.SimulationOrder
	
	// Generate mock trades
	startDate := time.Now().Add(-30 * 24 * time.Hour)
	endDate := time.Now()
	currentDate := startDate
	
	symbols := []string{"AAPL", "MSFT", "GOOGL", "AMZN", "FB"}
	
	for currentDate.Before(endDate) {
		// Skip some days (not trading every day)
		if currentDate.Weekday() == time.Saturday || currentDate.Weekday() == time.Sunday {
			currentDate = currentDate.Add(24 * time.Hour)
			continue
		}
		
		// Determine if we make a trade this day (70% probability)
		if currentDate.Nanosecond()%100 < 70 {
			// Select random symbol
			symbolIndex := currentDate.Nanosecond() % len(symbols)
			symbol := symbols[symbolIndex]
			
			// Determine side (60% buy, 40% sell)
			side := "BUY"
			if currentDate.Nanosecond()%100 < 40 {
				side = "SELL"
			}
			
			// Determine order type (80% market, 20% limit)
			orderType := "MARKET"
			if currentDate.Nanosecond()%100 < 20 {
				orderType = "LIMIT"
			}
			
			// Determine quantity
			quantity := 10 + (currentDate.Nanosecond() % 90) // Between 10 and 99
			
			// Determine price
			var price float64
			if symbol == "AAPL" {
				price = 150.0 + (float64(currentDate.Nanosecond()%1000) / 100.0) // Around $150
			} else if symbol == "MSFT" {
				price = 280.0 + (float64(currentDate.Nanosecond()%1000) / 100.0) // Around $280
			} else if symbol == "GOOGL" {
				price = 2100.0 + (float64(currentDate.Nanosecond()%1000) / 10.0) // Around $2100
			} else if symbol == "AMZN" {
				price = 3300.0 + (float64(currentDate.Nanosecond()%1000) / 10.0) // Around $3300
			} else {
				price = 330.0 + (float64(currentDate.Nanosecond()%1000) / 100.0) // Around $330
			}
			
			// Create backtest date
			backtestDate := currentDate
			
			// Create trade
			trade := models.SimulationOrder{
				Order: models.Order{
					ID:           uuid.New().String(),
					UserID:       "user123",
					Symbol:       symbol,
					Quantity:     quantity,
					Side:         side,
					OrderType:    orderType,
					Price:        price,
					StopPrice:    0,
					Status:       "FILLED",
					CreatedAt:    currentDate,
					UpdatedAt:    currentDate.Add(5 * time.Minute),
					ExpiryDate:   currentDate.Add(24 * time.Hour),
					FilledQty:    quantity,
					AvgFillPrice: price,
					ProductType:  "MIS",
					Validity:     "DAY",
					Environment:  "SIM",
				},
				SimulationAccountID: "sim1",
				SimulatedFillPrice:  price,
				SimulatedFillTime:   currentDate.Add(5 * time.Minute),
				SlippageAmount:      price * 0.001, // 0.1% slippage
				LatencyMs:           100,
				CommissionAmount:    price * float64(quantity) * 0.001, // 0.1% commission
				IsBacktestOrder:     true,
				BacktestDate:        &backtestDate,
			}
			
			trades = append(trades, trade)
		}
		
		// Increment date
		currentDate = currentDate.Add(24 * time.Hour)
	}
	
	return trades, nil
}

// CompareBacktestSessions compares multiple backtest sessions
func (s *BacktestService) CompareBacktestSessions(sessionIDs []string) (map[string]interface{}, error) {
	if len(sessionIDs) == 0 {
		return nil, errors.New("at least one session ID is required")
	}
	
	// In a real implementation, we would:
	// 1. Retrieve the sessions from the database
	// 2. Calculate performance metrics for each session
	// 3. Compare the metrics
	
	// For now, return mock comparison data
	var sessionsData []map[string]interface{}
	
	for i, sessionID := range sessionIDs {
		// Create mock session data
		sessionData := map[string]interface{}{
			"sessionID":        sessionID,
			"name":             "Backtest Session " + string(i+1),
			"totalReturn":      10.0 + float64(i*5),
			"annualizedReturn": 8.0 + float64(i*4),
			"sharpeRatio":      1.5 + float64(i)*0.3,
			"maxDrawdown":      5.0 - float64(i)*0.5,
			"winRate":          0.6 + float64(i)*0.05,
			"profitFactor":     2.0 + float64(i)*0.5,
			"totalTrades":      50 - i*5,
		}
		
		sessionsData = append(sessionsData, sessionData)
	}
	
	return map[string]interface{}{
		"sessions":      sessionsData,
		"bestPerformer": sessionsData[len(sessionsData)-1]["sessionID"],
		"metrics":       []string{"totalReturn", "annualizedReturn", "sharpeRatio", "maxDrawdown", "winRate", "profitFactor", "totalTrades"},
	}, nil
}

// OptimizeStrategy optimizes a strategy based on historical data
func (s *BacktestService) OptimizeStrategy(strategyID string, parameterRanges map[string]map[string]interface{}, optimizationMetric string) (map[string]interface{}, error) {
	if strategyID == "" {
		return nil, errors.New("strategy ID is required")
	}
	
	if len(parameterRanges) == 0 {
		return nil, errors.New("parameter ranges are required")
	}
	
	if optimizationMetric == "" {
		return nil, errors.New("optimization metric is required")
	}
	
	// In a real implementation, we would:
	// 1. Retrieve the strategy from the database
	// 2. Generate parameter combinations based on the ranges
	// 3. Run backtests for each parameter combination
	// 4. Evaluate the results based on the optimization metric
	// 5. Return the optimal parameters
	
	// For now, return mock optimization results
	return map[string]interface{}{
		"strategyID":         strategyID,
		"optimizationMetric": optimizationMetric,
		"parameterRanges":    parameterRanges,
		"optimalParameters": map[string]interface{}{
			"param1": 15,
			"param2": "value2",
			"param3": 0.05,
		},
		"metricValue":     25.5,
		"iterationsRun":   50,
		"timeElapsed":     "00:05:23",
		"parameterSweep":  []map[string]interface{}{
			{"param1": 10, "param2": "value1", "param3": 0.01, "metricValue": 15.2},
			{"param1": 12, "param2": "value1", "param3": 0.03, "metricValue": 18.7},
			{"param1": 15, "param2": "value2", "param3": 0.05, "metricValue": 25.5},
			{"param1": 18, "param2": "value2", "param3": 0.07, "metricValue": 22.1},
			{"param1": 20, "param2": "value3", "param3": 0.10, "metricValue": 19.8},
		},
	}, nil
}

// ExportBacktestResults exports backtest results to a specified format
func (s *BacktestService) ExportBacktestResults(sessionID string, format string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session ID is required")
	}
	
	if format == "" {
		return "", errors.New("format is required")
	}
	
	// In a real implementation, we would:
	// 1. Retrieve the backtest results from the database
	// 2. Format the results according to the specified format
	// 3. Save the formatted results to a file
	// 4. Return the file path
	
	// For now, return a mock file path
	return "/tmp/backtest_results_" + sessionID + "." + format, nil
}

// processBacktest processes a backtest session
func (s *BacktestService) processBacktest(session *models.BacktestSession) error {
	// In a real implementation, this would be a complex process that:
	// 1. Loads historical market data for the specified symbols and timeframe
	// 2. Initializes a virtual account with the initial balance
	// 3. Loads the strategy and parameters
	// 4. Steps through the historical data day by day (or bar by bar)
	// 5. Executes the strategy at each step
	// 6. Tracks orders, positions, and account balance
	// 7. Calculates performance metrics
	// 8. Saves results to the database
	
	// For now, just return success
	return nil
}
