package interfaces

import (
	"context"
	"testing"
	"time"
	
	"github.com/stretchr/testify/assert"
)

func TestInterfaceDefinitions(t *testing.T) {
	// Test that the interface metadata is correctly defined
	metadata := GetInterfaceMetadata()
	
	// Check version
	assert.Equal(t, "1.0.0", metadata.Version)
	
	// Check supported features
	expectedFeatures := []string{
		"account_management",
		"balance_management",
		"order_management",
		"position_management",
		"market_data",
		"backtesting",
		"system_management",
	}
	
	for _, feature := range expectedFeatures {
		assert.Contains(t, metadata.SupportedFeatures, feature)
	}
	
	// Check rate limits
	assert.Greater(t, metadata.RateLimits["market_data_requests_per_minute"], 0)
	assert.Greater(t, metadata.RateLimits["order_requests_per_minute"], 0)
	assert.Greater(t, metadata.RateLimits["account_requests_per_minute"], 0)
	
	// Check max batch size
	assert.Greater(t, metadata.MaxBatchSize, 0)
}

// This is a compile-time check to ensure that the interfaces are properly defined
// If there are any issues with the interface definitions, this will cause a compilation error
func TestInterfaceCompilationCheck(t *testing.T) {
	// Define variables of interface type to ensure they're properly defined
	var _ ExecutionSimulationInterface = (*mockExecutionSimulationInterface)(nil)
	var _ ExecutionPlatformInterface = (*mockExecutionPlatformInterface)(nil)
}

// Mock implementations for compile-time checks

type mockExecutionSimulationInterface struct{}

func (m *mockExecutionSimulationInterface) CreateSimulationAccount(ctx context.Context, userID string, account interface{}) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetSimulationAccount(ctx context.Context, accountID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetSimulationAccountsByUser(ctx context.Context, userID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) UpdateSimulationAccount(ctx context.Context, accountID string, updates map[string]interface{}) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) DeleteSimulationAccount(ctx context.Context, accountID string) error {
	return nil
}

func (m *mockExecutionSimulationInterface) AddFunds(ctx context.Context, accountID string, amount float64, description string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) WithdrawFunds(ctx context.Context, accountID string, amount float64, description string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetAccountBalance(ctx context.Context, accountID string) (float64, error) {
	return 0, nil
}

func (m *mockExecutionSimulationInterface) GetAccountEquity(ctx context.Context, accountID string) (float64, error) {
	return 0, nil
}

func (m *mockExecutionSimulationInterface) GetTransactions(ctx context.Context, accountID string, startDate, endDate time.Time) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) CreateOrder(ctx context.Context, accountID string, order interface{}) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetOrder(ctx context.Context, orderID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetOrdersByAccount(ctx context.Context, accountID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) CancelOrder(ctx context.Context, orderID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) ModifyOrder(ctx context.Context, orderID string, updates interface{}) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetOrderHistory(ctx context.Context, accountID string, startDate, endDate time.Time, symbol string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetPositions(ctx context.Context, accountID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetPosition(ctx context.Context, positionID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) ClosePosition(ctx context.Context, positionID string, price float64) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetPositionHistory(ctx context.Context, accountID string, startDate, endDate time.Time) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetCurrentMarketPrice(ctx context.Context, symbol string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetHistoricalMarketData(ctx context.Context, symbol string, startDate, endDate time.Time, timeframe string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetMarketDepth(ctx context.Context, symbol string, levels int) (map[string]interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) CreateBacktestSession(ctx context.Context, accountID string, session interface{}) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetBacktestSession(ctx context.Context, sessionID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetBacktestSessionsByAccount(ctx context.Context, accountID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) RunBacktest(ctx context.Context, sessionID string) error {
	return nil
}

func (m *mockExecutionSimulationInterface) StopBacktest(ctx context.Context, sessionID string) error {
	return nil
}

func (m *mockExecutionSimulationInterface) GetBacktestResults(ctx context.Context, sessionID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetBacktestPerformanceMetrics(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) GetSystemStatus(ctx context.Context) (map[string]interface{}, error) {
	return nil, nil
}

func (m *mockExecutionSimulationInterface) SynchronizeMarketData(ctx context.Context, symbols []string) error {
	return nil
}

func (m *mockExecutionSimulationInterface) ResetSimulationEnvironment(ctx context.Context, accountID string) error {
	return nil
}

type mockExecutionPlatformInterface struct{}

func (m *mockExecutionPlatformInterface) GetRealTimeMarketData(ctx context.Context, symbol string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) GetHistoricalMarketData(ctx context.Context, symbol string, startDate, endDate time.Time, timeframe string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) SubscribeToMarketData(ctx context.Context, symbol string, callback interface{}) (string, error) {
	return "", nil
}

func (m *mockExecutionPlatformInterface) UnsubscribeFromMarketData(ctx context.Context, subscriptionID string) error {
	return nil
}

func (m *mockExecutionPlatformInterface) GetInstrumentDetails(ctx context.Context, symbol string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) GetExchangeInfo(ctx context.Context, exchange string) (map[string]interface{}, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) GetTradingHours(ctx context.Context, exchange string) (map[string]interface{}, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) GetStrategyTemplates(ctx context.Context) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) GetStrategyTemplate(ctx context.Context, templateID string) (interface{}, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) GetSystemVersion(ctx context.Context) (string, error) {
	return "", nil
}

func (m *mockExecutionPlatformInterface) GetSupportedFeatures(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) GetSystemHealth(ctx context.Context) (map[string]interface{}, error) {
	return nil, nil
}

func (m *mockExecutionPlatformInterface) SynchronizeMarketData(ctx context.Context, symbols []string) error {
	return nil
}
