package portfolioanalytics

import (
        "context"
        "database/sql"
        "encoding/json"
        "errors"
        "time"
)

// Repository defines the interface for portfolio analytics data storage
type Repository interface {
        // Portfolio operations
        CreatePortfolio(ctx context.Context, portfolio *Portfolio) error
        GetPortfolio(ctx context.Context, portfolioID string) (*Portfolio, error)
        UpdatePortfolio(ctx context.Context, portfolio *Portfolio) error
        DeletePortfolio(ctx context.Context, portfolioID string) error
        ListPortfolios(ctx context.Context, userID string, filters map[string]interface{}, pagination *Pagination) ([]*Portfolio, int, error)
        
        // Position operations
        CreatePosition(ctx context.Context, position *Position) error
        GetPosition(ctx context.Context, positionID string) (*Position, error)
        UpdatePosition(ctx context.Context, position *Position) error
        DeletePosition(ctx context.Context, positionID string) error
        ListPositions(ctx context.Context, portfolioID string, filters map[string]interface{}, pagination *Pagination) ([]*Position, int, error)
        
        // Performance metrics operations
        SavePerformanceMetrics(ctx context.Context, portfolioID string, metrics *PerformanceMetrics) error
        GetPerformanceMetrics(ctx context.Context, portfolioID string) (*PerformanceMetrics, error)
        GetHistoricalPerformance(ctx context.Context, portfolioID string, startDate, endDate time.Time, interval string) (map[time.Time]*PerformanceMetrics, error)
        
        // Risk metrics operations
        SaveRiskMetrics(ctx context.Context, portfolioID string, metrics *RiskMetrics) error
        GetRiskMetrics(ctx context.Context, portfolioID string) (*RiskMetrics, error)
        GetHistoricalRisk(ctx context.Context, portfolioID string, startDate, endDate time.Time, interval string) (map[time.Time]*RiskMetrics, error)
}

// Pagination represents pagination parameters
type Pagination struct {
        Page     int
        PageSize int
        SortBy   string
        SortDesc bool
}

// PostgresRepository implements Repository interface using PostgreSQL
type PostgresRepository struct {
        db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
        return &PostgresRepository{
                db: db,
        }
}

// Implementation of Repository interface methods for PostgresRepository
// These would contain the actual SQL queries to interact with the database

// Service defines the interface for portfolio analytics business logic
type Service interface {
        // Portfolio operations
        CreatePortfolio(ctx context.Context, portfolio *Portfolio) (*Portfolio, error)
        GetPortfolio(ctx context.Context, portfolioID string) (*Portfolio, error)
        UpdatePortfolio(ctx context.Context, portfolio *Portfolio) (*Portfolio, error)
        DeletePortfolio(ctx context.Context, portfolioID string) error
        ListPortfolios(ctx context.Context, userID string, filters map[string]interface{}, pagination *Pagination) ([]*Portfolio, int, error)
        
        // Position operations
        AddPosition(ctx context.Context, portfolioID string, position *Position) (*Position, error)
        UpdatePosition(ctx context.Context, position *Position) (*Position, error)
        ClosePosition(ctx context.Context, positionID string, exitPrice float64, exitTime time.Time) (*Position, error)
        DeletePosition(ctx context.Context, portfolioID string, positionID string) error
        ListPositions(ctx context.Context, portfolioID string, filters map[string]interface{}, pagination *Pagination) ([]*Position, int, error)
        
        // Analytics operations
        GetPerformanceMetrics(ctx context.Context, portfolioID string) (*PerformanceMetrics, error)
        GetRiskMetrics(ctx context.Context, portfolioID string) (*RiskMetrics, error)
        GetHistoricalPerformance(ctx context.Context, portfolioID string, startDate, endDate time.Time, interval string) (map[time.Time]*PerformanceMetrics, error)
        GetHistoricalRisk(ctx context.Context, portfolioID string, startDate, endDate time.Time, interval string) (map[time.Time]*RiskMetrics, error)
        
        // Real-time operations
        SubscribeToUpdates(portfolioID string, callback func(interface{})) (string, error)
        UnsubscribeFromUpdates(subscriptionID string) error
        
        // Batch operations
        AnalyzeMultiplePortfolios(ctx context.Context, portfolioIDs []string) (map[string]*PortfolioAnalysis, error)
        ComparePortfolios(ctx context.Context, portfolioIDs []string) (*PortfolioComparison, error)
}

// PortfolioAnalysis contains comprehensive analysis of a portfolio
type PortfolioAnalysis struct {
        Portfolio         *Portfolio
        PerformanceMetrics *PerformanceMetrics
        RiskMetrics       *RiskMetrics
        Recommendations   []string
        Alerts            []Alert
}

// PortfolioComparison contains comparison data between multiple portfolios
type PortfolioComparison struct {
        Portfolios        []string
        PerformanceDeltas map[string]map[string]float64
        RiskDeltas        map[string]map[string]float64
        CorrelationMatrix map[string]map[string]float64
        BestPerformer     string
        LowestRisk        string
        BestRiskAdjusted  string
}

// Alert represents a notification about portfolio conditions
type Alert struct {
        ID          string
        PortfolioID string
        Type        string
        Severity    string
        Message     string
        Timestamp   time.Time
        Acknowledged bool
        Metadata    map[string]interface{}
}

// ServiceImpl implements Service interface
type ServiceImpl struct {
        repository Repository
        engine     *PortfolioAnalyticsEngine
        subscribers map[string]map[string]func(interface{})
}

// NewService creates a new portfolio analytics service
func NewService(repository Repository, engine *PortfolioAnalyticsEngine) Service {
        return &ServiceImpl{
                repository:  repository,
                engine:      engine,
                subscribers: make(map[string]map[string]func(interface{})),
        }
}

// Implementation of Service interface methods for ServiceImpl
// These would contain the business logic for portfolio analytics

// Controller defines the HTTP handlers for portfolio analytics API
type Controller struct {
        service Service
}

// NewController creates a new portfolio analytics controller
func NewController(service Service) *Controller {
        return &Controller{
                service: service,
        }
}

// API endpoint handlers would be defined here
// These would handle HTTP requests and responses

// WebSocketHandler handles WebSocket connections for real-time updates
type WebSocketHandler struct {
        service Service
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(service Service) *WebSocketHandler {
        return &WebSocketHandler{
                service: service,
        }
}

// WebSocket handling methods would be defined here

// DatabaseSchema defines the database schema for portfolio analytics
type DatabaseSchema struct {
        // Schema definitions would be here
}

// SQL statements for creating the schema
const (
        CreatePortfoliosTableSQL = `
        CREATE TABLE IF NOT EXISTS portfolios (
                id VARCHAR(36) PRIMARY KEY,
                name VARCHAR(255) NOT NULL,
                description TEXT,
                user_id VARCHAR(36) NOT NULL,
                strategy_id VARCHAR(36),
                tags JSONB,
                created_at TIMESTAMP NOT NULL,
                updated_at TIMESTAMP NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_portfolios_user_id ON portfolios(user_id);
        CREATE INDEX IF NOT EXISTS idx_portfolios_strategy_id ON portfolios(strategy_id);
        `

        CreatePositionsTableSQL = `
        CREATE TABLE IF NOT EXISTS positions (
                id VARCHAR(36) PRIMARY KEY,
                portfolio_id VARCHAR(36) NOT NULL,
                symbol VARCHAR(50) NOT NULL,
                quantity INTEGER NOT NULL,
                entry_price NUMERIC(15,5) NOT NULL,
                current_price NUMERIC(15,5) NOT NULL,
                entry_time TIMESTAMP NOT NULL,
                exit_time TIMESTAMP,
                exit_price NUMERIC(15,5),
                transaction_type VARCHAR(10) NOT NULL,
                product_type VARCHAR(10) NOT NULL,
                exchange VARCHAR(10) NOT NULL,
                expiry_date TIMESTAMP,
                strike_price NUMERIC(15,5),
                option_type VARCHAR(2),
                strategy_id VARCHAR(36),
                tags JSONB,
                FOREIGN KEY (portfolio_id) REFERENCES portfolios(id) ON DELETE CASCADE
        );
        CREATE INDEX IF NOT EXISTS idx_positions_portfolio_id ON positions(portfolio_id);
        CREATE INDEX IF NOT EXISTS idx_positions_symbol ON positions(symbol);
        CREATE INDEX IF NOT EXISTS idx_positions_strategy_id ON positions(strategy_id);
        `

        CreateGreeksTableSQL = `
        CREATE TABLE IF NOT EXISTS greeks (
                position_id VARCHAR(36) PRIMARY KEY,
                delta NUMERIC(15,5) NOT NULL,
                gamma NUMERIC(15,5) NOT NULL,
                theta NUMERIC(15,5) NOT NULL,
                vega NUMERIC(15,5) NOT NULL,
                rho NUMERIC(15,5) NOT NULL,
                updated_at TIMESTAMP NOT NULL,
                FOREIGN KEY (position_id) REFERENCES positions(id) ON DELETE CASCADE
        );
        `

        CreatePerformanceMetricsTableSQL = `
        CREATE TABLE IF NOT EXISTS performance_metrics (
                portfolio_id VARCHAR(36) PRIMARY KEY,
                total_pnl NUMERIC(15,5) NOT NULL,
                realized_pnl NUMERIC(15,5) NOT NULL,
                unrealized_pnl NUMERIC(15,5) NOT NULL,
                pnl_percentage NUMERIC(15,5) NOT NULL,
                cagr NUMERIC(15,5),
                volatility NUMERIC(15,5),
                sharpe_ratio NUMERIC(15,5),
                sortino_ratio NUMERIC(15,5),
                max_drawdown NUMERIC(15,5),
                win_rate NUMERIC(15,5),
                profit_factor NUMERIC(15,5),
                average_win NUMERIC(15,5),
                average_loss NUMERIC(15,5),
                expectancy_ratio NUMERIC(15,5),
                return_on_capital NUMERIC(15,5),
                daily_pnl JSONB,
                cumulative_pnl JSONB,
                rolling_performance JSONB,
                performance_by_symbol JSONB,
                updated_at TIMESTAMP NOT NULL,
                FOREIGN KEY (portfolio_id) REFERENCES portfolios(id) ON DELETE CASCADE
        );
        `

        CreateRiskMetricsTableSQL = `
        CREATE TABLE IF NOT EXISTS risk_metrics (
                portfolio_id VARCHAR(36) PRIMARY KEY,
                value_at_risk NUMERIC(15,5) NOT NULL,
                conditional_var NUMERIC(15,5) NOT NULL,
                beta_to_market NUMERIC(15,5) NOT NULL,
                portfolio_volatility NUMERIC(15,5) NOT NULL,
                correlation_matrix JSONB,
                stress_test_results JSONB,
                sector_exposure JSONB,
                asset_class_exposure JSONB,
                concentration_risk NUMERIC(15,5) NOT NULL,
                liquidity_risk NUMERIC(15,5) NOT NULL,
                option_exposure JSONB,
                delta_exposure NUMERIC(15,5) NOT NULL,
                gamma_exposure NUMERIC(15,5) NOT NULL,
                theta_exposure NUMERIC(15,5) NOT NULL,
                vega_exposure NUMERIC(15,5) NOT NULL,
                rho_exposure NUMERIC(15,5) NOT NULL,
                updated_at TIMESTAMP NOT NULL,
                FOREIGN KEY (portfolio_id) REFERENCES portfolios(id) ON DELETE CASCADE
        );
        `

        CreateHistoricalPerformanceTableSQL = `
        CREATE TABLE IF NOT EXISTS historical_performance (
                id SERIAL PRIMARY KEY,
                portfolio_id VARCHAR(36) NOT NULL,
                date TIMESTAMP NOT NULL,
                metrics JSONB NOT NULL,
                FOREIGN KEY (portfolio_id) REFERENCES portfolios(id) ON DELETE CASCADE,
                UNIQUE (portfolio_id, date)
        );
        CREATE INDEX IF NOT EXISTS idx_historical_performance_portfolio_date ON historical_performance(portfolio_id, date);
        `

        CreateHistoricalRiskTableSQL = `
        CREATE TABLE IF NOT EXISTS historical_risk (
                id SERIAL PRIMARY KEY,
                portfolio_id VARCHAR(36) NOT NULL,
                date TIMESTAMP NOT NULL,
                metrics JSONB NOT NULL,
                FOREIGN KEY (portfolio_id) REFERENCES portfolios(id) ON DELETE CASCADE,
                UNIQUE (portfolio_id, date)
        );
        CREATE INDEX IF NOT EXISTS idx_historical_risk_portfolio_date ON historical_risk(portfolio_id, date);
        `

        CreateAlertsTableSQL = `
        CREATE TABLE IF NOT EXISTS alerts (
                id VARCHAR(36) PRIMARY KEY,
                portfolio_id VARCHAR(36) NOT NULL,
                type VARCHAR(50) NOT NULL,
                severity VARCHAR(20) NOT NULL,
                message TEXT NOT NULL,
                timestamp TIMESTAMP NOT NULL,
                acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
                metadata JSONB,
                FOREIGN KEY (portfolio_id) REFERENCES portfolios(id) ON DELETE CASCADE
        );
        CREATE INDEX IF NOT EXISTS idx_alerts_portfolio_id ON alerts(portfolio_id);
        CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts(timestamp);
        `
)
