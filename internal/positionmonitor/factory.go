package positionmonitor

import "fmt"

// LegSpec is the wire-level description of one leg to seed a monitor with,
// used by Factory.StartMonitoring.
type LegSpec struct {
	OrderID    string     `json:"orderId"`
	Symbol     string     `json:"symbol"`
	Token      int64      `json:"token"`
	EntryPrice float64    `json:"entryPrice"`
	Quantity   int        `json:"quantity"`
	TypeTag    LegTypeTag `json:"typeTag"`
}

// Factory is the single production entry point for standing up a new
// PositionMonitor: it builds the monitor, wires its callbacks to a real
// OrderGateway and Publisher, registers it with the user's session, and
// subscribes its tokens on the TickSource so ticks start flowing
// immediately. Called by the order-execution flow once an order fills,
// never by the tick goroutine itself.
type Factory struct {
	sessions   *SessionManager
	tickSource TickSource
	publisher  *Publisher
	hub        exitBroadcaster
	logger     Logger
}

// exitBroadcaster is the subset of *websocket.Hub buildBoundExitCallback/
// buildBoundLegExitCallback need, kept narrow so Factory doesn't import the
// websocket package directly.
type exitBroadcaster interface {
	BroadcastToUser(userID string, message []byte)
}

// NewFactory constructs a Factory. hub may be nil if websocket push is not
// wired (e.g. in a headless worker).
func NewFactory(sessions *SessionManager, tickSource TickSource, publisher *Publisher, hub exitBroadcaster, logger Logger) *Factory {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Factory{sessions: sessions, tickSource: tickSource, publisher: publisher, hub: hub, logger: logger}
}

// StartMonitoring builds and registers a PositionMonitor for userID/executionID,
// seeded with legs, and begins streaming ticks into it.
func (f *Factory) StartMonitoring(userID, executionID string, cfg PositionMonitorConfig, legs []LegSpec, gateway OrderGateway) (*PositionMonitor, error) {
	registry, _ := f.sessions.Registry(userID)

	var exitCB ExitCallback
	var legExitCB IndividualLegExitCallback
	var replacementCB LegReplacementCallback

	monitor, err := NewPositionMonitor(executionID, cfg, nil, f.logger,
		func(reason string) {
			if exitCB != nil {
				exitCB(reason)
			}
		},
		func(symbol, reason string) {
			if legExitCB != nil {
				legExitCB(symbol, reason)
			}
		},
		func(exitedSymbol string, side LegTypeTag, targetPremium float64, lossMakingSymbol string) (ReplacementFill, error) {
			if replacementCB != nil {
				return replacementCB(exitedSymbol, side, targetPremium, lossMakingSymbol)
			}
			return ReplacementFill{}, fmt.Errorf("position-monitor: no replacement callback configured")
		},
	)
	if err != nil {
		return nil, err
	}

	exitCB = buildBoundExitCallback(executionID, userID, gateway, monitor, f.publisher, f.hub, f.logger)
	legExitCB = buildBoundLegExitCallback(executionID, userID, f.publisher, f.hub)
	replacementCB = BuildLegReplacementCallback(gateway)

	tokens := make([]int64, 0, len(legs))
	for _, leg := range legs {
		if err := monitor.AddLeg(leg.OrderID, leg.Symbol, leg.Token, leg.EntryPrice, leg.Quantity, leg.TypeTag); err != nil {
			return nil, err
		}
		tokens = append(tokens, leg.Token)
	}

	if err := registry.StartMonitoring(executionID, monitor, tokens); err != nil {
		return nil, err
	}

	if f.tickSource != nil {
		ticks, err := f.tickSource.Subscribe(userID, tokens)
		if err != nil {
			return nil, fmt.Errorf("position-monitor: tick subscription failed: %w", err)
		}
		go f.pumpTicks(registry, ticks)
	}

	return monitor, nil
}

func (f *Factory) pumpTicks(registry *MonitorRegistry, ticks <-chan []Tick) {
	for batch := range ticks {
		registry.Dispatch(batch)
	}
}
