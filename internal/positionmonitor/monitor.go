package positionmonitor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// PositionMonitor is the per-position object owning one LegBook and an
// ordered list of ExitStrategies. At most one exit is signalled per
// position: once active flips to false, every subsequent UpdatePrices call
// is a no-op.
type PositionMonitor struct {
	executionID   string
	direction     Direction
	directionMult float64
	slMode        SLTargetMode

	legBook *LegBook

	strategies []ExitStrategy
	trailing   *TrailingStopLoss
	forcedExit *TimeBasedForcedExit

	entryPremium        atomicFloat
	targetPremiumLevel  atomicFloat
	stopLossPremiumLevel atomicFloat
	targetDecayPct      float64
	stopExpansionPct    float64

	// actionMu serializes exit-action handling and the config-adjustment
	// side effects it triggers (raising cumulative_target_points). It is
	// not held across callback invocations or I/O.
	actionMu sync.Mutex
	targetPoints atomicFloat
	stopPoints   atomicFloat
	individualLegStop float64

	active atomic.Bool

	exitReasonMu sync.Mutex
	exitReason   string

	clock  WallClock
	logger Logger

	exitCallback               ExitCallback
	individualLegExitCallback  IndividualLegExitCallback
	legReplacementCallback     LegReplacementCallback
}

// NewPositionMonitor builds a monitor with its strategy list constructed
// once from cfg and sorted by priority (Design Note "runtime dispatch to
// exit strategies via interface + priority constant, not dynamic
// registration").
func NewPositionMonitor(
	executionID string,
	cfg PositionMonitorConfig,
	clock WallClock,
	logger Logger,
	exitCallback ExitCallback,
	individualLegExitCallback IndividualLegExitCallback,
	legReplacementCallback LegReplacementCallback,
) (*PositionMonitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = noopLogger{}
	}
	if clock == nil {
		clock = systemClock{}
	}

	m := &PositionMonitor{
		executionID:               executionID,
		direction:                 cfg.Direction,
		directionMult:             cfg.Direction.Multiplier(),
		slMode:                    cfg.SLMode,
		legBook:                   NewLegBook(),
		individualLegStop:         cfg.EffectiveIndividualLegStop(),
		clock:                     clock,
		logger:                    logger,
		exitCallback:              exitCallback,
		individualLegExitCallback: individualLegExitCallback,
		legReplacementCallback:    legReplacementCallback,
	}
	m.targetPoints.store(cfg.TargetPoints)
	m.stopPoints.store(cfg.StopPoints)
	m.targetDecayPct = normalizePct(cfg.TargetPremiumPct)
	m.stopExpansionPct = normalizePct(cfg.StopLossPremiumPct)
	m.active.Store(true)

	forcedExit, err := newTimeBasedForcedExit(cfg.ForcedExitEnabled, cfg.ForcedExitTime, cfg.ForcedExitZone, logger)
	if err != nil {
		return nil, err
	}
	m.forcedExit = forcedExit
	trailing := newTrailingStopLoss(cfg.TrailingEnabled, cfg.TrailingActivationPoints, cfg.TrailingDistancePoints)
	m.trailing = trailing

	strategies := []ExitStrategy{
		forcedExit,
		newPremiumBasedExit(cfg.PremiumBasedExitEnabled),
		newPointsBasedTarget(true),
		newIndividualLegStopLoss(cfg.IndividualLegStopEnabled),
		trailing,
		newPointsBasedStopLoss(true),
	}
	m.strategies = sortStrategiesByPriority(strategies)

	return m, nil
}

// AddLeg registers a new leg, usable both before the first tick and as the
// replacement-leg entry point mid-flight (§9, V2 shape).
func (m *PositionMonitor) AddLeg(orderID, symbol string, token int64, entryPrice float64, quantity int, typeTag LegTypeTag) error {
	if entryPrice <= 0 || quantity <= 0 {
		err := newValidationError(ErrCodeInvalidLeg,
			fmt.Sprintf("leg %s rejected: entry price and quantity must be positive (entryPrice=%.2f, quantity=%d)", symbol, entryPrice, quantity))
		m.logger.Error("rejected leg with invalid entry price or quantity",
			"executionID", m.executionID, "symbol", symbol, "entryPrice", entryPrice, "quantity", quantity)
		return err
	}
	leg := NewLeg(orderID, symbol, token, entryPrice, quantity, typeTag)
	return m.legBook.Add(leg)
}

// RemoveLeg drops a leg, used internally by exit-action handling and
// available to callers that need to force it.
func (m *PositionMonitor) RemoveLeg(symbol string) {
	m.legBook.Remove(symbol)
}

// SetEntryPremium records the combined entry premium and recomputes the
// target/stop-loss premium levels from the decay/expansion percentages
// given at construction.
func (m *PositionMonitor) SetEntryPremium(total float64) error {
	if total <= 0 {
		return newValidationError(ErrCodeInvalidPremium, "entry premium must be positive")
	}
	m.entryPremium.store(total)
	m.recomputePremiumLevels(total)
	return nil
}

// UpdateEntryPremiumAfterReplacement recomputes premium levels after a
// replacement leg's fill using the combined premium total supplied by the
// caller (typically the prior total minus the exited leg's premium plus the
// replacement's fill price).
func (m *PositionMonitor) UpdateEntryPremiumAfterReplacement(newTotal float64) {
	m.entryPremium.store(newTotal)
	m.recomputePremiumLevels(newTotal)
}

func (m *PositionMonitor) recomputePremiumLevels(total float64) {
	if m.direction == DirectionShort {
		m.targetPremiumLevel.store(total * (1 - m.targetDecayPct))
		m.stopLossPremiumLevel.store(total * (1 + m.stopExpansionPct))
	} else {
		m.targetPremiumLevel.store(total * (1 + m.targetDecayPct))
		m.stopLossPremiumLevel.store(total * (1 - m.stopExpansionPct))
	}
}

// UpdatePrices is the hot path: write leg prices where tokens match, then
// run one evaluation pass. Inactive monitors ignore the call entirely.
func (m *PositionMonitor) UpdatePrices(ticks []Tick) {
	if !m.active.Load() {
		return
	}

	for _, tick := range ticks {
		if leg, ok := m.legBook.GetByToken(tick.InstrumentToken); ok {
			leg.setCurrentPrice(tick.LastTradedPrice)
		}
	}

	legs := m.legBook.Snapshot()
	var cumPnL float64
	for _, leg := range legs {
		cumPnL += (leg.CurrentPrice() - leg.EntryPrice) * m.directionMult
	}

	now := m.clock.Now()
	ctx := &EvalContext{
		Direction:         m.direction,
		DirectionMult:     m.directionMult,
		SLMode:            m.slMode,
		CumPnL:            cumPnL,
		TargetPoints:      m.targetPoints.load(),
		StopPoints:        m.stopPoints.load(),
		TargetPremium:     m.targetPremiumLevel.load(),
		StopLossPremium:   m.stopLossPremiumLevel.load(),
		EntryPremium:      m.entryPremium.load(),
		IndividualLegStop: m.individualLegStop,
		Legs:              legs,
		Now:               now,
	}

	for _, strategy := range m.strategies {
		if !strategy.IsEnabled(ctx) {
			continue
		}
		action := strategy.Evaluate(ctx)
		if action.Kind == KindNoExit {
			continue
		}
		m.handleExitAction(action)
		return
	}
}

// Stop transitions the monitor to inactive without emitting an exit reason.
// Idempotent and edge-triggered: calling it twice has no further effect.
func (m *PositionMonitor) Stop() {
	m.active.Store(false)
}

// TriggerForcedExit manually fires the time-based forced exit on the next
// evaluation. Returns true if the trigger was accepted (the monitor was
// still active and had not already forced an exit).
func (m *PositionMonitor) TriggerForcedExit() bool {
	if !m.active.Load() {
		return false
	}
	return m.forcedExit.TriggerManually()
}

func (m *PositionMonitor) Active() bool { return m.active.Load() }

func (m *PositionMonitor) ExecutionID() string { return m.executionID }

func (m *PositionMonitor) Direction() Direction { return m.direction }

func (m *PositionMonitor) ExitReason() string {
	m.exitReasonMu.Lock()
	defer m.exitReasonMu.Unlock()
	return m.exitReason
}

func (m *PositionMonitor) TrailingState() (activated bool, hwm, trailLevel float64) {
	return m.trailing.State()
}

func (m *PositionMonitor) EntryPremium() float64 { return m.entryPremium.load() }

func (m *PositionMonitor) Legs() []*Leg { return m.legBook.Snapshot() }

func (m *PositionMonitor) setExitReason(reason string) {
	m.exitReasonMu.Lock()
	m.exitReason = reason
	m.exitReasonMu.Unlock()
}

// handleExitAction applies the side effects of a non-NoExit decision. It
// never holds actionMu across a callback invocation or I/O; callback panics
// are recovered and logged, never re-raised across the tick boundary.
func (m *PositionMonitor) handleExitAction(action ExitAction) {
	switch action.Kind {
	case KindExitAll:
		m.active.Store(false)
		m.setExitReason(action.Reason)
		m.invokeExitCallback(action.Reason)

	case KindExitLeg:
		m.invokeIndividualLegExitCallback(action.Symbol, action.Reason)
		m.legBook.Remove(action.Symbol)
		m.raiseTargetAfterLegExit()
		m.maybeCloseAfterLegRemoval()

	case KindAdjustLeg:
		exitedQuantity := 1
		if leg, ok := m.legBook.GetBySymbol(action.Symbol); ok {
			exitedQuantity = leg.Quantity
		}
		m.invokeIndividualLegExitCallback(action.Symbol, action.Reason)
		m.legBook.Remove(action.Symbol)
		m.raiseTargetAfterLegExit()
		m.invokeLegReplacementCallback(action, exitedQuantity)
		if m.maybeCloseAfterLegRemoval() {
			return
		}
	}
}

// raiseTargetAfterLegExit raises cumulative_target_points by the pre-exit
// cumulative_stop_points, under a short critical section that keeps the
// target/stop pair consistent (§9, "individual-leg stop threshold").
func (m *PositionMonitor) raiseTargetAfterLegExit() {
	m.actionMu.Lock()
	defer m.actionMu.Unlock()
	m.targetPoints.store(m.targetPoints.load() + m.stopPoints.load())
}

// maybeCloseAfterLegRemoval transitions to inactive and fires the general
// exit callback once every leg has been closed individually. Returns true if
// it did so.
func (m *PositionMonitor) maybeCloseAfterLegRemoval() bool {
	if m.legBook.Len() > 0 {
		return false
	}
	m.active.Store(false)
	reason := ReasonAllLegsClosedIndividually
	m.setExitReason(reason)
	m.invokeExitCallback(reason)
	return true
}

func (m *PositionMonitor) invokeExitCallback(reason string) {
	if m.exitCallback == nil {
		return
	}
	defer m.recoverCallbackPanic("exit_callback")
	m.exitCallback(reason)
}

func (m *PositionMonitor) invokeIndividualLegExitCallback(symbol, reason string) {
	if m.individualLegExitCallback == nil {
		return
	}
	defer m.recoverCallbackPanic("individual_leg_exit_callback")
	m.individualLegExitCallback(symbol, reason)
}

func (m *PositionMonitor) invokeLegReplacementCallback(action ExitAction, replacementQuantity int) {
	if m.legReplacementCallback == nil {
		return
	}
	defer m.recoverCallbackPanic("leg_replacement_callback")

	fill, err := m.legReplacementCallback(action.ExitedSymbol, action.ReplacementSide, action.ReplacementTargetPremium, action.LossMakingSymbol)
	if err != nil {
		m.logger.Error("leg replacement failed, continuing without retry",
			"executionID", m.executionID, "exitedSymbol", action.ExitedSymbol, "error", err.Error())
		return
	}

	if err := m.AddLeg(fill.OrderID, fill.Symbol, fill.Token, fill.FillPrice, replacementQuantity, action.ReplacementSide); err != nil {
		m.logger.Error("replacement leg fill could not be added",
			"executionID", m.executionID, "symbol", fill.Symbol, "error", err.Error())
		return
	}

	var newTotal float64
	for _, leg := range m.legBook.Snapshot() {
		newTotal += leg.EntryPrice
	}
	m.UpdateEntryPremiumAfterReplacement(newTotal)
}

func (m *PositionMonitor) recoverCallbackPanic(callback string) {
	if r := recover(); r != nil {
		m.logger.Error("callback panic recovered",
			"executionID", m.executionID, "callback", callback, "panic", r)
	}
}
