// Package positionmonitor implements the per-position tick evaluation core:
// leg storage, the priority-ordered exit strategies, the position monitor
// itself, and the per-user tick fan-out that feeds it.
package positionmonitor

import (
	"math"
	"sync/atomic"
	"time"
)

// Direction is the side a position was opened on.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Multiplier returns +1 for LONG and -1 for SHORT, so that a favorable move
// always increases cumulative P&L.
func (d Direction) Multiplier() float64 {
	if d == DirectionShort {
		return -1
	}
	return 1
}

// SLTargetMode selects how PositionMonitor evaluates target/stop-loss exits.
type SLTargetMode string

const (
	SLTargetModePoints  SLTargetMode = "POINTS"
	SLTargetModePremium SLTargetMode = "PREMIUM"
	SLTargetModeMTM     SLTargetMode = "MTM"
)

// evaluatesAsPoints reports whether mode drives the points-based strategies
// (PointsBasedTarget, PointsBasedStopLoss, TrailingStopLoss). MTM is accepted
// for forward compatibility but, since this core computes no true
// mark-to-market figure distinct from points P&L, it is evaluated identically
// to POINTS (§9, Open Question).
func (mode SLTargetMode) evaluatesAsPoints() bool {
	return mode == SLTargetModePoints || mode == SLTargetModeMTM
}

// LegTypeTag is the option right of a leg.
type LegTypeTag string

const (
	LegTypeCall LegTypeTag = "CALL"
	LegTypePut  LegTypeTag = "PUT"
)

// Opposite returns the other option right, used when building a replacement leg.
func (t LegTypeTag) Opposite() LegTypeTag {
	if t == LegTypeCall {
		return LegTypePut
	}
	return LegTypeCall
}

// Tick is one price observation delivered by the market-data transport.
type Tick struct {
	InstrumentToken int64
	LastTradedPrice float64
	ArrivalTime     time.Time
}

// Leg is one option contract held in a position. CurrentPrice is written by
// the tick thread and read by the same thread and by status readers; it is
// stored as the bit pattern of a float64 behind sync/atomic so no reader ever
// observes a torn value.
type Leg struct {
	OrderID         string
	Symbol          string
	InstrumentToken int64
	EntryPrice      float64
	Quantity        int
	TypeTag         LegTypeTag

	currentPriceBits uint64
}

// NewLeg constructs a Leg with its entry price also seeded as the current price.
func NewLeg(orderID, symbol string, token int64, entryPrice float64, quantity int, typeTag LegTypeTag) *Leg {
	leg := &Leg{
		OrderID:         orderID,
		Symbol:          symbol,
		InstrumentToken: token,
		EntryPrice:      entryPrice,
		Quantity:        quantity,
		TypeTag:         typeTag,
	}
	leg.setCurrentPrice(entryPrice)
	return leg
}

// CurrentPrice returns the last price written for this leg.
func (l *Leg) CurrentPrice() float64 {
	return math.Float64frombits(atomic.LoadUint64(&l.currentPriceBits))
}

func (l *Leg) setCurrentPrice(price float64) {
	atomic.StoreUint64(&l.currentPriceBits, math.Float64bits(price))
}

// ExitActionKind tags the variant carried by an ExitAction, mirroring the
// enum-tagged-struct convention the rest of this tree uses for status/type
// fields (e.g. order and leg status) instead of a type-switched interface.
type ExitActionKind string

const (
	KindNoExit   ExitActionKind = "NO_EXIT"
	KindExitAll  ExitActionKind = "EXIT_ALL"
	KindExitLeg  ExitActionKind = "EXIT_LEG"
	KindAdjustLeg ExitActionKind = "ADJUST_LEG"
)

// ExitAction is the decision returned by an ExitStrategy for one tick.
type ExitAction struct {
	Kind   ExitActionKind
	Reason string

	// Populated for KindExitLeg / KindAdjustLeg.
	Symbol string

	// Populated for KindAdjustLeg only.
	ExitedSymbol             string
	ReplacementSide          LegTypeTag
	ReplacementTargetPremium float64
	LossMakingSymbol         string
}

// NoExit is the shared zero-decision value.
var NoExit = ExitAction{Kind: KindNoExit}

// ExitAll builds an ExitAll action with the given reason.
func ExitAll(reason string) ExitAction {
	return ExitAction{Kind: KindExitAll, Reason: reason}
}

// ExitLegAction builds an ExitLeg action for a single symbol.
func ExitLegAction(symbol, reason string) ExitAction {
	return ExitAction{Kind: KindExitLeg, Symbol: symbol, Reason: reason}
}

// AdjustLegAction builds an AdjustLeg action: exit one leg and request a
// replacement on the opposite side at a target premium.
func AdjustLegAction(exitedSymbol, reason string, replacementSide LegTypeTag, replacementTargetPremium float64, lossMakingSymbol string) ExitAction {
	return ExitAction{
		Kind:                     KindAdjustLeg,
		Symbol:                   exitedSymbol,
		ExitedSymbol:             exitedSymbol,
		Reason:                   reason,
		ReplacementSide:          replacementSide,
		ReplacementTargetPremium: replacementTargetPremium,
		LossMakingSymbol:         lossMakingSymbol,
	}
}

// EvalContext is the per-tick-batch input to every ExitStrategy. It is built
// once on the stack inside PositionMonitor.UpdatePrices and passed by
// pointer; strategies must not re-iterate Legs except for leg-scoped
// decisions already described by the strategy itself.
type EvalContext struct {
	Direction         Direction
	DirectionMult     float64
	SLMode            SLTargetMode
	CumPnL            float64
	TargetPoints      float64
	StopPoints        float64
	TargetPremium     float64
	StopLossPremium   float64
	EntryPremium      float64
	IndividualLegStop float64
	Legs              []*Leg
	Now               time.Time
}
