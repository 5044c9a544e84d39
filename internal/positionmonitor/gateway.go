package positionmonitor

import (
	"context"
	"time"
)

// WallClock supplies the current time in the configured exchange zone.
// Production code calls time.Now(); tests use a fixed value so time-based
// exits are deterministic.
type WallClock interface {
	Now() time.Time
}

// systemClock is the production WallClock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ReplacementFill is the result of a successful replacement-leg order,
// delivered back into the monitor via AddLeg + UpdateEntryPremiumAfterReplacement.
type ReplacementFill struct {
	OrderID   string
	Symbol    string
	Token     int64
	FillPrice float64
}

// OrderGateway is the target of the monitor's exit/replacement callbacks.
// The monitor never calls it directly; the production callback closures built
// in wiring.go call it. ZerodhaGateway and XTSGateway implement it.
type OrderGateway interface {
	PlaceExitOrders(ctx context.Context, executionID string, legs []*Leg, reason string) error
	PlaceReplacementOrder(ctx context.Context, side LegTypeTag, targetPremium float64) (ReplacementFill, error)
}

// InstrumentRegistry resolves an option contract descriptor to a tradeable
// symbol/token pair, used by the leg-replacement callback.
type InstrumentRegistry interface {
	Resolve(underlying string, expiry time.Time, strike float64, side LegTypeTag) (symbol string, token int64, err error)
}

// TickSource is the externally-provided market-data transport.
type TickSource interface {
	Subscribe(userID string, tokens []int64) (<-chan []Tick, error)
	Unsubscribe(userID string, tokens []int64) error
}
