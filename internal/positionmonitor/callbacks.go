package positionmonitor

// ExitCallback is invoked once when a position's ExitStrategy emits ExitAll.
// Production wiring (wiring.go) composes, in order: restoring the owning
// user's context, placing exit orders on the OrderGateway, and publishing the
// exit event to audit/websocket — none of which may block the tick goroutine
// beyond enqueueing that work.
type ExitCallback func(reason string)

// IndividualLegExitCallback is invoked once per leg removed by ExitLeg or the
// ExitLeg half of AdjustLeg.
type IndividualLegExitCallback func(symbol, reason string)

// LegReplacementCallback places a replacement order for the opposite side
// after an AdjustLeg action. A returned error is treated as
// signalLegReplacementFailed: the monitor logs it and continues monitoring
// the remaining legs without retrying.
type LegReplacementCallback func(exitedSymbol string, replacementSide LegTypeTag, replacementTargetPremium float64, lossMakingSymbol string) (ReplacementFill, error)
