package positionmonitor

import "fmt"

// PointsBasedStopLoss exits the whole position once cumulative P&L in points
// falls to or below the negative of the configured stop.
type PointsBasedStopLoss struct {
	enabled bool
}

func newPointsBasedStopLoss(enabled bool) *PointsBasedStopLoss {
	return &PointsBasedStopLoss{enabled: enabled}
}

func (s *PointsBasedStopLoss) Priority() int { return PriorityPointsBasedStopLoss }

func (s *PointsBasedStopLoss) IsEnabled(ctx *EvalContext) bool {
	return s.enabled && ctx.SLMode.evaluatesAsPoints()
}

func (s *PointsBasedStopLoss) Evaluate(ctx *EvalContext) ExitAction {
	if ctx.CumPnL <= -ctx.StopPoints {
		return ExitAll(fmt.Sprintf("%s (Signal: %.2f points)", ReasonCumulativeStopLoss, ctx.CumPnL))
	}
	return NoExit
}
