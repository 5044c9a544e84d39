package positionmonitor

import "fmt"

// PointsBasedTarget exits the whole position once cumulative P&L in points
// reaches the configured target.
type PointsBasedTarget struct {
	enabled bool
}

func newPointsBasedTarget(enabled bool) *PointsBasedTarget {
	return &PointsBasedTarget{enabled: enabled}
}

func (s *PointsBasedTarget) Priority() int { return PriorityPointsBasedTarget }

func (s *PointsBasedTarget) IsEnabled(ctx *EvalContext) bool {
	return s.enabled && ctx.SLMode.evaluatesAsPoints()
}

func (s *PointsBasedTarget) Evaluate(ctx *EvalContext) ExitAction {
	if ctx.CumPnL >= ctx.TargetPoints {
		return ExitAll(fmt.Sprintf("%s (Signal: %.2f points)", ReasonCumulativeTargetHit, ctx.CumPnL))
	}
	return NoExit
}
