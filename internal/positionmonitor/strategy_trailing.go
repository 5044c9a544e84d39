package positionmonitor

import (
	"fmt"
	"sync"
)

// TrailingStopLoss activates once cumulative P&L reaches an activation
// level, then trails a stop distance below the running high-water mark.
// The trail level is monotonically non-decreasing while activated; on a tick
// that simultaneously lifts the HWM and would touch the old trail level, the
// HWM update is applied first so no exit fires (§4.2.5, "update-then-check
// order").
type TrailingStopLoss struct {
	enabled          bool
	activationPoints float64
	distancePoints   float64

	mu         sync.Mutex
	activated  bool
	hwm        float64
	trailLevel float64
}

func newTrailingStopLoss(enabled bool, activationPoints, distancePoints float64) *TrailingStopLoss {
	return &TrailingStopLoss{
		enabled:          enabled,
		activationPoints: activationPoints,
		distancePoints:   distancePoints,
	}
}

func (s *TrailingStopLoss) Priority() int { return PriorityTrailingStopLoss }

func (s *TrailingStopLoss) IsEnabled(ctx *EvalContext) bool {
	return s.enabled && ctx.SLMode.evaluatesAsPoints()
}

func (s *TrailingStopLoss) Evaluate(ctx *EvalContext) ExitAction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.activated {
		if ctx.CumPnL >= s.activationPoints {
			s.activated = true
			s.hwm = ctx.CumPnL
			s.trailLevel = ctx.CumPnL - s.distancePoints
		}
		return NoExit
	}

	if ctx.CumPnL > s.hwm {
		s.hwm = ctx.CumPnL
		s.trailLevel = s.hwm - s.distancePoints
	}
	if ctx.CumPnL <= s.trailLevel {
		return ExitAll(fmt.Sprintf("%s (P&L=%.2f, HWM=%.2f, TrailLevel=%.2f)",
			ReasonTrailingStopLossHit, ctx.CumPnL, s.hwm, s.trailLevel))
	}
	return NoExit
}

// State returns the trailing strategy's current activation/HWM/trail level,
// used by PositionMonitor's read-only accessor.
func (s *TrailingStopLoss) State() (activated bool, hwm, trailLevel float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activated, s.hwm, s.trailLevel
}
