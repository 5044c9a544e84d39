package positionmonitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsBasedTarget(t *testing.T) {
	s := newPointsBasedTarget(true)

	action := s.Evaluate(&EvalContext{CumPnL: 1.5, TargetPoints: 2.0})
	assert.Equal(t, KindNoExit, action.Kind)

	action = s.Evaluate(&EvalContext{CumPnL: 2.0, TargetPoints: 2.0})
	assert.Equal(t, KindExitAll, action.Kind)
	assert.Contains(t, action.Reason, ReasonCumulativeTargetHit)
}

func TestPointsBasedStopLoss(t *testing.T) {
	s := newPointsBasedStopLoss(true)

	action := s.Evaluate(&EvalContext{CumPnL: -2.9, StopPoints: 3.0})
	assert.Equal(t, KindNoExit, action.Kind)

	action = s.Evaluate(&EvalContext{CumPnL: -3.0, StopPoints: 3.0})
	assert.Equal(t, KindExitAll, action.Kind)
	assert.Contains(t, action.Reason, ReasonCumulativeStopLoss)
}
