package positionmonitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrailingStopLossActivateThenFire(t *testing.T) {
	s := newTrailingStopLoss(true, 10, 3)

	// below activation: no-op, no internal state change
	action := s.Evaluate(&EvalContext{CumPnL: 5})
	assert.Equal(t, KindNoExit, action.Kind)
	activated, _, _ := s.State()
	assert.False(t, activated)

	// crosses activation
	action = s.Evaluate(&EvalContext{CumPnL: 10})
	assert.Equal(t, KindNoExit, action.Kind)
	activated, hwm, trail := s.State()
	assert.True(t, activated)
	assert.Equal(t, 10.0, hwm)
	assert.Equal(t, 7.0, trail)

	// pulls back but stays above the trail level
	action = s.Evaluate(&EvalContext{CumPnL: 8})
	assert.Equal(t, KindNoExit, action.Kind)

	// falls to the trail level: fires
	action = s.Evaluate(&EvalContext{CumPnL: 7})
	assert.Equal(t, KindExitAll, action.Kind)
	assert.Contains(t, action.Reason, ReasonTrailingStopLossHit)
}

func TestTrailingStopLossHWMUpdateWinsOverStaleTrailLevel(t *testing.T) {
	s := newTrailingStopLoss(true, 10, 3)
	s.Evaluate(&EvalContext{CumPnL: 10}) // activates, trail=7

	// a tick that simultaneously lifts HWM to 20 (trail becomes 17) must not
	// fire even though 20 is nowhere near the old trail level of 7
	action := s.Evaluate(&EvalContext{CumPnL: 20})
	assert.Equal(t, KindNoExit, action.Kind)
	_, hwm, trail := s.State()
	assert.Equal(t, 20.0, hwm)
	assert.Equal(t, 17.0, trail)
}
