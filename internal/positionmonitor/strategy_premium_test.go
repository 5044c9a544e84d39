package positionmonitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func legsWithPrices(prices ...float64) []*Leg {
	legs := make([]*Leg, len(prices))
	for i, p := range prices {
		leg := NewLeg("O", "SYM", int64(i+1), p, 1, LegTypeCall)
		legs[i] = leg
	}
	return legs
}

func TestPremiumBasedExitShortDecayTarget(t *testing.T) {
	s := newPremiumBasedExit(true)
	ctx := &EvalContext{
		Direction:     DirectionShort,
		EntryPremium:  100,
		TargetPremium: 80,
		StopLossPremium: 130,
		Legs:          legsWithPrices(40, 35), // combined 75 <= 80
	}
	assert.True(t, s.IsEnabled(ctx))

	action := s.Evaluate(ctx)
	assert.Equal(t, KindExitAll, action.Kind)
	assert.Contains(t, action.Reason, ReasonPremiumDecayTarget)
}

func TestPremiumBasedExitShortExpansionStop(t *testing.T) {
	s := newPremiumBasedExit(true)
	ctx := &EvalContext{
		Direction:       DirectionShort,
		EntryPremium:    100,
		TargetPremium:   80,
		StopLossPremium: 130,
		Legs:            legsWithPrices(70, 65), // combined 135 >= 130
	}
	action := s.Evaluate(ctx)
	assert.Equal(t, KindExitAll, action.Kind)
	assert.Contains(t, action.Reason, ReasonPremiumExpansionSL)
}

func TestPremiumBasedExitDisabledWithoutEntryPremium(t *testing.T) {
	s := newPremiumBasedExit(true)
	ctx := &EvalContext{Direction: DirectionShort, EntryPremium: 0}
	assert.False(t, s.IsEnabled(ctx))
}

func TestPremiumBasedExitNoExitBetweenLevels(t *testing.T) {
	s := newPremiumBasedExit(true)
	ctx := &EvalContext{
		Direction:       DirectionShort,
		EntryPremium:    100,
		TargetPremium:   80,
		StopLossPremium: 130,
		Legs:            legsWithPrices(50, 50), // combined 100
	}
	action := s.Evaluate(ctx)
	assert.Equal(t, KindNoExit, action.Kind)
}
