package positionmonitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatchTestMonitor(t *testing.T, execID string, rec *exitRecorder) *PositionMonitor {
	cfg := PositionMonitorConfig{
		Direction:    DirectionShort,
		SLMode:       SLTargetModePoints,
		TargetPoints: 1.0,
		StopPoints:   1.0,
	}
	m, err := NewPositionMonitor(execID, cfg, &fixedClock{now: time.Now()}, nil, rec.onExit, rec.onLegExit, nil)
	require.NoError(t, err)
	return m
}

func TestTickDispatcherSingleMonitorFastPath(t *testing.T) {
	d := NewTickDispatcher()
	rec := &exitRecorder{}
	m := newDispatchTestMonitor(t, "exec-a", rec)
	require.NoError(t, m.AddLeg("O1", "CE", 1, 100.0, 1, LegTypeCall))
	d.Register("exec-a", m, []int64{1})

	d.Dispatch([]Tick{{InstrumentToken: 1, LastTradedPrice: 99.9}})

	assert.Equal(t, 99.9, m.Legs()[0].CurrentPrice())
}

func TestTickDispatcherMultipleDistinctMonitors(t *testing.T) {
	d := NewTickDispatcher()
	recA, recB := &exitRecorder{}, &exitRecorder{}
	mA := newDispatchTestMonitor(t, "exec-a", recA)
	mB := newDispatchTestMonitor(t, "exec-b", recB)
	require.NoError(t, mA.AddLeg("O1", "CE", 1, 100.0, 1, LegTypeCall))
	require.NoError(t, mB.AddLeg("O2", "PE", 2, 50.0, 1, LegTypePut))
	d.Register("exec-a", mA, []int64{1})
	d.Register("exec-b", mB, []int64{2})

	d.Dispatch([]Tick{
		{InstrumentToken: 1, LastTradedPrice: 99.0},
		{InstrumentToken: 2, LastTradedPrice: 51.0},
	})

	assert.Equal(t, 99.0, mA.Legs()[0].CurrentPrice())
	assert.Equal(t, 51.0, mB.Legs()[0].CurrentPrice())
}

func TestTickDispatcherUnknownTokenIsNoop(t *testing.T) {
	d := NewTickDispatcher()
	rec := &exitRecorder{}
	m := newDispatchTestMonitor(t, "exec-a", rec)
	require.NoError(t, m.AddLeg("O1", "CE", 1, 100.0, 1, LegTypeCall))
	d.Register("exec-a", m, []int64{1})

	d.Dispatch([]Tick{{InstrumentToken: 999, LastTradedPrice: 1.0}})

	assert.Equal(t, 100.0, m.Legs()[0].CurrentPrice())
}

func TestTickDispatcherDeregisterReturnsOrphanedTokens(t *testing.T) {
	d := NewTickDispatcher()
	rec := &exitRecorder{}
	m := newDispatchTestMonitor(t, "exec-a", rec)
	d.Register("exec-a", m, []int64{1, 2})

	orphaned := d.Deregister("exec-a", []int64{1, 2})
	assert.ElementsMatch(t, []int64{1, 2}, orphaned)

	// a second deregister of the same id finds nothing left to orphan
	orphaned = d.Deregister("exec-a", []int64{1, 2})
	assert.Empty(t, orphaned)
}

func TestTickDispatcherDeregisterKeepsTokenWhileOtherMonitorRemains(t *testing.T) {
	d := NewTickDispatcher()
	recA, recB := &exitRecorder{}, &exitRecorder{}
	mA := newDispatchTestMonitor(t, "exec-a", recA)
	mB := newDispatchTestMonitor(t, "exec-b", recB)
	d.Register("exec-a", mA, []int64{1})
	d.Register("exec-b", mB, []int64{1})

	orphaned := d.Deregister("exec-a", []int64{1})
	assert.Empty(t, orphaned)
}
