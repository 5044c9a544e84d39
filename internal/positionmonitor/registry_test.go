package positionmonitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorRegistryStartMonitoringIdempotent(t *testing.T) {
	dispatcher := NewTickDispatcher()
	registry := NewMonitorRegistry(dispatcher, nil)
	rec := &exitRecorder{}
	m := newDispatchTestMonitor(t, "exec-a", rec)

	require.NoError(t, registry.StartMonitoring("exec-a", m, []int64{1}))
	assert.Equal(t, 1, registry.Count())

	// duplicate start is a no-op, not an error
	other := newDispatchTestMonitor(t, "exec-a", rec)
	require.NoError(t, registry.StartMonitoring("exec-a", other, []int64{2}))
	assert.Equal(t, 1, registry.Count())

	got, ok := registry.Get("exec-a")
	require.True(t, ok)
	assert.Same(t, m, got)
}

func TestMonitorRegistryStopMonitoringStopsAndOrphans(t *testing.T) {
	dispatcher := NewTickDispatcher()
	registry := NewMonitorRegistry(dispatcher, nil)
	rec := &exitRecorder{}
	m := newDispatchTestMonitor(t, "exec-a", rec)
	require.NoError(t, registry.StartMonitoring("exec-a", m, []int64{1}))

	orphaned := registry.StopMonitoring("exec-a")
	assert.ElementsMatch(t, []int64{1}, orphaned)
	assert.False(t, m.Active())

	_, ok := registry.Get("exec-a")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Count())
}

func TestMonitorRegistryStopMonitoringUnknownIDIsNoop(t *testing.T) {
	dispatcher := NewTickDispatcher()
	registry := NewMonitorRegistry(dispatcher, nil)
	assert.Nil(t, registry.StopMonitoring("does-not-exist"))
}

func TestMonitorRegistrySnapshot(t *testing.T) {
	dispatcher := NewTickDispatcher()
	registry := NewMonitorRegistry(dispatcher, nil)
	rec := &exitRecorder{}
	mA := newDispatchTestMonitor(t, "exec-a", rec)
	mB := newDispatchTestMonitor(t, "exec-b", rec)
	require.NoError(t, registry.StartMonitoring("exec-a", mA, []int64{1}))
	require.NoError(t, registry.StartMonitoring("exec-b", mB, []int64{2}))

	snapshot := registry.Snapshot()
	assert.Len(t, snapshot, 2)
}
