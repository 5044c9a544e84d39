package positionmonitor

import "sync"

// MonitorRegistry is the per-user container of active PositionMonitors,
// keyed by execution_id. It owns the monitors; the dispatcher holds only
// weak (execution-id) associations.
type MonitorRegistry struct {
	mu         sync.RWMutex
	byExecID   map[string]*PositionMonitor
	tokensByID map[string][]int64
	dispatcher *TickDispatcher
	logger     Logger
}

func NewMonitorRegistry(dispatcher *TickDispatcher, logger Logger) *MonitorRegistry {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MonitorRegistry{
		byExecID:   make(map[string]*PositionMonitor),
		tokensByID: make(map[string][]int64),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// StartMonitoring registers the monitor's tokens with the dispatcher.
// Idempotent: a duplicate execution_id logs a warning and returns nil.
func (r *MonitorRegistry) StartMonitoring(executionID string, monitor *PositionMonitor, tokens []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byExecID[executionID]; exists {
		r.logger.Warn("duplicate start_monitoring ignored", "executionID", executionID)
		return nil
	}

	r.byExecID[executionID] = monitor
	r.tokensByID[executionID] = tokens
	r.dispatcher.Register(executionID, monitor, tokens)
	return nil
}

// StopMonitoring removes the monitor, deregisters its tokens, and stops it.
// Unknown ids are a no-op.
func (r *MonitorRegistry) StopMonitoring(executionID string) []int64 {
	r.mu.Lock()
	monitor, exists := r.byExecID[executionID]
	tokens := r.tokensByID[executionID]
	if !exists {
		r.mu.Unlock()
		return nil
	}
	delete(r.byExecID, executionID)
	delete(r.tokensByID, executionID)
	r.mu.Unlock()

	orphaned := r.dispatcher.Deregister(executionID, tokens)
	monitor.Stop()
	return orphaned
}

func (r *MonitorRegistry) Get(executionID string) (*PositionMonitor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	monitor, ok := r.byExecID[executionID]
	return monitor, ok
}

func (r *MonitorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byExecID)
}

// Dispatch forwards a tick batch to the registry's TickDispatcher, which
// fans it out only to the monitors whose legs reference a token in the
// batch.
func (r *MonitorRegistry) Dispatch(ticks []Tick) {
	r.dispatcher.Dispatch(ticks)
}

func (r *MonitorRegistry) Snapshot() []*PositionMonitor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]*PositionMonitor, 0, len(r.byExecID))
	for _, monitor := range r.byExecID {
		snapshot = append(snapshot, monitor)
	}
	return snapshot
}
