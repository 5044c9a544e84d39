package positionmonitor

import "sync"

// TickDispatcher is the per-user fan-out from tick batches to the
// PositionMonitors that reference any token in the batch. It is stateless
// with respect to prices; all price state lives in the LegBooks it dispatches
// into.
type TickDispatcher struct {
	mu sync.RWMutex
	// token -> execution_id -> monitor
	byToken map[int64]map[string]*PositionMonitor
}

func NewTickDispatcher() *TickDispatcher {
	return &TickDispatcher{byToken: make(map[int64]map[string]*PositionMonitor)}
}

// Register adds mappings for every token the monitor references.
func (d *TickDispatcher) Register(executionID string, monitor *PositionMonitor, tokens []int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, token := range tokens {
		monitors, ok := d.byToken[token]
		if !ok {
			monitors = make(map[string]*PositionMonitor)
			d.byToken[token] = monitors
		}
		monitors[executionID] = monitor
	}
}

// Deregister removes mappings for the given tokens and returns the subset
// that now have zero monitors interested, for the caller to unsubscribe
// upstream.
func (d *TickDispatcher) Deregister(executionID string, tokens []int64) []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	var orphaned []int64
	for _, token := range tokens {
		monitors, ok := d.byToken[token]
		if !ok {
			continue
		}
		delete(monitors, executionID)
		if len(monitors) == 0 {
			delete(d.byToken, token)
			orphaned = append(orphaned, token)
		}
	}
	return orphaned
}

// Dispatch collects the set of distinct monitors referenced by any token in
// the batch and calls UpdatePrices on each with the full batch. The common
// case of a single matching monitor avoids allocating a set.
func (d *TickDispatcher) Dispatch(ticks []Tick) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var single *PositionMonitor
	var found int
	var set map[*PositionMonitor]struct{}

	for _, tick := range ticks {
		monitors, ok := d.byToken[tick.InstrumentToken]
		if !ok {
			continue
		}
		for _, monitor := range monitors {
			if set != nil {
				set[monitor] = struct{}{}
				continue
			}
			if found == 0 {
				single = monitor
				found = 1
				continue
			}
			if monitor == single {
				continue
			}
			set = make(map[*PositionMonitor]struct{}, found+1)
			set[single] = struct{}{}
			set[monitor] = struct{}{}
			found = 2
		}
	}

	if found == 0 {
		return
	}
	if set == nil {
		single.UpdatePrices(ticks)
		return
	}
	for monitor := range set {
		monitor.UpdatePrices(ticks)
	}
}
