package positionmonitor

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// HeartbeatScheduler drives periodic evaluation of every registered monitor
// even when no real ticks arrive, by calling UpdatePrices with an empty
// batch for each registry it watches (§5, "systems that need periodic
// evaluation... must feed a heartbeat tick"). An empty batch carries no
// token matches, so it writes no leg prices; evaluation still runs against
// the last known prices, which is all a sentinel tick needs to accomplish.
type HeartbeatScheduler struct {
	mu         sync.Mutex
	registries map[string]*MonitorRegistry

	cronScheduler *cron.Cron
	entryID       cron.EntryID
	running       bool
	logger        Logger
}

// NewHeartbeatScheduler builds a scheduler; call Start to begin ticking.
func NewHeartbeatScheduler(logger Logger) *HeartbeatScheduler {
	if logger == nil {
		logger = noopLogger{}
	}
	return &HeartbeatScheduler{
		registries:    make(map[string]*MonitorRegistry),
		cronScheduler: cron.New(cron.WithSeconds()),
		logger:        logger,
	}
}

// Watch registers a per-user MonitorRegistry for heartbeat evaluation.
// Re-registering the same userID replaces its registry.
func (h *HeartbeatScheduler) Watch(userID string, registry *MonitorRegistry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registries[userID] = registry
}

// Unwatch removes a user's registry from the heartbeat rotation.
func (h *HeartbeatScheduler) Unwatch(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.registries, userID)
}

// Start begins the cron job at the given interval (default 5 seconds).
// Safe to call once; a second call is a no-op.
func (h *HeartbeatScheduler) Start(intervalSeconds int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return nil
	}
	if intervalSeconds <= 0 {
		intervalSeconds = 5
	}

	entryID, err := h.cronScheduler.AddFunc(fmt.Sprintf("@every %ds", intervalSeconds), h.beat)
	if err != nil {
		return err
	}
	h.entryID = entryID
	h.cronScheduler.Start()
	h.running = true
	return nil
}

// Stop halts the cron job.
func (h *HeartbeatScheduler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.cronScheduler.Remove(h.entryID)
	h.cronScheduler.Stop()
	h.running = false
}

func (h *HeartbeatScheduler) beat() {
	h.mu.Lock()
	registries := make([]*MonitorRegistry, 0, len(h.registries))
	for _, registry := range h.registries {
		registries = append(registries, registry)
	}
	h.mu.Unlock()

	for _, registry := range registries {
		for _, monitor := range registry.Snapshot() {
			monitor.UpdatePrices(nil)
		}
	}
}
