package positionmonitor

import "sync"

// SessionManager owns one MonitorRegistry (and the TickDispatcher backing
// it) per user, created lazily on first use. It is the top-level object
// cmd/server wires into the HTTP surface and the heartbeat scheduler.
type SessionManager struct {
	mu         sync.RWMutex
	registries map[string]*MonitorRegistry
	logger     Logger
}

// NewSessionManager constructs an empty SessionManager.
func NewSessionManager(logger Logger) *SessionManager {
	if logger == nil {
		logger = noopLogger{}
	}
	return &SessionManager{
		registries: make(map[string]*MonitorRegistry),
		logger:     logger,
	}
}

// Registry returns the MonitorRegistry for a user, creating it on first
// access. Matches the lookup signature monitor.NewHandler expects.
func (s *SessionManager) Registry(userID string) (*MonitorRegistry, bool) {
	s.mu.RLock()
	registry, ok := s.registries[userID]
	s.mu.RUnlock()
	if ok {
		return registry, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if registry, ok := s.registries[userID]; ok {
		return registry, true
	}
	registry = NewMonitorRegistry(NewTickDispatcher(), s.logger)
	s.registries[userID] = registry
	return registry, true
}

// WatchAll registers every registry known at the time of the call with the
// heartbeat scheduler. Registries created afterward must be watched
// individually via HeartbeatScheduler.Watch.
func (s *SessionManager) WatchAll(heartbeat *HeartbeatScheduler) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for userID, registry := range s.registries {
		heartbeat.Watch(userID, registry)
	}
}
