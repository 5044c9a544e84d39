package positionmonitor

import (
	"fmt"
	"sync"
	"time"
)

// TimeBasedForcedExit exits the whole position once the wall clock, compared
// as time-of-day in a configured zone, reaches a configured cutoff.
type TimeBasedForcedExit struct {
	enabled  bool
	cutoff   timeOfDay
	location *time.Location
	zoneName string

	mu            sync.Mutex
	triggered     bool
	manualTrigger bool
	zoneWarnOnce  sync.Once
	logger        Logger
}

type timeOfDay struct {
	hour   int
	minute int
}

func parseTimeOfDay(hhmm string) (timeOfDay, error) {
	var tod timeOfDay
	_, err := fmt.Sscanf(hhmm, "%d:%d", &tod.hour, &tod.minute)
	if err != nil {
		return timeOfDay{}, fmt.Errorf("invalid forced exit time %q: %w", hhmm, err)
	}
	return tod, nil
}

func (t timeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// newTimeBasedForcedExit constructs the strategy. zoneName should be an IANA
// name such as "Asia/Kolkata"; on lookup failure it falls back to time.Local
// and logs once (§7, "Time zone lookup failure").
func newTimeBasedForcedExit(enabled bool, cutoffHHMM, zoneName string, logger Logger) (*TimeBasedForcedExit, error) {
	s := &TimeBasedForcedExit{enabled: enabled, zoneName: zoneName, logger: logger}
	if logger == nil {
		s.logger = noopLogger{}
	}
	if !enabled {
		return s, nil
	}

	cutoff, err := parseTimeOfDay(cutoffHHMM)
	if err != nil {
		return nil, err
	}
	s.cutoff = cutoff

	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		s.zoneWarnOnce.Do(func() {
			s.logger.Warn("forced exit time zone lookup failed, falling back to local time", "zone", zoneName, "error", err.Error())
		})
		loc = time.Local
	}
	s.location = loc
	return s, nil
}

func (s *TimeBasedForcedExit) Priority() int { return PriorityTimeBasedForcedExit }

func (s *TimeBasedForcedExit) IsEnabled(ctx *EvalContext) bool {
	return s.enabled
}

func (s *TimeBasedForcedExit) Evaluate(ctx *EvalContext) ExitAction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.triggered {
		return NoExit
	}

	if s.manualTrigger || s.pastCutoff(ctx.Now) {
		s.triggered = true
		return ExitAll(fmt.Sprintf("%s @ %s", ReasonTimeBasedForcedExit, s.cutoff.String()))
	}
	return NoExit
}

func (s *TimeBasedForcedExit) pastCutoff(now time.Time) bool {
	local := now.In(s.location)
	if local.Hour() > s.cutoff.hour {
		return true
	}
	if local.Hour() == s.cutoff.hour && local.Minute() >= s.cutoff.minute {
		return true
	}
	return false
}

// TriggerManually forces the next Evaluate call to emit ExitAll. Idempotent:
// a second call after the strategy has already triggered has no effect and
// the monitor-level TriggerForcedExit reports false.
func (s *TimeBasedForcedExit) TriggerManually() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.triggered {
		return false
	}
	s.manualTrigger = true
	return true
}
