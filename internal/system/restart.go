package system

import (
	"time"

	"github.com/roller/trackgen/internal/core/event"
	coresys "github.com/roller/trackgen/internal/core/system"
)

// RestartSchedulerSystem requests a run restart every configured period and
// on demand. Phase 0 (Input).
type RestartSchedulerSystem struct {
	bus     *event.Bus
	every   interval
	rebuild bool
	pending *event.RestartRequested
}

func NewRestartSchedulerSystem(bus *event.Bus, every time.Duration, rebuild bool) *RestartSchedulerSystem {
	return &RestartSchedulerSystem{bus: bus, every: interval{period: every}, rebuild: rebuild}
}

func (s *RestartSchedulerSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Request queues a restart for the next tick. A later request replaces an
// earlier one that has not been emitted yet.
func (s *RestartSchedulerSystem) Request(rebuild bool, reason string) {
	s.pending = &event.RestartRequested{Rebuild: rebuild, Reason: reason}
}

func (s *RestartSchedulerSystem) Update(dt time.Duration) {
	if s.pending != nil {
		event.Emit(s.bus, *s.pending)
		s.pending = nil
		s.every.elapsed = 0
		return
	}
	if s.every.due(dt) {
		event.Emit(s.bus, event.RestartRequested{Rebuild: s.rebuild, Reason: "timer"})
	}
}
