package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: restart timers
	PhasePreUpdate              // 1: dispatch last tick's events
	PhaseUpdate                 // 2: build and reset tracks
	PhaseOutput                 // 3: diagnostics
	PhasePersist                // 4: pool snapshots
	PhaseCleanup                // 5: flush the scene destroy queue
)

// System is the interface every runtime system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
