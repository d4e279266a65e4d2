package system

import (
	"time"

	coresys "github.com/roller/trackgen/internal/core/system"
	"github.com/roller/trackgen/internal/scene"
)

// CleanupSystem flushes the scene's deferred destroy queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	graph     *scene.Graph
	destroyed int
}

func NewCleanupSystem(graph *scene.Graph) *CleanupSystem {
	return &CleanupSystem{graph: graph}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.destroyed += s.graph.FlushDestroyQueue()
}

// Destroyed returns how many objects have been removed since start.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
