package system

import (
	"time"

	"github.com/roller/trackgen/internal/core/event"
	coresys "github.com/roller/trackgen/internal/core/system"
	"github.com/roller/trackgen/internal/scene"
	"github.com/roller/trackgen/internal/track"
	"go.uber.org/zap"
)

// TrackSystem owns the track lifecycle: the first build, rebuilds and
// collectable resets on restart. A rebuild runs to completion inside one
// tick. After a failed build it waits for the next restart request.
// Phase 2 (Update).
type TrackSystem struct {
	builder *track.Builder
	graph   *scene.Graph
	bus     *event.Bus
	log     *zap.Logger

	restart  *event.RestartRequested
	builds   int
	restarts int
	failures int
}

func NewTrackSystem(builder *track.Builder, graph *scene.Graph, bus *event.Bus, log *zap.Logger) *TrackSystem {
	s := &TrackSystem{builder: builder, graph: graph, bus: bus, log: log}
	event.Subscribe(bus, func(ev event.RestartRequested) {
		if s.restart != nil && s.restart.Rebuild {
			return // a pending rebuild already covers a reset
		}
		s.restart = &ev
	})
	return s
}

func (s *TrackSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TrackSystem) Update(_ time.Duration) {
	req := s.restart
	s.restart = nil

	switch {
	case req == nil:
		if s.builder.Track() == nil && s.failures == 0 {
			s.build("initial")
		}
	case req.Rebuild || s.builder.Track() == nil:
		s.build(req.Reason)
	default:
		s.resetRun(req.Reason)
	}
}

func (s *TrackSystem) build(reason string) {
	t, err := s.builder.Build()
	if err != nil {
		s.failures++
		s.builder.Reset()
		s.log.Error("track build failed", zap.String("reason", reason), zap.Error(err))
		event.Emit(s.bus, event.BuildFailed{Err: err})
		return
	}
	s.builds++
	event.Emit(s.bus, event.TrackBuilt{
		BuildID:    t.BuildID,
		Number:     t.Number,
		Connectors: len(t.Connectors),
		Segments:   len(t.Segments),
		Perils:     t.PerilCount(),
		Branches:   t.BranchCount(),
		Length:     t.Length(),
	})
}

func (s *TrackSystem) resetRun(reason string) {
	t := s.builder.Track()
	t.ResetCollectables(s.graph)
	s.restarts++
	s.log.Debug("run restarted", zap.String("reason", reason), zap.String("build_id", t.BuildID.String()))
	event.Emit(s.bus, event.TrackReset{BuildID: t.BuildID, Collectables: t.CollectableCount()})
}

// Counts returns successful builds, run restarts without a build and failed
// builds since start.
func (s *TrackSystem) Counts() (builds, restarts, failures int) {
	return s.builds, s.restarts, s.failures
}
