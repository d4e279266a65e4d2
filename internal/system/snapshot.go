package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/roller/trackgen/internal/core/event"
	coresys "github.com/roller/trackgen/internal/core/system"
	"github.com/roller/trackgen/internal/objects"
	"go.uber.org/zap"
)

// SnapshotStore persists pool statistics. Implemented by persist.PoolStatsRepo.
type SnapshotStore interface {
	Save(ctx context.Context, buildID uuid.UUID, stats []objects.PoolStats) error
}

// PoolSnapshotSystem periodically saves pool statistics tagged with the
// current build. Phase 4 (Persist).
type PoolSnapshotSystem struct {
	reg     *objects.Registry
	store   SnapshotStore
	every   interval
	timeout time.Duration
	buildID uuid.UUID
	saved   int
	log     *zap.Logger
}

func NewPoolSnapshotSystem(reg *objects.Registry, store SnapshotStore, bus *event.Bus, every, timeout time.Duration, log *zap.Logger) *PoolSnapshotSystem {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &PoolSnapshotSystem{
		reg:     reg,
		store:   store,
		every:   interval{period: every},
		timeout: timeout,
		log:     log,
	}
	event.Subscribe(bus, func(ev event.TrackBuilt) {
		s.buildID = ev.BuildID
	})
	return s
}

func (s *PoolSnapshotSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PoolSnapshotSystem) Update(dt time.Duration) {
	if s.every.due(dt) {
		s.Flush()
	}
}

// Flush saves a snapshot immediately. Called on shutdown.
func (s *PoolSnapshotSystem) Flush() {
	stats := s.reg.Stats()
	if len(stats) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.store.Save(ctx, s.buildID, stats); err != nil {
		s.log.Error("pool snapshot failed", zap.Error(err))
		return
	}
	s.saved++
	s.log.Debug("pool snapshot saved",
		zap.String("build_id", s.buildID.String()),
		zap.Int("pools", len(stats)),
	)
}

// Saved returns how many snapshots were written.
func (s *PoolSnapshotSystem) Saved() int { return s.saved }
