package system

import (
	"time"

	coresys "github.com/roller/trackgen/internal/core/system"
	"github.com/roller/trackgen/internal/objects"
	"go.uber.org/zap"
)

// DiagnosticsSystem periodically logs pool statistics and can dump the
// formatted report to a timestamped file. Phase 3 (Output).
type DiagnosticsSystem struct {
	reg     *objects.Registry
	every   interval
	dir     string
	filters []string
	log     *zap.Logger
}

func NewDiagnosticsSystem(reg *objects.Registry, every time.Duration, dumpDir string, filters []string, log *zap.Logger) *DiagnosticsSystem {
	return &DiagnosticsSystem{
		reg:     reg,
		every:   interval{period: every},
		dir:     dumpDir,
		filters: filters,
		log:     log,
	}
}

func (s *DiagnosticsSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *DiagnosticsSystem) Update(dt time.Duration) {
	if s.every.due(dt) {
		s.LogStats()
	}
}

// LogStats writes one log line per pool matching the filters.
func (s *DiagnosticsSystem) LogStats() {
	for _, st := range objects.FilterStats(s.reg.Stats(), s.filters...) {
		s.log.Info("pool",
			zap.String("key", st.Key),
			zap.Int("initial", st.InitialCount),
			zap.Int("current", st.CurrentCount),
			zap.Int("high_water", st.HighWaterMark),
			zap.Int("allocated", st.TotalAllocated),
			zap.Int("delivered", st.TotalDelivered),
			zap.Int("recycled", st.TotalRecycled),
			zap.Int("overflow", st.Overflow()),
			zap.Int("peak_outstanding", st.PeakOutstanding),
		)
	}
}

// Dump writes the report file and returns its path.
func (s *DiagnosticsSystem) Dump(now time.Time) (string, error) {
	path, err := objects.DumpReport(s.dir, now, s.reg.Stats(), s.filters...)
	if err != nil {
		s.log.Error("diagnostics dump failed", zap.Error(err))
		return "", err
	}
	s.log.Info("diagnostics dumped", zap.String("path", path))
	return path, nil
}
