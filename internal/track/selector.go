package track

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/roller/trackgen/internal/data"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrMissingCatalogEntry is reported when no enabled connector starts at a
// width. The selector falls back to its default type.
var ErrMissingCatalogEntry = errors.New("no connector for width")

// WeightFunc adjusts a connector's spawn weight for the connector about to be
// placed at index. A result of zero or less drops the candidate; results above
// data.MaxSpawnWeight are capped.
type WeightFunc func(spec *data.ConnectorSpec, index int) int

// Selector picks connector types by weight, excluding recently used types
// until every candidate for a width has had a turn.
type Selector struct {
	catalog  *data.ConnectorCatalog
	fallback data.ConnectorType
	rng      *rand.Rand
	weight   WeightFunc
	recent   map[data.ConnectorType]struct{}
	log      *zap.Logger
}

func NewSelector(catalog *data.ConnectorCatalog, fallback data.ConnectorType, rng *rand.Rand, log *zap.Logger) *Selector {
	return &Selector{
		catalog:  catalog,
		fallback: fallback,
		rng:      rng,
		recent:   make(map[data.ConnectorType]struct{}),
		log:      log,
	}
}

// SetWeightFunc installs a weight adjuster; nil restores catalog weights.
func (s *Selector) SetWeightFunc(fn WeightFunc) { s.weight = fn }

// Recent returns the types currently excluded.
func (s *Selector) Recent() []data.ConnectorType {
	return lo.Keys(s.recent)
}

// Clear empties the exclusion set.
func (s *Selector) Clear() {
	clear(s.recent)
}

// Next chooses the connector type to follow a segment of width w. When w has
// no enabled connector the fallback type is returned together with
// ErrMissingCatalogEntry; the build continues with it.
//
// The exclusion set is cleared only once every connector for w has been used.
// When the unused connectors all weigh zero at index, the pick is drawn from
// every positively weighted connector for w and the set is kept, so the unused
// ones still get their turn once their weight rises. When no candidate has a
// positive weight the last enabled connector for w is used.
func (s *Selector) Next(w data.RoadWidth, index int) (data.ConnectorType, error) {
	all := s.catalog.StartingWith(w)
	if len(all) == 0 {
		s.log.Warn("no connector starts at width, using fallback",
			zap.Stringer("width", w),
			zap.Stringer("fallback", s.fallback),
		)
		return s.fallback, fmt.Errorf("%w %s", ErrMissingCatalogEntry, w)
	}

	fresh := lo.Filter(all, func(spec *data.ConnectorSpec, _ int) bool {
		_, used := s.recent[spec.Type]
		return !used
	})
	if len(fresh) == 0 {
		s.Clear()
		fresh = all
	}
	candidates, weights := s.weighted(fresh, index)
	if len(candidates) == 0 {
		candidates, weights = s.weighted(all, index)
	}

	chosen := all[len(all)-1]
	if len(candidates) > 0 {
		chosen = candidates[pickIndex(weights, s.rng.IntN(lo.Sum(weights)))]
	}
	s.recent[chosen.Type] = struct{}{}
	return chosen.Type, nil
}

// weighted drops specs whose weight at index is not positive and returns the
// rest with their weights, each capped at data.MaxSpawnWeight.
func (s *Selector) weighted(specs []*data.ConnectorSpec, index int) ([]*data.ConnectorSpec, []int) {
	out := make([]*data.ConnectorSpec, 0, len(specs))
	weights := make([]int, 0, len(specs))
	for _, spec := range specs {
		w := spec.SpawnWeight
		if s.weight != nil {
			w = s.weight(spec, index)
		}
		if w > 0 {
			out = append(out, spec)
			weights = append(weights, min(w, data.MaxSpawnWeight))
		}
	}
	return out, weights
}

// pickIndex walks cumulative weights and returns the first index whose
// bracket [sum before, sum including) contains draw. Non-positive weights
// never match. Falls back to the last index.
func pickIndex(weights []int, draw int) int {
	cum := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		if draw < cum {
			return i
		}
	}
	return len(weights) - 1
}
