package objects

import (
	"fmt"

	"go.uber.org/zap"
)

// AllocFunc creates one fresh instance for a pool, bypassing any pool.
type AllocFunc func() (Instance, error)

// PoolStats is a point-in-time copy of a pool's diagnostics.
type PoolStats struct {
	Key            string
	InitialCount   int
	CurrentCount   int
	HighWaterMark  int
	TotalAllocated int
	TotalDelivered int
	TotalRecycled  int

	// PeakOutstanding is the most instances delivered and not yet recycled at
	// any one time: the pool size that would have avoided every overflow.
	PeakOutstanding int
}

// Overflow returns how many allocations happened beyond the initial fill.
func (s PoolStats) Overflow() int {
	if n := s.TotalAllocated - s.InitialCount; n > 0 {
		return n
	}
	return 0
}

// Pool keeps inactive instances of a single key on a LIFO stack.
// Accessed only from the simulation goroutine; no locks.
type Pool struct {
	key         string
	initialSize int
	highWater   int
	allocated   int
	delivered   int
	recycled    int
	peakOut     int

	items  []Instance
	pooled map[uint64]struct{}

	alloc AllocFunc
	scene Instantiator
	log   *zap.Logger
}

// NewPool eagerly allocates initialSize instances and deactivates them.
func NewPool(key string, initialSize int, alloc AllocFunc, scene Instantiator, log *zap.Logger) *Pool {
	p := &Pool{
		key:         key,
		initialSize: initialSize,
		highWater:   initialSize,
		items:       make([]Instance, 0, initialSize),
		pooled:      make(map[uint64]struct{}, initialSize),
		alloc:       alloc,
		scene:       scene,
		log:         log,
	}
	for i := 0; i < initialSize; i++ {
		inst, err := p.allocate()
		if err != nil {
			log.Warn("pool prefill allocation failed", zap.String("key", key), zap.Error(err))
			continue
		}
		p.push(inst)
	}
	return p
}

func (p *Pool) Key() string { return p.key }

// Len returns the number of instances currently waiting in the pool.
func (p *Pool) Len() int { return len(p.items) }

// Next pops the most recently recycled instance, or allocates one more when
// the pool is empty. The instance is activated and Reset before delivery.
func (p *Pool) Next() (Instance, error) {
	var inst Instance
	if n := len(p.items); n > 0 {
		inst = p.items[n-1]
		p.items[n-1] = nil
		p.items = p.items[:n-1]
		delete(p.pooled, inst.InstanceID())
	} else {
		var err error
		inst, err = p.allocate()
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", p.key, err)
		}
		p.log.Debug("pool overflow allocation",
			zap.String("key", p.key),
			zap.Int("allocated", p.allocated),
		)
	}

	p.scene.Activate(inst)
	inst.Reset()
	p.delivered++
	if out := p.allocated - len(p.items); out > p.peakOut {
		p.peakOut = out
	}
	return inst, nil
}

// Recycle deactivates the instance and pushes it back. Recycling an instance
// that is already pooled changes nothing and returns false.
func (p *Pool) Recycle(inst Instance) bool {
	if p.Contains(inst) {
		p.log.Debug("instance already pooled",
			zap.String("key", p.key),
			zap.Uint64("id", inst.InstanceID()),
		)
		return false
	}
	p.push(inst)
	if len(p.items) > p.highWater {
		p.highWater = len(p.items)
	}
	p.recycled++
	return true
}

// Contains reports whether inst is currently waiting in the pool.
func (p *Pool) Contains(inst Instance) bool {
	if inst == nil {
		return false
	}
	_, ok := p.pooled[inst.InstanceID()]
	return ok
}

func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Key:            p.key,
		InitialCount:   p.initialSize,
		CurrentCount:   len(p.items),
		HighWaterMark:  p.highWater,
		TotalAllocated: p.allocated,
		TotalDelivered: p.delivered,
		TotalRecycled:  p.recycled,

		PeakOutstanding: p.peakOut,
	}
}

// drain empties the pool and returns what it held.
func (p *Pool) drain() []Instance {
	out := p.items
	p.items = nil
	p.pooled = make(map[uint64]struct{})
	return out
}

func (p *Pool) allocate() (Instance, error) {
	inst, err := p.alloc()
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("%w: %s allocated nil", ErrLoadFailure, p.key)
	}
	p.allocated++
	return inst, nil
}

func (p *Pool) push(inst Instance) {
	p.scene.Deactivate(inst)
	p.items = append(p.items, inst)
	p.pooled[inst.InstanceID()] = struct{}{}
}
