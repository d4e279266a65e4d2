package objects

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// cloneSuffix is appended by the scene when it copies a template.
const cloneSuffix = "(Clone)"

// Registry maps logical keys to loaded templates and optional pools. It is the
// single place instances are created and recycled. Owned by one track
// pipeline; accessed only from the simulation goroutine.
type Registry struct {
	resolver  Resolver
	scene     Instantiator
	templates map[string]Template
	pools     map[string]*Pool
	origins   map[uint64]string // pool-allocated instance id → key
	closed    bool
	log       *zap.Logger
}

func NewRegistry(resolver Resolver, scene Instantiator, log *zap.Logger) *Registry {
	return &Registry{
		resolver:  resolver,
		scene:     scene,
		templates: make(map[string]Template),
		pools:     make(map[string]*Pool),
		origins:   make(map[uint64]string),
		log:       log,
	}
}

// Load resolves key and registers the resulting template.
func (r *Registry) Load(key string) (Template, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if _, ok := r.templates[key]; ok {
		r.log.Warn("object already loaded", zap.String("key", key))
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLoaded, key)
	}
	tpl, err := r.resolver.Resolve(key)
	if err != nil {
		r.log.Warn("object load failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, key, err)
	}
	if tpl == nil {
		r.log.Warn("object load returned nothing", zap.String("key", key))
		return nil, fmt.Errorf("%w: %s", ErrLoadFailure, key)
	}
	r.templates[key] = tpl
	return tpl, nil
}

// Has reports whether a template is registered for key.
func (r *Registry) Has(key string) bool {
	_, ok := r.templates[key]
	return ok
}

// HasPool reports whether a pool exists for key.
func (r *Registry) HasPool(key string) bool {
	_, ok := r.pools[key]
	return ok
}

// HasPoolFor reports whether inst was created under a key that has a pool.
func (r *Registry) HasPoolFor(inst Instance) bool {
	key, ok := r.OriginOf(inst)
	return ok && r.HasPool(key)
}

// Pool returns the pool for key.
func (r *Registry) Pool(key string) (*Pool, bool) {
	p, ok := r.pools[key]
	return p, ok
}

// CreatePool eagerly fills a pool of size instances for key. tpl, when given,
// is registered first if key has no template yet.
func (r *Registry) CreatePool(key string, size int, tpl Template) error {
	if r.closed {
		return ErrClosed
	}
	if size <= 0 {
		r.log.Warn("pool size must be positive", zap.String("key", key), zap.Int("size", size))
		return fmt.Errorf("%w: size %d for %q", ErrInvalidPoolRequest, size, key)
	}
	if key == "" {
		r.log.Warn("pool requested without a key")
		return fmt.Errorf("%w: empty key", ErrInvalidPoolRequest)
	}
	if _, ok := r.pools[key]; ok {
		r.log.Info("pool already exists", zap.String("key", key))
		return fmt.Errorf("%w: pool %s exists", ErrInvalidPoolRequest, key)
	}
	if tpl != nil {
		if _, ok := r.templates[key]; !ok {
			r.templates[key] = tpl
		}
	}
	if _, ok := r.templates[key]; !ok {
		r.log.Warn("pool requested for unloaded object", zap.String("key", key))
		return fmt.Errorf("%w: %s: %w", ErrInvalidPoolRequest, key, ErrNotLoaded)
	}

	r.pools[key] = NewPool(key, size, func() (Instance, error) {
		inst, err := r.instantiate(key)
		if err != nil {
			return nil, err
		}
		r.origins[inst.InstanceID()] = key
		return inst, nil
	}, r.scene, r.log)
	return nil
}

// Acquire returns an instance for key, from its pool when fromPool is set and
// a pool exists, otherwise freshly instantiated from the template. Only pool
// allocations are recorded as originating from key, so a fresh instance can
// never be released into a pool that did not allocate it.
func (r *Registry) Acquire(key string, fromPool bool) (Instance, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if fromPool {
		if p, ok := r.pools[key]; ok {
			return p.Next()
		}
	}
	if _, ok := r.templates[key]; !ok {
		r.log.Warn("object not loaded", zap.String("key", key))
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, key)
	}
	return r.instantiate(key)
}

// Release returns inst to the pool that allocated it.
func (r *Registry) Release(inst Instance) bool {
	if inst == nil {
		return false
	}
	key, ok := r.origins[inst.InstanceID()]
	if !ok {
		r.log.Warn("released object has no origin", zap.String("name", inst.Name()))
		return false
	}
	p, ok := r.pools[key]
	if !ok {
		r.log.Warn("released object has no pool", zap.String("key", key))
		return false
	}
	if p.Contains(inst) {
		r.log.Warn("object released more than once",
			zap.String("key", key),
			zap.Uint64("id", inst.InstanceID()),
			zap.Error(ErrDoubleRelease),
		)
		return true
	}
	p.Recycle(inst)
	return true
}

// Forget drops inst from the origin table. Callers use it after destroying a
// pool-allocated instance that will never be released.
func (r *Registry) Forget(inst Instance) {
	if inst != nil {
		delete(r.origins, inst.InstanceID())
	}
}

// OriginOf returns the key of the pool that allocated inst.
func (r *Registry) OriginOf(inst Instance) (string, bool) {
	if inst == nil {
		return "", false
	}
	key, ok := r.origins[inst.InstanceID()]
	return key, ok
}

// Stats returns a snapshot of every pool, sorted by key.
func (r *Registry) Stats() []PoolStats {
	out := make([]PoolStats, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, p.Stats())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Reset clears all templates and pools. Pooled instances are destroyed when
// the scene supports it. Only used on full teardown.
func (r *Registry) Reset() {
	destroyer, canDestroy := r.scene.(Destroyer)
	for _, p := range r.pools {
		for _, inst := range p.drain() {
			if canDestroy {
				destroyer.Destroy(inst)
			}
		}
	}
	r.templates = make(map[string]Template)
	r.pools = make(map[string]*Pool)
	r.origins = make(map[uint64]string)
}

// Shutdown resets the registry and rejects any further use.
func (r *Registry) Shutdown() {
	r.Reset()
	r.closed = true
}

func (r *Registry) instantiate(key string) (Instance, error) {
	inst, err := r.scene.Instantiate(r.templates[key])
	if err != nil {
		r.log.Warn("instantiate failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("instantiate %s: %w", key, err)
	}
	inst.SetName(trimClone(inst.Name()))
	return inst, nil
}

func trimClone(name string) string {
	before, _, found := strings.Cut(name, cloneSuffix)
	if !found {
		return name
	}
	return strings.TrimSpace(before)
}
