package track

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/roller/trackgen/internal/data"
	"github.com/roller/trackgen/internal/objects"
	"github.com/roller/trackgen/internal/scene"
	"github.com/roller/trackgen/internal/spline"
	"go.uber.org/zap"
)

// Options configures a Builder.
type Options struct {
	SegmentCount     int
	TargetLength     float64
	EntryConnector   data.ConnectorType
	DefaultConnector data.ConnectorType
	Seed             string // empty = nondeterministic
	Spline           SplineOptions
}

// LengthFunc overrides the target length of segment index. Results of zero
// or less keep base.
type LengthFunc func(index int, width data.RoadWidth, base float64) float64

// Builder assembles tracks from the catalog and recycles them on reset.
// Accessed only from the simulation goroutine.
type Builder struct {
	reg      *objects.Registry
	graph    *scene.Graph
	catalog  *data.ConnectorCatalog
	segments *data.SegmentTable
	selector *Selector
	spliner  *SplineBuilder
	opts     Options
	length   LengthFunc
	rng      *rand.Rand
	track    *Track
	builds   int
	log      *zap.Logger
}

func NewBuilder(reg *objects.Registry, graph *scene.Graph, catalog *data.ConnectorCatalog, segments *data.SegmentTable, opts Options, log *zap.Logger) (*Builder, error) {
	if opts.SegmentCount < 0 {
		return nil, fmt.Errorf("segment count %d is negative", opts.SegmentCount)
	}
	if opts.TargetLength <= 0 {
		return nil, fmt.Errorf("target length %.2f must be positive", opts.TargetLength)
	}
	if err := catalog.Require(opts.EntryConnector, opts.DefaultConnector); err != nil {
		return nil, err
	}

	rng := NewRand(opts.Seed)
	return &Builder{
		reg:      reg,
		graph:    graph,
		catalog:  catalog,
		segments: segments,
		selector: NewSelector(catalog, opts.DefaultConnector, rng, log),
		spliner:  NewSplineBuilder(reg, graph, rng, opts.Spline, log),
		opts:     opts,
		rng:      rng,
		log:      log,
	}, nil
}

func (b *Builder) Selector() *Selector { return b.selector }

// SetLengthFunc installs a per-segment target length override.
func (b *Builder) SetLengthFunc(fn LengthFunc) { b.length = fn }

// Track returns the current track, or nil before the first build.
func (b *Builder) Track() *Track { return b.track }

// Build assembles a new track, resetting the current one first. On error the
// partially built track is returned and still owned by the builder.
func (b *Builder) Build() (*Track, error) {
	b.Reset()
	b.builds++
	t := &Track{BuildID: uuid.New(), Number: b.builds}
	b.track = t

	current, err := b.acquireConnector(b.opts.EntryConnector, 0)
	if err != nil {
		return t, fmt.Errorf("entry connector: %w", err)
	}
	b.graph.SetPosition(current.obj, spline.Zero)
	t.Connectors = append(t.Connectors, current)

	for i := 0; i < b.opts.SegmentCount; i++ {
		width := current.spec.EndWidth
		seg, err := b.acquireSegment(width)
		if err != nil {
			return t, fmt.Errorf("segment %d: %w", i, err)
		}
		t.Segments = append(t.Segments, seg)

		nextType, err := b.selector.Next(width, i+1)
		if err != nil && !errors.Is(err, ErrMissingCatalogEntry) {
			return t, fmt.Errorf("connector %d: %w", i+1, err)
		}
		next, err := b.acquireConnector(nextType, i+1)
		if err != nil {
			return t, fmt.Errorf("connector %d: %w", i+1, err)
		}
		t.Connectors = append(t.Connectors, next)

		if err := b.spliner.Populate(seg, current, next, b.targetLength(i, width), i); err != nil {
			return t, fmt.Errorf("segment %d: %w", i, err)
		}
		current = next
	}

	b.log.Info("track built",
		zap.String("build_id", t.BuildID.String()),
		zap.Int("number", t.Number),
		zap.Int("segments", len(t.Segments)),
		zap.Int("perils", t.PerilCount()),
		zap.Int("collectables", t.CollectableCount()),
		zap.Float64("length", t.Length()),
	)
	return t, nil
}

// Rebuild resets the current track and builds a new one.
func (b *Builder) Rebuild() (*Track, error) {
	return b.Build()
}

// Reset returns every connector, segment and peril of the current track to
// the registry. Collectables stay hidden under their segment for reuse.
func (b *Builder) Reset() {
	t := b.track
	if t == nil {
		return
	}
	for _, seg := range t.Segments {
		for _, p := range seg.takePerils() {
			b.graph.SetParent(p, nil)
			b.release(p)
		}
		for _, c := range seg.collectables {
			b.graph.Deactivate(c)
		}
		seg.placed = 0
		b.release(seg.obj)
	}
	for _, c := range t.Connectors {
		b.release(c.obj)
	}
	b.track = nil
	b.log.Debug("track reset", zap.String("build_id", t.BuildID.String()))
}

func (b *Builder) targetLength(index int, width data.RoadWidth) float64 {
	base := b.opts.TargetLength
	if b.length == nil {
		return base
	}
	if v := b.length(index, width, base); v > 0 {
		return v
	}
	return base
}

func (b *Builder) acquireConnector(t data.ConnectorType, index int) (*Connector, error) {
	spec, ok := b.catalog.Get(t)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrMissingCatalogEntry, t)
	}
	obj, err := b.acquire(spec.Asset)
	if err != nil {
		return nil, err
	}
	c, ok := obj.Payload.(*Connector)
	if !ok {
		b.release(obj)
		return nil, fmt.Errorf("asset %s is not a connector", spec.Asset)
	}
	obj.SetName(fmt.Sprintf("%s_%d", c.baseName, index))
	return c, nil
}

func (b *Builder) acquireSegment(w data.RoadWidth) (*Segment, error) {
	spec, ok := b.segments.Get(w)
	if !ok {
		return nil, fmt.Errorf("no segment for width %s", w)
	}
	obj, err := b.acquire(spec.Asset)
	if err != nil {
		return nil, err
	}
	s, ok := obj.Payload.(*Segment)
	if !ok {
		b.release(obj)
		return nil, fmt.Errorf("asset %s is not a segment", spec.Asset)
	}
	return s, nil
}

func (b *Builder) acquire(key string) (*scene.Object, error) {
	inst, err := b.reg.Acquire(key, true)
	if err != nil {
		return nil, err
	}
	obj, ok := inst.(*scene.Object)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected instance %T", key, inst)
	}
	return obj, nil
}

// release pools obj, or destroys it with its subtree when its key has no pool.
func (b *Builder) release(obj *scene.Object) {
	if b.reg.HasPoolFor(obj) {
		b.reg.Release(obj)
		return
	}
	b.forget(obj)
	b.graph.Destroy(obj)
}

func (b *Builder) forget(obj *scene.Object) {
	b.reg.Forget(obj)
	for _, c := range obj.Children() {
		b.forget(c)
	}
}
