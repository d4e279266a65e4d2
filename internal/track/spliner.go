package track

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/roller/trackgen/internal/data"
	"github.com/roller/trackgen/internal/objects"
	"github.com/roller/trackgen/internal/scene"
	"github.com/roller/trackgen/internal/spline"
	"go.uber.org/zap"
)

// SplineOptions tunes node placement and decoration scatter.
type SplineOptions struct {
	PerilKey          string
	CollectableKey    string
	PerilStep         float64 // normalized arc length between perils
	PerilOffset       float64 // lateral distance from the centerline
	CollectableHeight float64
	CollectableJitter float64 // fraction of the rendered half-width
	MaxNodes          int     // per segment, pinned nodes included
	BranchOffset      float64 // sideways push of branch nodes after a split
}

// DefaultSplineOptions mirrors the defaults in config.
func DefaultSplineOptions() SplineOptions {
	return SplineOptions{
		PerilStep:         0.2,
		PerilOffset:       4,
		CollectableHeight: 1.5,
		CollectableJitter: 0.5,
		MaxNodes:          512,
		BranchOffset:      10,
	}
}

// SplineBuilder fills a segment's node list so it joins two connectors, then
// scatters perils and collectables along the result.
type SplineBuilder struct {
	reg   *objects.Registry
	graph *scene.Graph
	rng   *rand.Rand
	opts  SplineOptions
	log   *zap.Logger
}

func NewSplineBuilder(reg *objects.Registry, graph *scene.Graph, rng *rand.Rand, opts SplineOptions, log *zap.Logger) *SplineBuilder {
	if opts.PerilStep <= 0 {
		opts.PerilStep = 0.2
	}
	if opts.MaxNodes < 2*AnchorCount {
		opts.MaxNodes = DefaultSplineOptions().MaxNodes
	}
	if opts.BranchOffset <= 0 {
		opts.BranchOffset = DefaultSplineOptions().BranchOffset
	}
	return &SplineBuilder{reg: reg, graph: graph, rng: rng, opts: opts, log: log}
}

// Populate builds seg between start and end. end is moved so its start
// anchors follow the generated nodes. A segment leaving a split connector also
// gets a branch spline.
func (b *SplineBuilder) Populate(seg *Segment, start, end *Connector, targetLength float64, index int) error {
	if seg == nil || start == nil || end == nil {
		return errors.New("populate: segment and both connectors are required")
	}
	seg.obj.SetName(fmt.Sprintf("%s_%d", seg.baseName, index))
	sp := seg.spline
	sp.Clear()
	seg.interior = seg.interior[:0]
	seg.clearBranch()

	for i := 0; i < AnchorCount; i++ {
		b.addNode(seg, start.EndAnchor(i))
	}

	spec := seg.spec
	for sp.Length() < targetLength {
		if sp.Len()+AnchorCount >= b.opts.MaxNodes {
			b.log.Warn("segment hit node cap before target length",
				zap.String("segment", seg.obj.Name()),
				zap.Int("nodes", sp.Len()),
				zap.Float64("length", sp.Length()),
				zap.Float64("target", targetLength),
			)
			break
		}
		j := spec.JitterAt(sp.Length() / targetLength)
		pos := sp.Last().Position.
			Add(spline.Forward.Scale(spec.ForwardStep)).
			Add(spline.Right.Scale(b.uniform(j.MinHorizontal, j.MaxHorizontal))).
			Add(spline.Up.Scale(b.uniform(j.MinVertical, j.MaxVertical)))
		seg.interior = append(seg.interior, b.addNode(seg, pos))
	}

	lead := end.AnchorSpread() + spec.ForwardStep
	b.graph.SetPosition(end.obj, sp.Last().Position.Add(spline.Forward.Scale(lead)))

	for i := 0; i < AnchorCount; i++ {
		b.addNode(seg, end.StartAnchor(i))
	}

	if start.Type() == data.ConnectorSplit {
		b.branch(seg)
	}
	if seg.Width() == data.WidthLarge {
		b.scatterPerils(seg)
	}
	b.scatterCollectables(seg)
	return nil
}

func (b *SplineBuilder) addNode(seg *Segment, pos spline.Vec3) *spline.Node {
	n := seg.spline.Append(pos)
	n.Name = fmt.Sprintf("Node_%d", seg.spline.Len()-1)
	seg.spline.Update()
	return n
}

// branch copies seg's nodes into its branch spline and pushes every fifth
// interior node, starting with the fourth, sideways by the branch offset in a
// random direction. The pinned nodes are shared with the main road, so the
// branch leaves and rejoins it at the connectors.
func (b *SplineBuilder) branch(seg *Segment) {
	br := seg.branchSpline()
	nodes := seg.spline.Nodes()
	interior := 0
	for i, n := range nodes {
		pos := n.Position
		if i >= AnchorCount && i < len(nodes)-AnchorCount {
			if interior%5 == 3 {
				side := 1.0
				if b.rng.Float64() < 0.5 {
					side = -1
				}
				pos = pos.Add(spline.Right.Scale(side * b.opts.BranchOffset))
			}
			interior++
		}
		br.Append(pos).Name = n.Name
	}
	br.Update()
}

func (b *SplineBuilder) scatterPerils(seg *Segment) {
	if b.opts.PerilKey == "" {
		return
	}
	sp := seg.spline
	side := SideLeft
	for k := 1; float64(k)*b.opts.PerilStep < 1-1e-9; k++ {
		t := float64(k) * b.opts.PerilStep
		lateral := spline.Up.Cross(sp.TangentAt(t)).Normalize()
		if lateral == spline.Zero {
			lateral = spline.Right
		}
		pos := sp.PointAt(t).Add(lateral.Scale(float64(side) * b.opts.PerilOffset))

		obj, err := b.acquire(b.opts.PerilKey)
		if err != nil {
			b.log.Warn("peril unavailable", zap.String("segment", seg.obj.Name()), zap.Error(err))
			return
		}
		if p, ok := obj.Payload.(*Peril); ok {
			p.Side = side
		}
		b.graph.SetParent(obj, seg.obj)
		b.graph.SetPosition(obj, pos)
		seg.perils = append(seg.perils, obj)
		side = -side
	}
}

func (b *SplineBuilder) scatterCollectables(seg *Segment) {
	placed := 0
	if b.opts.CollectableKey != "" {
		for _, node := range seg.interior {
			t := seg.spline.ParamOf(node)
			jitter := b.uniform(-1, 1) * b.opts.CollectableJitter * seg.HalfWidthAt(t)
			pos := node.Position.
				Add(spline.Up.Scale(b.opts.CollectableHeight)).
				Add(spline.Right.Scale(jitter))

			var obj *scene.Object
			if placed < len(seg.collectables) {
				obj = seg.collectables[placed]
				b.graph.Activate(obj)
				obj.Reset()
			} else {
				var err error
				obj, err = b.acquire(b.opts.CollectableKey)
				if err != nil {
					b.log.Warn("collectable unavailable", zap.String("segment", seg.obj.Name()), zap.Error(err))
					break
				}
				b.graph.SetParent(obj, seg.obj)
				seg.collectables = append(seg.collectables, obj)
			}
			b.graph.SetPosition(obj, pos)
			placed++
		}
	}
	for _, extra := range seg.collectables[placed:] {
		b.graph.Deactivate(extra)
	}
	seg.placed = placed
}

func (b *SplineBuilder) acquire(key string) (*scene.Object, error) {
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

func (b *SplineBuilder) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + b.rng.Float64()*(hi-lo)
}
