package spline

import "sort"

// samplesPerSpan controls the arc-length table resolution of Update.
const samplesPerSpan = 16

// Node is a single control point. Nodes are linked in order; a node belongs
// to exactly one Spline.
type Node struct {
	Name     string
	Position Vec3

	prev, next *Node
	owner      *Spline
}

func (n *Node) Prev() *Node { return n.prev }
func (n *Node) Next() *Node { return n.next }

type sample struct {
	span int
	u    float64
	dist float64 // cumulative arc length at this sample
}

// Spline is a Catmull-Rom curve through an ordered list of nodes.
//
// Length and parametric queries read the arc-length table built by Update.
// Update walks the entire curve, so callers append a batch of nodes and
// recompute once per append only while constructing a road.
type Spline struct {
	head, tail *Node
	count      int

	nodes   []*Node // index cache rebuilt by Update
	samples []sample
	length  float64
	dirty   bool
}

func New() *Spline {
	return &Spline{}
}

// Append adds a node after the current tail.
func (s *Spline) Append(pos Vec3) *Node {
	return s.InsertAfter(s.tail, pos)
}

// InsertAfter links a new node directly after the given node. A nil node
// inserts at the head.
func (s *Spline) InsertAfter(after *Node, pos Vec3) *Node {
	n := &Node{Position: pos, owner: s}
	if after == nil || after.owner != s {
		n.next = s.head
		if s.head != nil {
			s.head.prev = n
		}
		s.head = n
		if s.tail == nil {
			s.tail = n
		}
	} else {
		n.prev = after
		n.next = after.next
		if after.next != nil {
			after.next.prev = n
		} else {
			s.tail = n
		}
		after.next = n
	}
	s.count++
	s.dirty = true
	return n
}

// Remove unlinks a node owned by this spline.
func (s *Spline) Remove(n *Node) {
	if n == nil || n.owner != s {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next, n.owner = nil, nil, nil
	s.count--
	s.dirty = true
}

// Clear drops every node and the computed length.
func (s *Spline) Clear() {
	for n := s.head; n != nil; {
		next := n.next
		n.prev, n.next, n.owner = nil, nil, nil
		n = next
	}
	s.head, s.tail = nil, nil
	s.count = 0
	s.nodes = s.nodes[:0]
	s.samples = s.samples[:0]
	s.length = 0
	s.dirty = false
}

func (s *Spline) Len() int     { return s.count }
func (s *Spline) First() *Node { return s.head }
func (s *Spline) Last() *Node  { return s.tail }

// Nodes returns the nodes in order.
func (s *Spline) Nodes() []*Node {
	out := make([]*Node, 0, s.count)
	for n := s.head; n != nil; n = n.next {
		out = append(out, n)
	}
	return out
}

// Dirty reports whether nodes changed since the last Update.
func (s *Spline) Dirty() bool { return s.dirty }

// Length returns the arc length computed by the last Update.
func (s *Spline) Length() float64 { return s.length }

// Update rebuilds the arc-length table over the whole curve.
func (s *Spline) Update() {
	s.nodes = s.Nodes()
	s.samples = s.samples[:0]
	s.length = 0
	s.dirty = false
	spans := len(s.nodes) - 1
	if spans < 1 {
		return
	}

	prev := s.eval(0, 0)
	s.samples = append(s.samples, sample{span: 0, u: 0, dist: 0})
	for span := 0; span < spans; span++ {
		for i := 1; i <= samplesPerSpan; i++ {
			u := float64(i) / samplesPerSpan
			p := s.eval(span, u)
			s.length += p.Dist(prev)
			prev = p
			s.samples = append(s.samples, sample{span: span, u: u, dist: s.length})
		}
	}
}

// PointAt returns the position at normalized arc length t in [0,1].
func (s *Spline) PointAt(t float64) Vec3 {
	switch len(s.nodes) {
	case 0:
		return Zero
	case 1:
		return s.nodes[0].Position
	}
	span, u := s.locate(t)
	return s.eval(span, u)
}

// TangentAt returns the unit direction of travel at normalized arc length t.
// Degenerate curves report Forward.
func (s *Spline) TangentAt(t float64) Vec3 {
	if len(s.nodes) < 2 {
		return Forward
	}
	span, u := s.locate(t)
	d := s.derivative(span, u).Normalize()
	if d == Zero {
		return Forward
	}
	return d
}

// ParamOf returns the normalized arc length at which the curve passes
// through n, or -1 if n is not part of the last Update.
func (s *Spline) ParamOf(n *Node) float64 {
	for i, cand := range s.nodes {
		if cand != n {
			continue
		}
		if s.length <= 0 {
			return 0
		}
		return s.samples[i*samplesPerSpan].dist / s.length
	}
	return -1
}

// locate maps normalized arc length to a span and local parameter.
func (s *Spline) locate(t float64) (int, float64) {
	if len(s.samples) == 0 || s.length <= 0 {
		return 0, 0
	}
	d := Clamp01(t) * s.length
	k := sort.Search(len(s.samples), func(i int) bool { return s.samples[i].dist >= d })
	if k == 0 {
		return 0, 0
	}
	if k >= len(s.samples) {
		last := s.samples[len(s.samples)-1]
		return last.span, last.u
	}
	a, b := s.samples[k-1], s.samples[k]
	f := 0.0
	if seg := b.dist - a.dist; seg > epsilon {
		f = (d - a.dist) / seg
	}
	ua := a.u
	if a.span != b.span {
		// a closes the previous span at u=1
		ua = 0
	}
	return b.span, Lerp(ua, b.u, f)
}

func (s *Spline) controls(span int) (p0, p1, p2, p3 Vec3) {
	n := len(s.nodes)
	p1 = s.nodes[span].Position
	p2 = s.nodes[span+1].Position
	p0 = p1
	if span > 0 {
		p0 = s.nodes[span-1].Position
	}
	p3 = p2
	if span+2 < n {
		p3 = s.nodes[span+2].Position
	}
	return
}

func (s *Spline) eval(span int, u float64) Vec3 {
	p0, p1, p2, p3 := s.controls(span)
	u2 := u * u
	u3 := u2 * u
	// 0.5 * (2p1 + (-p0+p2)u + (2p0-5p1+4p2-p3)u² + (-p0+3p1-3p2+p3)u³)
	a := p1.Scale(2)
	b := p2.Sub(p0).Scale(u)
	c := p0.Scale(2).Sub(p1.Scale(5)).Add(p2.Scale(4)).Sub(p3).Scale(u2)
	d := p1.Scale(3).Sub(p0).Sub(p2.Scale(3)).Add(p3).Scale(u3)
	return a.Add(b).Add(c).Add(d).Scale(0.5)
}

func (s *Spline) derivative(span int, u float64) Vec3 {
	p0, p1, p2, p3 := s.controls(span)
	u2 := u * u
	b := p2.Sub(p0)
	c := p0.Scale(2).Sub(p1.Scale(5)).Add(p2.Scale(4)).Sub(p3).Scale(2 * u)
	d := p1.Scale(3).Sub(p0).Sub(p2.Scale(3)).Add(p3).Scale(3 * u2)
	return b.Add(c).Add(d).Scale(0.5)
}
