package track

import (
	"github.com/roller/trackgen/internal/data"
	"github.com/roller/trackgen/internal/scene"
	"github.com/roller/trackgen/internal/spline"
)

// Segment is the payload of a road segment object. It owns its spline nodes,
// the perils scattered on it and a reusable set of collectables.
type Segment struct {
	obj      *scene.Object
	spec     *data.SegmentSpec
	profile  spline.Profile
	baseName string

	spline       *spline.Spline
	interior     []*spline.Node
	perils       []*scene.Object
	collectables []*scene.Object
	placed       int // collectables shown by the last build

	branch   *spline.Spline
	branched bool
}

func newSegment(o *scene.Object, spec *data.SegmentSpec, profile spline.Profile, name string) *Segment {
	if profile == nil {
		profile = spline.Flat{}
	}
	return &Segment{
		obj:      o,
		spec:     spec,
		profile:  profile,
		baseName: name,
		spline:   spline.New(),
	}
}

func (s *Segment) Object() *scene.Object    { return s.obj }
func (s *Segment) Spec() *data.SegmentSpec  { return s.spec }
func (s *Segment) Width() data.RoadWidth    { return s.spec.Width }
func (s *Segment) Spline() *spline.Spline   { return s.spline }
func (s *Segment) Nodes() []*spline.Node    { return s.spline.Nodes() }
func (s *Segment) Interior() []*spline.Node { return append([]*spline.Node(nil), s.interior...) }
func (s *Segment) Perils() []*scene.Object  { return append([]*scene.Object(nil), s.perils...) }
func (s *Segment) Length() float64          { return s.spline.Length() }
func (s *Segment) Profile() spline.Profile  { return s.profile }

// Collectables returns every collectable the segment owns, shown or hidden.
func (s *Segment) Collectables() []*scene.Object {
	return append([]*scene.Object(nil), s.collectables...)
}

// PlacedCollectables returns how many collectables the last build placed.
func (s *Segment) PlacedCollectables() int { return s.placed }

// Branch returns the side road built after a split connector, or nil.
func (s *Segment) Branch() *spline.Spline {
	if !s.branched {
		return nil
	}
	return s.branch
}

func (s *Segment) branchSpline() *spline.Spline {
	if s.branch == nil {
		s.branch = spline.New()
	}
	s.branch.Clear()
	s.branched = true
	return s.branch
}

func (s *Segment) clearBranch() {
	if s.branch != nil {
		s.branch.Clear()
	}
	s.branched = false
}

// HalfWidthAt returns the rendered half-width at normalized arc length t.
func (s *Segment) HalfWidthAt(t float64) float64 {
	return s.spec.HalfWidth * s.profile.Scale(t)
}

// ResetCollectables hides every collectable in order, then shows and resets
// the ones the last build placed. Nothing is destroyed.
func (s *Segment) ResetCollectables(g *scene.Graph) {
	for _, c := range s.collectables {
		g.Deactivate(c)
	}
	for i := 0; i < s.placed && i < len(s.collectables); i++ {
		g.Activate(s.collectables[i])
		s.collectables[i].Reset()
	}
}

// Reset clears the node list before the segment is built again. Collectables
// stay attached for reuse; perils are released by the track beforehand.
func (s *Segment) Reset() {
	s.obj.SetName(s.baseName)
	s.spline.Clear()
	s.interior = s.interior[:0]
	s.perils = s.perils[:0]
	s.placed = 0
	s.clearBranch()
}

func (s *Segment) takePerils() []*scene.Object {
	out := s.perils
	s.perils = nil
	return out
}
