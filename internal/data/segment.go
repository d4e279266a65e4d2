package data

import (
	"fmt"
	"os"

	"github.com/roller/trackgen/internal/spline"
	"gopkg.in/yaml.v3"
)

// ProfileSpec describes how a segment's rendered width varies along it.
// Kind is one of "", "flat", "interpolated", "tightrope", "stepped".
type ProfileSpec struct {
	Kind      string    `yaml:"kind"`
	Start     float64   `yaml:"start"`
	End       float64   `yaml:"end"`
	Rope      float64   `yaml:"rope"`
	RopeStart float64   `yaml:"rope_start"`
	RopeEnd   float64   `yaml:"rope_end"`
	Scales    []float64 `yaml:"scales"`
	Repeat    int       `yaml:"repeat"`
}

// Build returns the profile p describes.
func (p ProfileSpec) Build() (spline.Profile, error) {
	switch p.Kind {
	case "", "flat":
		return spline.Flat{}, nil
	case "interpolated":
		return spline.Interpolated{Start: p.Start, End: p.End}, nil
	case "tightrope":
		if p.RopeStart < 0 || p.RopeEnd > 1 || p.RopeStart > p.RopeEnd {
			return nil, fmt.Errorf("tightrope window [%.2f, %.2f] out of range", p.RopeStart, p.RopeEnd)
		}
		return spline.TightRope{
			Start:     p.Start,
			End:       p.End,
			Rope:      p.Rope,
			RopeStart: p.RopeStart,
			RopeEnd:   p.RopeEnd,
		}, nil
	case "stepped":
		if len(p.Scales) == 0 {
			return nil, fmt.Errorf("stepped profile needs scales")
		}
		return spline.NewStepped(p.Scales, p.Repeat), nil
	default:
		return nil, fmt.Errorf("unknown profile kind %q", p.Kind)
	}
}

// SegmentSpec holds the geometry of the road segment used for one width.
type SegmentSpec struct {
	Width         RoadWidth   `yaml:"width"`
	Asset         string      `yaml:"asset"`
	ForwardStep   float64     `yaml:"forward_step"`
	MinHorizontal float64     `yaml:"min_horizontal"`
	MaxHorizontal float64     `yaml:"max_horizontal"`
	MinVertical   float64     `yaml:"min_vertical"`
	MaxVertical   float64     `yaml:"max_vertical"`
	HalfWidth     float64     `yaml:"half_width"`
	Profile       ProfileSpec `yaml:"profile"`

	// EndJitter, when set, replaces the min/max bounds by the end of the
	// segment. Bounds are lerped by how much of the target length is built.
	EndJitter *Jitter `yaml:"end_jitter"`
}

// Jitter bounds the random offset of one interior node.
type Jitter struct {
	MinHorizontal float64 `yaml:"min_horizontal"`
	MaxHorizontal float64 `yaml:"max_horizontal"`
	MinVertical   float64 `yaml:"min_vertical"`
	MaxVertical   float64 `yaml:"max_vertical"`
}

func (j Jitter) valid() bool {
	return j.MinHorizontal <= j.MaxHorizontal && j.MinVertical <= j.MaxVertical
}

// JitterAt returns the node offset bounds at build progress t in [0,1].
func (s *SegmentSpec) JitterAt(t float64) Jitter {
	start := Jitter{
		MinHorizontal: s.MinHorizontal,
		MaxHorizontal: s.MaxHorizontal,
		MinVertical:   s.MinVertical,
		MaxVertical:   s.MaxVertical,
	}
	if s.EndJitter == nil {
		return start
	}
	t = spline.Clamp01(t)
	end := *s.EndJitter
	return Jitter{
		MinHorizontal: spline.Lerp(start.MinHorizontal, end.MinHorizontal, t),
		MaxHorizontal: spline.Lerp(start.MaxHorizontal, end.MaxHorizontal, t),
		MinVertical:   spline.Lerp(start.MinVertical, end.MinVertical, t),
		MaxVertical:   spline.Lerp(start.MaxVertical, end.MaxVertical, t),
	}
}

type segmentListFile struct {
	Segments []SegmentSpec `yaml:"segments"`
}

// SegmentTable holds one segment spec per road width.
type SegmentTable struct {
	specs    [widthCount]*SegmentSpec
	profiles [widthCount]spline.Profile
}

// NewSegmentTable validates and indexes specs.
func NewSegmentTable(specs []SegmentSpec) (*SegmentTable, error) {
	t := &SegmentTable{}
	for i := range specs {
		s := specs[i]
		if !s.Width.Valid() {
			return nil, fmt.Errorf("segment #%d: invalid width", i)
		}
		if t.specs[s.Width] != nil {
			return nil, fmt.Errorf("segment %s: duplicate entry", s.Width)
		}
		if s.Asset == "" {
			return nil, fmt.Errorf("segment %s: missing asset", s.Width)
		}
		if s.ForwardStep <= 0 {
			return nil, fmt.Errorf("segment %s: forward_step must be positive", s.Width)
		}
		if s.MinHorizontal > s.MaxHorizontal || s.MinVertical > s.MaxVertical {
			return nil, fmt.Errorf("segment %s: jitter min above max", s.Width)
		}
		if s.EndJitter != nil && !s.EndJitter.valid() {
			return nil, fmt.Errorf("segment %s: end_jitter min above max", s.Width)
		}
		if s.HalfWidth < 0 {
			return nil, fmt.Errorf("segment %s: half_width must not be negative", s.Width)
		}
		profile, err := s.Profile.Build()
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", s.Width, err)
		}
		spec := &s
		t.specs[s.Width] = spec
		t.profiles[s.Width] = profile
	}
	return t, nil
}

// LoadSegmentTable loads segment_list.yaml.
func LoadSegmentTable(path string) (*SegmentTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segment_list: %w", err)
	}
	var f segmentListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse segment_list: %w", err)
	}
	t, err := NewSegmentTable(f.Segments)
	if err != nil {
		return nil, fmt.Errorf("validate segment_list: %w", err)
	}
	return t, nil
}

// Get returns the spec for w.
func (t *SegmentTable) Get(w RoadWidth) (*SegmentSpec, bool) {
	if !w.Valid() {
		return nil, false
	}
	s := t.specs[w]
	return s, s != nil
}

// Profile returns the width profile for w, Flat when w has no spec.
func (t *SegmentTable) Profile(w RoadWidth) spline.Profile {
	if !w.Valid() || t.profiles[w] == nil {
		return spline.Flat{}
	}
	return t.profiles[w]
}

// All returns the specs in width order.
func (t *SegmentTable) All() []*SegmentSpec {
	out := make([]*SegmentSpec, 0, widthCount)
	for _, s := range t.specs {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of widths with a segment.
func (t *SegmentTable) Count() int {
	return len(t.All())
}
