package spline

// Profile scales a road's cross-section along normalized arc length.
type Profile interface {
	Scale(t float64) float64
}

// Flat keeps the authored width everywhere.
type Flat struct{}

func (Flat) Scale(float64) float64 { return 1 }

// Interpolated blends linearly from Start to End.
type Interpolated struct {
	Start float64
	End   float64
}

func (p Interpolated) Scale(t float64) float64 {
	return Lerp(p.Start, p.End, Clamp01(t))
}

// TightRope narrows to Rope between RopeStart and RopeEnd, ramping in from
// Start and back out to End.
type TightRope struct {
	Start     float64
	End       float64
	Rope      float64
	RopeStart float64
	RopeEnd   float64
}

func (p TightRope) Scale(t float64) float64 {
	switch {
	case t <= p.RopeStart:
		if p.RopeStart <= 0 {
			return p.Rope
		}
		return Lerp(p.Start, p.Rope, Clamp01(t/p.RopeStart))
	case t >= p.RopeEnd:
		if p.RopeEnd >= 1 {
			return p.Rope
		}
		return Lerp(p.Rope, p.End, Clamp01((t-p.RopeEnd)/(1-p.RopeEnd)))
	default:
		return p.Rope
	}
}

// Stepped repeats a list of scales in equal slices of the curve.
type Stepped struct {
	scales   []float64
	ceilings []float64
}

// NewStepped builds a profile that cycles through scales repeat times.
func NewStepped(scales []float64, repeat int) *Stepped {
	if repeat < 1 {
		repeat = 1
	}
	p := &Stepped{scales: append([]float64(nil), scales...)}
	if len(scales) == 0 {
		return p
	}
	entries := len(scales) * repeat
	step := 1.0 / float64(entries)
	p.ceilings = make([]float64, entries)
	for i := range p.ceilings {
		p.ceilings[i] = step * float64(i+1)
	}
	// guard float drift so t == 1 always lands in the last slice
	p.ceilings[entries-1] = 1
	return p
}

func (p *Stepped) Scale(t float64) float64 {
	for i, ceil := range p.ceilings {
		if t <= ceil {
			return p.scales[i%len(p.scales)]
		}
	}
	return 1
}
