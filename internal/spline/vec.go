package spline

import "math"

// Vec3 is a world-space position or direction. Y is up, Z is forward.
type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero    = Vec3{}
	Right   = Vec3{X: 1}
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: 1}
)

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns the unit vector, or Zero for a zero-length vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < epsilon {
		return Zero
	}
	return v.Scale(1 / l)
}

// Dist returns the euclidean distance between two points.
func (v Vec3) Dist(o Vec3) float64 { return v.Sub(o).Len() }

// Lerp interpolates from v to o by t (unclamped).
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

const epsilon = 1e-9

// Clamp01 clamps t into [0,1].
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// Lerp interpolates scalars.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }
