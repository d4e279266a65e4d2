package track

import (
	"math/rand/v2"

	"github.com/roller/trackgen/internal/data"
	"github.com/roller/trackgen/internal/scene"
	"github.com/roller/trackgen/internal/spline"
)

// AnchorCount is the number of anchors on each side of a connector.
const AnchorCount = 3

// Connector is the payload of a connector object. Anchors are stored as
// offsets from the object's position; segments read them to pin their ends.
type Connector struct {
	obj      *scene.Object
	spec     *data.ConnectorSpec
	baseName string

	start [AnchorCount]spline.Vec3
	end   [AnchorCount]spline.Vec3

	// Spin is the signed angular speed of a rotating cylinder.
	Spin float64
}

func newConnector(o *scene.Object, spec *data.ConnectorSpec, name string) *Connector {
	c := &Connector{obj: o, spec: spec, baseName: name}
	s := spec.AnchorSpacing
	for i := 0; i < AnchorCount; i++ {
		c.start[i] = spline.V(0, 0, s*float64(i))
		c.end[i] = spline.V(0, 0, spec.Length-s*float64(AnchorCount-1-i))
	}
	c.Spin = spec.RotationSpeed
	return c
}

func (c *Connector) Object() *scene.Object     { return c.obj }
func (c *Connector) Spec() *data.ConnectorSpec { return c.spec }
func (c *Connector) Type() data.ConnectorType  { return c.spec.Type }
func (c *Connector) Position() spline.Vec3     { return c.obj.Position() }

// StartAnchor returns the world position of start anchor i.
func (c *Connector) StartAnchor(i int) spline.Vec3 {
	return c.obj.Position().Add(c.start[i])
}

// EndAnchor returns the world position of end anchor i.
func (c *Connector) EndAnchor(i int) spline.Vec3 {
	return c.obj.Position().Add(c.end[i])
}

func (c *Connector) StartAnchors() [AnchorCount]spline.Vec3 {
	var out [AnchorCount]spline.Vec3
	for i := range out {
		out[i] = c.StartAnchor(i)
	}
	return out
}

func (c *Connector) EndAnchors() [AnchorCount]spline.Vec3 {
	var out [AnchorCount]spline.Vec3
	for i := range out {
		out[i] = c.EndAnchor(i)
	}
	return out
}

// AnchorSpread is the distance between the first and last start anchor.
func (c *Connector) AnchorSpread() float64 {
	return c.start[AnchorCount-1].Dist(c.start[0])
}

// Reset restores the authored spin, picking a random direction when the
// connector asks for one.
func (c *Connector) Reset() {
	c.obj.SetName(c.baseName)
	c.Spin = c.spec.RotationSpeed
	if c.spec.RandomDirection && rand.Float64() < 0.5 {
		c.Spin = -c.Spin
	}
}
