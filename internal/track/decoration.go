package track

import "github.com/roller/trackgen/internal/scene"

// Side is the lateral side of the centerline a peril sits on.
type Side int

const (
	SideLeft  Side = -1
	SideRight Side = 1
)

// Peril is an obstacle placed beside the centerline of large segments.
type Peril struct {
	obj  *scene.Object
	Side Side
	Hits int
}

func (p *Peril) Object() *scene.Object { return p.obj }

func (p *Peril) Reset() {
	p.Side = SideRight
	p.Hits = 0
}

// Collectable is a pickup floating above a spline node.
type Collectable struct {
	obj      *scene.Object
	Value    int
	Consumed bool
	value    int // authored value
}

func (c *Collectable) Object() *scene.Object { return c.obj }

// Collect marks the pickup consumed and returns its value. A consumed pickup
// yields nothing.
func (c *Collectable) Collect() int {
	if c.Consumed {
		return 0
	}
	c.Consumed = true
	return c.Value
}

func (c *Collectable) Reset() {
	c.Consumed = false
	c.Value = c.value
}
