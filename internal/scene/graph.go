package scene

import (
	"fmt"

	"github.com/roller/trackgen/internal/objects"
	"github.com/roller/trackgen/internal/spline"
)

// Graph owns every live Object. It stands in for the engine's scene: it
// instantiates prefabs, toggles active flags, moves and parents objects, and
// defers destruction to a queue flushed once per tick.
// Accessed only from the simulation goroutine; no locks.
type Graph struct {
	ids          *idPool
	objects      map[ID]*Object
	destroyQueue []ID
}

func NewGraph() *Graph {
	return &Graph{
		ids:          newIDPool(),
		objects:      make(map[ID]*Object, 256),
		destroyQueue: make([]ID, 0, 64),
	}
}

// Instantiate implements objects.Instantiator. The new object is active,
// unparented, at the origin and named after the prefab with a clone suffix.
func (g *Graph) Instantiate(t objects.Template) (objects.Instance, error) {
	p, ok := t.(*Prefab)
	if !ok || p == nil {
		return nil, fmt.Errorf("instantiate: unsupported template %T", t)
	}
	o := &Object{
		id:     g.ids.create(),
		name:   p.Name + "(Clone)",
		active: true,
	}
	if p.New != nil {
		o.Payload = p.New(o)
	}
	g.objects[o.id] = o
	return o, nil
}

func (g *Graph) Activate(inst objects.Instance) {
	if o := g.resolve(inst); o != nil {
		o.active = true
	}
}

func (g *Graph) Deactivate(inst objects.Instance) {
	if o := g.resolve(inst); o != nil {
		o.active = false
	}
}

func (g *Graph) SetPosition(inst objects.Instance, pos spline.Vec3) {
	if o := g.resolve(inst); o != nil {
		o.position = pos
	}
}

// SetParent attaches child under parent. A nil parent detaches.
func (g *Graph) SetParent(child, parent objects.Instance) {
	c := g.resolve(child)
	if c == nil {
		return
	}
	var p *Object
	if parent != nil {
		p = g.resolve(parent)
	}
	if c.parent == p {
		return
	}
	for n := p; n != nil; n = n.parent {
		if n == c {
			return // would create a cycle
		}
	}
	c.detach()
	if p != nil {
		c.parent = p
		p.children = append(p.children, c)
	}
}

// Destroy deactivates inst and its subtree and queues them for removal.
func (g *Graph) Destroy(inst objects.Instance) {
	o := g.resolve(inst)
	if o == nil {
		return
	}
	o.detach()
	g.queue(o)
}

func (g *Graph) queue(o *Object) {
	o.active = false
	g.destroyQueue = append(g.destroyQueue, o.id)
	for _, c := range o.children {
		g.queue(c)
	}
}

// FlushDestroyQueue removes every queued object and returns how many were
// destroyed.
func (g *Graph) FlushDestroyQueue() int {
	n := 0
	for _, id := range g.destroyQueue {
		o, ok := g.objects[id]
		if !ok {
			continue
		}
		o.children = nil
		o.parent = nil
		delete(g.objects, id)
		g.ids.destroy(id)
		n++
	}
	g.destroyQueue = g.destroyQueue[:0]
	return n
}

// Get returns the live object for id.
func (g *Graph) Get(id ID) (*Object, bool) {
	if !g.ids.alive(id) {
		return nil, false
	}
	o, ok := g.objects[id]
	return o, ok
}

func (g *Graph) Alive(id ID) bool { return g.ids.alive(id) }

// Len returns the number of live objects, including ones queued for destroy.
func (g *Graph) Len() int { return len(g.objects) }

// CountActive returns how many objects are active in hierarchy.
func (g *Graph) CountActive() int {
	n := 0
	for _, o := range g.objects {
		if o.ActiveInHierarchy() {
			n++
		}
	}
	return n
}

func (g *Graph) resolve(inst objects.Instance) *Object {
	o, ok := inst.(*Object)
	if !ok || o == nil {
		return nil
	}
	if live, ok := g.objects[o.id]; !ok || live != o {
		return nil
	}
	return o
}
