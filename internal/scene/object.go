package scene

import (
	"github.com/roller/trackgen/internal/spline"
)

// Object is a node in the scene graph. Behaviour lives in Payload, which the
// prefab builds when the object is instantiated.
type Object struct {
	id       ID
	name     string
	active   bool
	position spline.Vec3
	parent   *Object
	children []*Object

	Payload any
}

func (o *Object) ID() ID             { return o.id }
func (o *Object) InstanceID() uint64 { return uint64(o.id) }
func (o *Object) Name() string       { return o.name }
func (o *Object) SetName(name string) {
	o.name = name
}

// Active reports the object's own active flag.
func (o *Object) Active() bool { return o.active }

// ActiveInHierarchy is false when the object or any ancestor is inactive.
func (o *Object) ActiveInHierarchy() bool {
	for n := o; n != nil; n = n.parent {
		if !n.active {
			return false
		}
	}
	return true
}

func (o *Object) Position() spline.Vec3 { return o.position }
func (o *Object) Parent() *Object       { return o.parent }

// Children returns the direct children in attach order.
func (o *Object) Children() []*Object {
	return append([]*Object(nil), o.children...)
}

// Reset forwards to the payload when it carries per-use state.
func (o *Object) Reset() {
	if r, ok := o.Payload.(interface{ Reset() }); ok {
		r.Reset()
	}
}

func (o *Object) detach() {
	if o.parent == nil {
		return
	}
	siblings := o.parent.children
	for i, c := range siblings {
		if c == o {
			o.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	o.parent = nil
}
