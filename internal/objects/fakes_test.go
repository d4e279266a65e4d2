package objects

import (
	"errors"
	"fmt"
)

type fakeTemplate struct{ name string }

func (t *fakeTemplate) TemplateName() string { return t.name }

type fakeInstance struct {
	id     uint64
	name   string
	active bool
	resets int
}

func (i *fakeInstance) InstanceID() uint64  { return i.id }
func (i *fakeInstance) Name() string        { return i.name }
func (i *fakeInstance) SetName(name string) { i.name = name }
func (i *fakeInstance) Reset()              { i.resets++ }

type fakeResolver map[string]Template

func (r fakeResolver) Resolve(path string) (Template, error) {
	t, ok := r[path]
	if !ok {
		return nil, fmt.Errorf("no asset at %s", path)
	}
	return t, nil
}

// fakeScene hands out sequential ids and records destroyed instances.
type fakeScene struct {
	nextID    uint64
	fail      bool
	destroyed []uint64
}

func (s *fakeScene) Instantiate(t Template) (Instance, error) {
	if s.fail {
		return nil, errors.New("scene unavailable")
	}
	s.nextID++
	return &fakeInstance{id: s.nextID, name: t.TemplateName() + "(Clone)", active: true}, nil
}

func (s *fakeScene) Activate(inst Instance)   { inst.(*fakeInstance).active = true }
func (s *fakeScene) Deactivate(inst Instance) { inst.(*fakeInstance).active = false }
func (s *fakeScene) Destroy(inst Instance)    { s.destroyed = append(s.destroyed, inst.InstanceID()) }

func newFakePool(scene *fakeScene, size int) *Pool {
	tpl := &fakeTemplate{name: "Rock"}
	return NewPool("Decor/Rock", size, func() (Instance, error) {
		return scene.Instantiate(tpl)
	}, scene, zapNop)
}
