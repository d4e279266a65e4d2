package scene

import (
	"errors"
	"fmt"

	"github.com/roller/trackgen/internal/objects"
)

// ErrNotFound is returned when a path has no prefab.
var ErrNotFound = errors.New("prefab not found")

// Prefab is an instantiable template. New builds the payload for a freshly
// created object and may keep a reference to it.
type Prefab struct {
	Name string
	New  func(o *Object) any
}

func (p *Prefab) TemplateName() string { return p.Name }

// Library is the asset store prefabs are resolved from.
type Library struct {
	prefabs map[string]*Prefab
}

func NewLibrary() *Library {
	return &Library{prefabs: make(map[string]*Prefab)}
}

// Register adds or replaces the prefab at path.
func (l *Library) Register(path string, p *Prefab) {
	l.prefabs[path] = p
}

// Resolve implements objects.Resolver.
func (l *Library) Resolve(path string) (objects.Template, error) {
	p, ok := l.prefabs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return p, nil
}

// Count returns the number of registered prefabs.
func (l *Library) Count() int {
	return len(l.prefabs)
}
