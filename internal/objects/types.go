package objects

import "errors"

var (
	ErrAlreadyLoaded      = errors.New("object already loaded")
	ErrLoadFailure        = errors.New("object load failed")
	ErrNotLoaded          = errors.New("object not loaded")
	ErrInvalidPoolRequest = errors.New("invalid pool request")
	ErrDoubleRelease      = errors.New("object released more than once")
	ErrClosed             = errors.New("registry shut down")
)

// Template is a loaded asset that can be instantiated.
type Template interface {
	TemplateName() string
}

// Instance is a live world object created from a Template.
type Instance interface {
	InstanceID() uint64
	Name() string
	SetName(name string)
	// Reset re-initializes transient per-use state. Called every time the
	// instance is delivered from a pool.
	Reset()
}

// Resolver maps an asset path to a Template.
type Resolver interface {
	Resolve(path string) (Template, error)
}

// Instantiator performs scene operations on behalf of the registry and pools.
type Instantiator interface {
	Instantiate(t Template) (Instance, error)
	Activate(inst Instance)
	Deactivate(inst Instance)
}

// Destroyer is implemented by instantiators that can tear instances down.
// Registry.Reset hands every pooled instance to it.
type Destroyer interface {
	Destroy(inst Instance)
}
