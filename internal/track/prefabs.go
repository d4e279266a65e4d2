package track

import (
	"path"

	"github.com/roller/trackgen/internal/data"
	"github.com/roller/trackgen/internal/scene"
)

// Assets names the decoration prefabs.
type Assets struct {
	Peril            string
	Collectable      string
	CollectableValue int
}

// RegisterPrefabs adds a prefab to lib for every cataloged connector, every
// segment width and the decoration assets. The prefab name is the last path
// element of its asset key.
func RegisterPrefabs(lib *scene.Library, connectors *data.ConnectorCatalog, segments *data.SegmentTable, assets Assets) {
	for _, spec := range connectors.All() {
		spec := spec
		name := path.Base(spec.Asset)
		lib.Register(spec.Asset, &scene.Prefab{
			Name: name,
			New: func(o *scene.Object) any {
				return newConnector(o, spec, name)
			},
		})
	}

	for _, spec := range segments.All() {
		spec := spec
		name := path.Base(spec.Asset)
		profile := segments.Profile(spec.Width)
		lib.Register(spec.Asset, &scene.Prefab{
			Name: name,
			New: func(o *scene.Object) any {
				return newSegment(o, spec, profile, name)
			},
		})
	}

	if assets.Peril != "" {
		lib.Register(assets.Peril, &scene.Prefab{
			Name: path.Base(assets.Peril),
			New: func(o *scene.Object) any {
				return &Peril{obj: o, Side: SideRight}
			},
		})
	}
	if assets.Collectable != "" {
		value := assets.CollectableValue
		if value <= 0 {
			value = 1
		}
		lib.Register(assets.Collectable, &scene.Prefab{
			Name: path.Base(assets.Collectable),
			New: func(o *scene.Object) any {
				return &Collectable{obj: o, Value: value, value: value}
			},
		})
	}
}
