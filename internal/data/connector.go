package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MaxSpawnWeight bounds a connector's spawn weight so a width's total weight
// always fits in an int.
const MaxSpawnWeight = 1_000_000

// DefaultAnchorSpacing is used when a connector entry leaves anchor_spacing unset.
const DefaultAnchorSpacing = 5.0

// ConnectorSpec is the static description of one connector variant.
type ConnectorSpec struct {
	Type          ConnectorType `yaml:"type"`
	StartWidth    RoadWidth     `yaml:"start_width"`
	EndWidth      RoadWidth     `yaml:"end_width"`
	SpawnWeight   int           `yaml:"spawn_weight"`
	Disabled      bool          `yaml:"disabled"`
	Asset         string        `yaml:"asset"`
	AnchorSpacing float64       `yaml:"anchor_spacing"` // gap between consecutive anchors
	Length        float64       `yaml:"length"`         // first start anchor → last end anchor

	// rotating_cylinder only
	RotationSpeed   float64 `yaml:"rotation_speed"`
	RandomDirection bool    `yaml:"random_direction"`
}

type connectorListFile struct {
	Connectors []ConnectorSpec `yaml:"connectors"`
}

// ConnectorCatalog is a typed table of connector specs indexed by type.
type ConnectorCatalog struct {
	specs   [connectorTypeCount]*ConnectorSpec
	byStart [widthCount][]*ConnectorSpec // enabled specs, catalog order
	count   int
}

// NewConnectorCatalog validates specs and indexes them. Each type may appear
// once; enabled entries need a positive weight and an asset.
func NewConnectorCatalog(specs []ConnectorSpec) (*ConnectorCatalog, error) {
	c := &ConnectorCatalog{}
	for i := range specs {
		s := specs[i]
		if !s.Type.Valid() {
			return nil, fmt.Errorf("connector #%d: invalid type", i)
		}
		if c.specs[s.Type] != nil {
			return nil, fmt.Errorf("connector %s: duplicate entry", s.Type)
		}
		if !s.StartWidth.Valid() || !s.EndWidth.Valid() {
			return nil, fmt.Errorf("connector %s: invalid width", s.Type)
		}
		if s.SpawnWeight < 0 || (!s.Disabled && s.SpawnWeight == 0) {
			return nil, fmt.Errorf("connector %s: spawn_weight must be positive (got %d)", s.Type, s.SpawnWeight)
		}
		if s.SpawnWeight > MaxSpawnWeight {
			return nil, fmt.Errorf("connector %s: spawn_weight %d above %d", s.Type, s.SpawnWeight, MaxSpawnWeight)
		}
		if s.Asset == "" {
			return nil, fmt.Errorf("connector %s: missing asset", s.Type)
		}
		if s.AnchorSpacing == 0 {
			s.AnchorSpacing = DefaultAnchorSpacing
		}
		if s.AnchorSpacing < 0 {
			return nil, fmt.Errorf("connector %s: anchor_spacing must be positive", s.Type)
		}
		if s.Length == 0 {
			s.Length = 4 * s.AnchorSpacing
		}
		if s.Length < 2*s.AnchorSpacing {
			return nil, fmt.Errorf("connector %s: length %.2f shorter than its anchors", s.Type, s.Length)
		}

		spec := &s
		c.specs[s.Type] = spec
		c.count++
		if !s.Disabled {
			c.byStart[s.StartWidth] = append(c.byStart[s.StartWidth], spec)
		}
	}
	return c, nil
}

// LoadConnectorCatalog loads connector_list.yaml.
func LoadConnectorCatalog(path string) (*ConnectorCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read connector_list: %w", err)
	}
	var f connectorListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse connector_list: %w", err)
	}
	c, err := NewConnectorCatalog(f.Connectors)
	if err != nil {
		return nil, fmt.Errorf("validate connector_list: %w", err)
	}
	return c, nil
}

// Get returns the spec for t.
func (c *ConnectorCatalog) Get(t ConnectorType) (*ConnectorSpec, bool) {
	if !t.Valid() {
		return nil, false
	}
	s := c.specs[t]
	return s, s != nil
}

// StartingWith returns the enabled specs whose start width is w.
func (c *ConnectorCatalog) StartingWith(w RoadWidth) []*ConnectorSpec {
	if !w.Valid() {
		return nil
	}
	return c.byStart[w]
}

// Require fails unless every type is cataloged.
func (c *ConnectorCatalog) Require(types ...ConnectorType) error {
	for _, t := range types {
		if _, ok := c.Get(t); !ok {
			return fmt.Errorf("connector %s: not in catalog", t)
		}
	}
	return nil
}

// All returns every spec in type order, disabled ones included.
func (c *ConnectorCatalog) All() []*ConnectorSpec {
	out := make([]*ConnectorSpec, 0, c.count)
	for _, s := range c.specs {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of cataloged types.
func (c *ConnectorCatalog) Count() int {
	return c.count
}
