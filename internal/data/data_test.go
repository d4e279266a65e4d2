package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roller/trackgen/internal/spline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseNames(t *testing.T) {
	for _, w := range RoadWidths() {
		got, err := ParseRoadWidth(w.String())
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}
	for ct := ConnectorEntry; ct < connectorTypeCount; ct++ {
		got, err := ParseConnectorType(ct.String())
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}

	_, err := ParseRoadWidth("huge")
	assert.Error(t, err)
	_, err = ParseConnectorType("loop")
	assert.Error(t, err)
	assert.Equal(t, "ConnectorType(99)", ConnectorType(99).String())
	_, err = RoadWidth(-1).MarshalText()
	assert.Error(t, err)
}

const connectorYAML = `
connectors:
  - type: entry
    start_width: medium
    end_width: medium
    spawn_weight: 1
    disabled: true
    asset: Connectors/Entry
  - type: straight_medium
    start_width: medium
    end_width: medium
    spawn_weight: 40
    asset: Connectors/StraightMedium
  - type: medium_to_large
    start_width: medium
    end_width: large
    spawn_weight: 20
    asset: Connectors/MediumToLarge
    anchor_spacing: 3
    length: 20
  - type: rotating_cylinder
    start_width: medium
    end_width: medium
    spawn_weight: 5
    asset: Connectors/RotatingCylinder
    rotation_speed: 45
    random_direction: true
`

func TestLoadConnectorCatalog(t *testing.T) {
	c, err := LoadConnectorCatalog(writeFile(t, "connector_list.yaml", connectorYAML))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Count())

	entry, ok := c.Get(ConnectorEntry)
	require.True(t, ok)
	assert.True(t, entry.Disabled)
	assert.Equal(t, DefaultAnchorSpacing, entry.AnchorSpacing)
	assert.Equal(t, 4*DefaultAnchorSpacing, entry.Length)

	m2l, _ := c.Get(ConnectorMediumToLarge)
	assert.Equal(t, 3.0, m2l.AnchorSpacing)
	assert.Equal(t, 20.0, m2l.Length)
	assert.Equal(t, WidthLarge, m2l.EndWidth)

	var types []ConnectorType
	for _, s := range c.StartingWith(WidthMedium) {
		types = append(types, s.Type)
	}
	assert.Equal(t, []ConnectorType{ConnectorStraightMedium, ConnectorMediumToLarge, ConnectorRotatingCylinder}, types,
		"disabled connectors are never candidates")
	assert.Empty(t, c.StartingWith(WidthSmall))
	assert.Nil(t, c.StartingWith(RoadWidth(7)))

	assert.NoError(t, c.Require(ConnectorEntry, ConnectorStraightMedium))
	assert.Error(t, c.Require(ConnectorSplit))
}

func TestConnectorCatalogValidation(t *testing.T) {
	base := func() ConnectorSpec {
		return ConnectorSpec{Type: ConnectorStraightSmall, SpawnWeight: 10, Asset: "Connectors/StraightSmall"}
	}
	tests := []struct {
		name  string
		specs func() []ConnectorSpec
	}{
		{"duplicate type", func() []ConnectorSpec { return []ConnectorSpec{base(), base()} }},
		{"zero weight", func() []ConnectorSpec { s := base(); s.SpawnWeight = 0; return []ConnectorSpec{s} }},
		{"negative weight", func() []ConnectorSpec { s := base(); s.SpawnWeight = -1; s.Disabled = true; return []ConnectorSpec{s} }},
		{"weight above cap", func() []ConnectorSpec { s := base(); s.SpawnWeight = MaxSpawnWeight + 1; return []ConnectorSpec{s} }},
		{"missing asset", func() []ConnectorSpec { s := base(); s.Asset = ""; return []ConnectorSpec{s} }},
		{"invalid type", func() []ConnectorSpec { s := base(); s.Type = ConnectorType(42); return []ConnectorSpec{s} }},
		{"invalid width", func() []ConnectorSpec { s := base(); s.EndWidth = RoadWidth(9); return []ConnectorSpec{s} }},
		{"negative spacing", func() []ConnectorSpec { s := base(); s.AnchorSpacing = -1; return []ConnectorSpec{s} }},
		{"too short", func() []ConnectorSpec { s := base(); s.AnchorSpacing = 5; s.Length = 8; return []ConnectorSpec{s} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConnectorCatalog(tt.specs())
			assert.Error(t, err)
		})
	}

	s := base()
	s.SpawnWeight = 0
	s.Disabled = true
	_, err := NewConnectorCatalog([]ConnectorSpec{s})
	assert.NoError(t, err, "disabled entries may have zero weight")
}

func TestLoadConnectorCatalogErrors(t *testing.T) {
	_, err := LoadConnectorCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read connector_list")

	_, err = LoadConnectorCatalog(writeFile(t, "bad.yaml", "connectors:\n  - type: warp\n"))
	assert.ErrorContains(t, err, "parse connector_list")

	_, err = LoadConnectorCatalog(writeFile(t, "dup.yaml", connectorYAML+`
  - type: entry
    start_width: small
    end_width: small
    spawn_weight: 1
    asset: Connectors/Entry2
`))
	assert.ErrorContains(t, err, "validate connector_list")
}

const segmentYAML = `
segments:
  - width: small
    asset: Segments/Small
    forward_step: 6
    half_width: 2
    profile:
      kind: stepped
      scales: [0.5, 1]
  - width: medium
    asset: Segments/Medium
    forward_step: 6
    min_horizontal: -3
    max_horizontal: 3
    end_jitter:
      min_horizontal: -5
      max_horizontal: 5
    half_width: 3.5
  - width: large
    asset: Segments/Large
    forward_step: 7
    half_width: 6
    profile:
      kind: tightrope
      start: 1
      end: 1
      rope: 0.5
      rope_start: 0.3
      rope_end: 0.7
`

func TestLoadSegmentTable(t *testing.T) {
	tbl, err := LoadSegmentTable(writeFile(t, "segment_list.yaml", segmentYAML))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Count())

	med, ok := tbl.Get(WidthMedium)
	require.True(t, ok)
	assert.Equal(t, -3.0, med.MinHorizontal)
	require.NotNil(t, med.EndJitter)
	assert.Equal(t, 5.0, med.EndJitter.MaxHorizontal)
	assert.Equal(t, spline.Flat{}, tbl.Profile(WidthMedium))

	assert.InDelta(t, 0.5, tbl.Profile(WidthSmall).Scale(0.1), 1e-9)
	assert.InDelta(t, 0.5, tbl.Profile(WidthLarge).Scale(0.5), 1e-9)
	assert.Equal(t, spline.Flat{}, tbl.Profile(RoadWidth(5)))
}

func TestSegmentTableValidation(t *testing.T) {
	base := SegmentSpec{Width: WidthSmall, Asset: "Segments/Small", ForwardStep: 5}
	tests := []struct {
		name   string
		mutate func(*SegmentSpec)
	}{
		{"missing asset", func(s *SegmentSpec) { s.Asset = "" }},
		{"no step", func(s *SegmentSpec) { s.ForwardStep = 0 }},
		{"jitter inverted", func(s *SegmentSpec) { s.MinVertical, s.MaxVertical = 1, -1 }},
		{"negative half width", func(s *SegmentSpec) { s.HalfWidth = -1 }},
		{"unknown profile", func(s *SegmentSpec) { s.Profile.Kind = "wavy" }},
		{"stepped without scales", func(s *SegmentSpec) { s.Profile.Kind = "stepped" }},
		{"rope window", func(s *SegmentSpec) { s.Profile = ProfileSpec{Kind: "tightrope", RopeStart: 0.8, RopeEnd: 0.2} }},
		{"end jitter inverted", func(s *SegmentSpec) { s.EndJitter = &Jitter{MinHorizontal: 2, MaxHorizontal: -2} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			_, err := NewSegmentTable([]SegmentSpec{s})
			assert.Error(t, err)
		})
	}

	_, err := NewSegmentTable([]SegmentSpec{base, base})
	assert.ErrorContains(t, err, "duplicate")
}

func TestJitterAt(t *testing.T) {
	s := SegmentSpec{MinHorizontal: -2, MaxHorizontal: 2, MinVertical: -1, MaxVertical: 0}
	fixed := Jitter{MinHorizontal: -2, MaxHorizontal: 2, MinVertical: -1, MaxVertical: 0}
	assert.Equal(t, fixed, s.JitterAt(0))
	assert.Equal(t, fixed, s.JitterAt(0.7), "no end bounds keeps the start bounds")

	s.EndJitter = &Jitter{MinHorizontal: -6, MaxHorizontal: 6, MinVertical: -3, MaxVertical: 2}
	assert.Equal(t, fixed, s.JitterAt(0))
	assert.Equal(t, Jitter{MinHorizontal: -4, MaxHorizontal: 4, MinVertical: -2, MaxVertical: 1}, s.JitterAt(0.5))
	assert.Equal(t, *s.EndJitter, s.JitterAt(1))
	assert.Equal(t, *s.EndJitter, s.JitterAt(3), "t is clamped")
}

func TestLoadObjectList(t *testing.T) {
	list, err := LoadObjectList(writeFile(t, "object_list.yaml", `
objects:
  - key: Segments/Medium
    pool_size: 5
  - key: Decor/Collectable
`))
	require.NoError(t, err)
	assert.Equal(t, []ObjectEntry{
		{Key: "Segments/Medium", PoolSize: 5},
		{Key: "Decor/Collectable", PoolSize: 0},
	}, list)

	for name, body := range map[string]string{
		"no key":    "objects:\n  - pool_size: 2\n",
		"duplicate": "objects:\n  - key: A\n  - key: A\n",
		"negative":  "objects:\n  - key: A\n    pool_size: -1\n",
	} {
		_, err := LoadObjectList(writeFile(t, "object_list.yaml", body))
		assert.Error(t, err, name)
	}
}
