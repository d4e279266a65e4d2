package track

import (
	"testing"

	"github.com/roller/trackgen/internal/data"
	"github.com/roller/trackgen/internal/objects"
	"github.com/roller/trackgen/internal/scene"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	perilKey = "Decor/Peril"
	coinKey  = "Decor/Coin"
)

func connector(t data.ConnectorType, from, to data.RoadWidth, weight int) data.ConnectorSpec {
	return data.ConnectorSpec{
		Type:        t,
		StartWidth:  from,
		EndWidth:    to,
		SpawnWeight: weight,
		Asset:       "Connectors/" + t.String(),
	}
}

func fullCatalog() []data.ConnectorSpec {
	entry := connector(data.ConnectorEntry, data.WidthMedium, data.WidthMedium, 1)
	entry.Disabled = true
	return []data.ConnectorSpec{
		entry,
		connector(data.ConnectorStraightSmall, data.WidthSmall, data.WidthSmall, 30),
		connector(data.ConnectorStraightMedium, data.WidthMedium, data.WidthMedium, 40),
		connector(data.ConnectorStraightLarge, data.WidthLarge, data.WidthLarge, 30),
		connector(data.ConnectorSmallToMedium, data.WidthSmall, data.WidthMedium, 25),
		connector(data.ConnectorMediumToSmall, data.WidthMedium, data.WidthSmall, 20),
		connector(data.ConnectorMediumToLarge, data.WidthMedium, data.WidthLarge, 20),
		connector(data.ConnectorLargeToMedium, data.WidthLarge, data.WidthMedium, 25),
		connector(data.ConnectorSplit, data.WidthLarge, data.WidthLarge, 10),
	}
}

func segmentSpecs() []data.SegmentSpec {
	return []data.SegmentSpec{
		{Width: data.WidthSmall, Asset: "Segments/Small", ForwardStep: 5, MinHorizontal: -1, MaxHorizontal: 1, HalfWidth: 2},
		{Width: data.WidthMedium, Asset: "Segments/Medium", ForwardStep: 5, MinHorizontal: -2, MaxHorizontal: 2, MinVertical: -1, MaxVertical: 0.5, HalfWidth: 3},
		{Width: data.WidthLarge, Asset: "Segments/Large", ForwardStep: 6, MinHorizontal: -2, MaxHorizontal: 2, HalfWidth: 5,
			Profile: data.ProfileSpec{Kind: "tightrope", Start: 1, End: 1, Rope: 0.5, RopeStart: 0.4, RopeEnd: 0.6}},
	}
}

type fixture struct {
	catalog  *data.ConnectorCatalog
	segments *data.SegmentTable
	graph    *scene.Graph
	reg      *objects.Registry
}

// newFixture loads every asset and, when poolSize > 0, pools all of them
// except collectables.
func newFixture(t *testing.T, specs []data.ConnectorSpec, poolSize int) *fixture {
	t.Helper()
	return newFixtureSegments(t, specs, segmentSpecs(), poolSize)
}

func newFixtureSegments(t *testing.T, specs []data.ConnectorSpec, segs []data.SegmentSpec, poolSize int) *fixture {
	t.Helper()
	catalog, err := data.NewConnectorCatalog(specs)
	require.NoError(t, err)
	segments, err := data.NewSegmentTable(segs)
	require.NoError(t, err)

	lib := scene.NewLibrary()
	RegisterPrefabs(lib, catalog, segments, Assets{Peril: perilKey, Collectable: coinKey, CollectableValue: 5})
	graph := scene.NewGraph()
	reg := objects.NewRegistry(lib, graph, zap.NewNop())

	var keys []string
	for _, c := range catalog.All() {
		keys = append(keys, c.Asset)
	}
	for _, s := range segments.All() {
		keys = append(keys, s.Asset)
	}
	keys = append(keys, perilKey)
	for _, key := range keys {
		_, err := reg.Load(key)
		require.NoError(t, err)
		if poolSize > 0 {
			require.NoError(t, reg.CreatePool(key, poolSize, nil))
		}
	}
	_, err = reg.Load(coinKey)
	require.NoError(t, err)

	return &fixture{catalog: catalog, segments: segments, graph: graph, reg: reg}
}

func (f *fixture) builder(t *testing.T, opts Options) *Builder {
	t.Helper()
	if opts.TargetLength == 0 {
		opts.TargetLength = 40
	}
	if opts.Spline == (SplineOptions{}) {
		opts.Spline = DefaultSplineOptions()
		opts.Spline.PerilKey = perilKey
		opts.Spline.CollectableKey = coinKey
	}
	b, err := NewBuilder(f.reg, f.graph, f.catalog, f.segments, opts, zap.NewNop())
	require.NoError(t, err)
	return b
}

func connectorTypes(tr *Track) []data.ConnectorType {
	out := make([]data.ConnectorType, 0, len(tr.Connectors))
	for _, c := range tr.Connectors {
		out = append(out, c.Type())
	}
	return out
}
