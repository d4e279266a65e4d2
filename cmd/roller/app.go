package main

import (
	"context"
	"fmt"

	"github.com/roller/trackgen/internal/config"
	"github.com/roller/trackgen/internal/data"
	"github.com/roller/trackgen/internal/objects"
	"github.com/roller/trackgen/internal/persist"
	"github.com/roller/trackgen/internal/scene"
	"github.com/roller/trackgen/internal/scripting"
	"github.com/roller/trackgen/internal/track"
	"go.uber.org/zap"
)

// app holds everything a command needs once startup has finished.
type app struct {
	cfg        *config.Config
	log        *zap.Logger
	graph      *scene.Graph
	reg        *objects.Registry
	connectors *data.ConnectorCatalog
	segments   *data.SegmentTable
	builder    *track.Builder
	lua        *scripting.Engine // nil when scripting is disabled
	db         *persist.DB       // nil when the database is disabled
	snapshots  *persist.PoolStatsRepo
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	cfg := a.cfg

	// 1. Static data
	printSection("Data")
	var err error
	a.connectors, err = data.LoadConnectorCatalog(cfg.Data.ConnectorList)
	if err != nil {
		return fmt.Errorf("connector catalog: %w", err)
	}
	printStat("Connectors", a.connectors.Count())

	a.segments, err = data.LoadSegmentTable(cfg.Data.SegmentList)
	if err != nil {
		return fmt.Errorf("segment table: %w", err)
	}
	printStat("Segment widths", a.segments.Count())

	objectList, err := data.LoadObjectList(cfg.Data.ObjectList)
	if err != nil {
		return fmt.Errorf("object list: %w", err)
	}
	printStat("Preloaded objects", len(objectList))
	fmt.Println()

	// 2. Optional diagnostics database
	demand := map[string]int{}
	if cfg.Database.Enabled {
		printSection("Database")
		a.db, err = persist.NewDB(ctx, cfg.Database, a.log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		printOK("PostgreSQL connected")
		if err := persist.RunMigrations(ctx, a.db.Pool, a.log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("Migrations applied")
		a.snapshots = persist.NewPoolStatsRepo(a.db)

		if cfg.Database.AutoSize {
			qctx, cancel := a.db.Context(ctx)
			demand, err = a.snapshots.LatestPeakDemand(qctx)
			cancel()
			if err != nil {
				return fmt.Errorf("pool sizes: %w", err)
			}
			printStat("Recorded pool demand", len(demand))
		}
		fmt.Println()
	}

	// 3. Scene and pools
	printSection("Pools")
	lib := scene.NewLibrary()
	track.RegisterPrefabs(lib, a.connectors, a.segments, track.Assets{
		Peril:            cfg.Track.PerilKey,
		Collectable:      cfg.Track.CollectableKey,
		CollectableValue: cfg.Track.CollectableValue,
	})
	a.graph = scene.NewGraph()
	a.reg = objects.NewRegistry(lib, a.graph, a.log)

	pools := 0
	for _, entry := range objectList {
		if _, err := a.reg.Load(entry.Key); err != nil {
			return fmt.Errorf("preload %s: %w", entry.Key, err)
		}
		size := poolSize(entry.PoolSize, demand, entry.Key)
		if size != entry.PoolSize {
			a.log.Info("pool sized from recorded demand",
				zap.String("key", entry.Key),
				zap.Int("configured", entry.PoolSize),
				zap.Int("size", size),
			)
		}
		if size == 0 {
			continue
		}
		if err := a.reg.CreatePool(entry.Key, size, nil); err != nil {
			return fmt.Errorf("pool %s: %w", entry.Key, err)
		}
		pools++
	}

	// Assets the catalogs reference but the preload list leaves out are
	// loaded without a pool.
	for _, key := range a.referencedAssets() {
		if a.reg.Has(key) {
			continue
		}
		if _, err := a.reg.Load(key); err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
		a.log.Debug("loaded unpooled asset", zap.String("key", key))
	}
	printStat("Prefabs", lib.Count())
	printStat("Pools", pools)
	fmt.Println()

	// 4. Track builder
	entry, err := data.ParseConnectorType(cfg.Track.EntryConnector)
	if err != nil {
		return fmt.Errorf("track.entry_connector: %w", err)
	}
	fallback, err := data.ParseConnectorType(cfg.Track.DefaultConnector)
	if err != nil {
		return fmt.Errorf("track.default_connector: %w", err)
	}
	a.builder, err = track.NewBuilder(a.reg, a.graph, a.connectors, a.segments, track.Options{
		SegmentCount:     cfg.Track.SegmentCount,
		TargetLength:     cfg.Track.TargetLength,
		EntryConnector:   entry,
		DefaultConnector: fallback,
		Seed:             cfg.Track.Seed,
		Spline: track.SplineOptions{
			PerilKey:          cfg.Track.PerilKey,
			CollectableKey:    cfg.Track.CollectableKey,
			PerilStep:         cfg.Track.PerilStep,
			PerilOffset:       cfg.Track.PerilOffset,
			CollectableHeight: cfg.Track.CollectableHeight,
			CollectableJitter: cfg.Track.CollectableJitter,
			MaxNodes:          cfg.Track.MaxNodes,
			BranchOffset:      cfg.Track.BranchOffset,
		},
	}, a.log)
	if err != nil {
		return fmt.Errorf("track builder: %w", err)
	}

	// 5. Optional Lua hooks
	if cfg.Scripting.Enabled {
		printSection("Scripting")
		a.lua, err = scripting.NewEngine(cfg.Scripting.Dir, a.log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		a.installHooks()
		fmt.Println()
	}
	return nil
}

// installHooks routes selector weights and segment lengths through Lua when
// the scripts define the matching functions.
func (a *app) installHooks() {
	if a.lua.HasFunction("connector_weight") {
		a.builder.Selector().SetWeightFunc(func(spec *data.ConnectorSpec, index int) int {
			return a.lua.ConnectorWeight(scripting.WeightContext{
				Type:       spec.Type.String(),
				StartWidth: spec.StartWidth.String(),
				EndWidth:   spec.EndWidth.String(),
				Weight:     spec.SpawnWeight,
				Index:      index,
			})
		})
		printOK("connector_weight hook installed")
	}
	if a.lua.HasFunction("segment_length") {
		a.builder.SetLengthFunc(func(index int, width data.RoadWidth, base float64) float64 {
			return a.lua.SegmentLength(scripting.LengthContext{
				Index:  index,
				Width:  width.String(),
				Length: base,
			})
		})
		printOK("segment_length hook installed")
	}
}

// poolSize returns the recorded peak demand for key when there is one, so
// pools shrink as well as grow between runs. Keys configured without a pool
// stay unpooled.
func poolSize(configured int, demand map[string]int, key string) int {
	if configured <= 0 {
		return configured
	}
	if peak := demand[key]; peak > 0 {
		return peak
	}
	return configured
}

func (a *app) referencedAssets() []string {
	var keys []string
	for _, c := range a.connectors.All() {
		keys = append(keys, c.Asset)
	}
	for _, s := range a.segments.All() {
		keys = append(keys, s.Asset)
	}
	for _, k := range []string{a.cfg.Track.PerilKey, a.cfg.Track.CollectableKey} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Close resets the track and shuts every owned resource down.
func (a *app) Close() {
	if a.builder != nil {
		a.builder.Reset()
	}
	if a.reg != nil {
		a.reg.Shutdown()
	}
	if a.graph != nil {
		a.graph.FlushDestroyQueue()
	}
	if a.lua != nil {
		a.lua.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
