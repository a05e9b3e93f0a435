// Package game runs the headless blob simulation on an ark ECS world.
package game

import (
	"fmt"
	"math/rand"
	"runtime"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/neural"
	"github.com/pthm-cable/blobs/proximity"
	"github.com/pthm-cable/blobs/systems"
	"github.com/pthm-cable/blobs/telemetry"
)

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed      int64
	LogStats  bool   // log perf and world counts every telemetry.log_interval ticks
	OutputDir string // empty disables file output
	Workers   int    // overrides parallel.workers when > 0
}

// Game holds the complete simulation state.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   *config.Config

	// Entity mappers, one per entity kind
	blobMapper *ecs.Map4[components.Position, components.Velocity, components.Acceleration, components.Blob]
	foodMapper *ecs.Map4[components.Position, components.Velocity, components.Acceleration, components.Food]
	chemMapper *ecs.Map4[components.Position, components.Velocity, components.Acceleration, components.Chem]

	moverFilter *ecs.Filter3[components.Position, components.Velocity, components.Acceleration]
	blobFilter  *ecs.Filter2[components.Position, components.Blob]
	foodFilter  *ecs.Filter2[components.Position, components.Food]
	chemFilter  *ecs.Filter2[components.Position, components.Chem]

	// Individual component mappers for lookups
	accMap  *ecs.Map1[components.Acceleration]
	blobMap *ecs.Map1[components.Blob]

	// Controller storage (per blob by ID)
	brains map[uint32]*neural.Controller

	// Chem marker index, rebuilt every tick
	chemIndex  *proximity.Index
	chemPoints []proximity.Point

	// Per-tick scratch
	foods        []systems.FoodItem
	foodEntities []ecs.Entity
	removeBuf    []ecs.Entity

	parallel *parallelState

	// Telemetry
	perfCollector *telemetry.PerfCollector
	lineage       *telemetry.Lineage
	outputManager *telemetry.OutputManager
	logStats      bool

	// State
	tick     int64
	nextID   uint32
	nextSeed int
	numBlobs int
	numFood  int
	numChems int
}

// NewGame creates a game from the global config and spawns the starting
// population. config.Init and systems.InitCache must have been called.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()

	metric, err := telemetry.ParseMetric(cfg.Telemetry.LineageMetric)
	if err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("setting up output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	workers := cfg.Parallel.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	world := ecs.NewWorld()
	g := &Game{
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		cfg:   cfg,

		blobMapper: ecs.NewMap4[components.Position, components.Velocity, components.Acceleration, components.Blob](world),
		foodMapper: ecs.NewMap4[components.Position, components.Velocity, components.Acceleration, components.Food](world),
		chemMapper: ecs.NewMap4[components.Position, components.Velocity, components.Acceleration, components.Chem](world),

		moverFilter: ecs.NewFilter3[components.Position, components.Velocity, components.Acceleration](world),
		blobFilter:  ecs.NewFilter2[components.Position, components.Blob](world),
		foodFilter:  ecs.NewFilter2[components.Position, components.Food](world),
		chemFilter:  ecs.NewFilter2[components.Position, components.Chem](world),

		accMap:  ecs.NewMap1[components.Acceleration](world),
		blobMap: ecs.NewMap1[components.Blob](world),

		brains:    make(map[uint32]*neural.Controller),
		chemIndex: proximity.NewIndex(cfg.Derived.Proximity),
		parallel:  newParallelState(workers, cfg.Parallel.BatchSize, cfg.Parallel.Threshold),

		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		lineage:       telemetry.NewLineage(metric),
		outputManager: om,
		logStats:      opts.LogStats,
	}

	g.spawnBlobs()
	g.spawnFood(cfg.Food.MinFood)

	return g, nil
}

// Tick returns the number of completed simulation steps.
func (g *Game) Tick() int64 { return g.tick }

// NumBlobs returns the current blob count.
func (g *Game) NumBlobs() int { return g.numBlobs }

// NumFood returns the current food count.
func (g *Game) NumFood() int { return g.numFood }

// NumChems returns the current chem marker count.
func (g *Game) NumChems() int { return g.numChems }

// BestLineage returns the most advanced blob recorded so far.
func (g *Game) BestLineage() (telemetry.LineageRecord, bool) {
	return g.lineage.Best()
}

// Blobs returns a copy of every blob component in query order.
func (g *Game) Blobs() []components.Blob {
	out := make([]components.Blob, 0, g.numBlobs)
	query := g.blobFilter.Query()
	for query.Next() {
		_, blob := query.Get()
		out = append(out, *blob)
	}
	return out
}

// Unload stops the worker pool and closes output files.
func (g *Game) Unload() {
	g.stopParallelWorkers()
	if err := g.outputManager.Close(); err != nil {
		g.logError("closing output", err)
	}
}
