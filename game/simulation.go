package game

import (
	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/proximity"
	"github.com/pthm-cable/blobs/systems"
	"github.com/pthm-cable/blobs/telemetry"
)

// Step advances the simulation by one tick.
func (g *Game) Step() {
	g.tick++
	perf := g.perfCollector
	perf.StartTick()

	perf.StartPhase(telemetry.PhaseDrift)
	g.updateDrift()

	perf.StartPhase(telemetry.PhaseProximity)
	g.rebuildChemIndex()

	perf.StartPhase(telemetry.PhaseBehavior)
	g.updateBehavior()

	perf.StartPhase(telemetry.PhaseFeeding)
	g.updateFeeding()

	perf.StartPhase(telemetry.PhaseChems)
	g.dissolveChems()
	g.emitChems()

	perf.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()

	if g.tick%int64(g.cfg.Schedule.SlowInterval) == 0 {
		perf.StartPhase(telemetry.PhaseSpawn)
		g.spawnBlobs()
		g.spawnFood(g.cfg.Food.SpawnBatch)

		perf.StartPhase(telemetry.PhaseReproduction)
		g.updateReproduction()

		perf.StartPhase(telemetry.PhaseLineage)
		g.updateLineage()
	}

	perf.EndTick()
	g.flushTelemetry()
}

// updateDrift moves every floating entity with the water.
func (g *Game) updateDrift() {
	w, h := g.cfg.Derived.WorldW32, g.cfg.Derived.WorldH32
	query := g.moverFilter.Query()
	for query.Next() {
		pos, vel, acc := query.Get()
		systems.Drift(g.rng, pos, vel, acc, w, h)
	}
}

// rebuildChemIndex re-sorts the chem markers. Must complete before evaluation.
func (g *Game) rebuildChemIndex() {
	g.chemPoints = g.chemPoints[:0]
	query := g.chemFilter.Query()
	for query.Next() {
		pos, _ := query.Get()
		g.chemPoints = append(g.chemPoints, proximity.Point{X: pos.X, Y: pos.Y})
	}
	g.chemIndex.Rebuild(g.chemPoints)
}

// updateFeeding lets blobs eat nearby food, in query order. Each food item is
// eaten at most once per tick, then removed.
func (g *Game) updateFeeding() {
	g.foods = g.foods[:0]
	g.foodEntities = g.foodEntities[:0]
	fq := g.foodFilter.Query()
	for fq.Next() {
		pos, food := fq.Get()
		g.foods = append(g.foods, systems.FoodItem{Pos: *pos, Nutrition: food.Nutrition})
		g.foodEntities = append(g.foodEntities, fq.Entity())
	}
	if len(g.foods) == 0 {
		return
	}

	bq := g.blobFilter.Query()
	for bq.Next() {
		pos, blob := bq.Get()
		systems.Feed(*pos, blob, g.foods)
	}

	for i := range g.foods {
		if g.foods[i].Eaten {
			g.world.RemoveEntity(g.foodEntities[i])
			g.numFood--
		}
	}
}

// dissolveChems ages chem markers and removes those whose life ran out.
func (g *Game) dissolveChems() {
	g.removeBuf = g.removeBuf[:0]
	query := g.chemFilter.Query()
	for query.Next() {
		_, chem := query.Get()
		if chem.DissolveLife == 0 {
			g.removeBuf = append(g.removeBuf, query.Entity())
		} else {
			chem.DissolveLife--
		}
	}
	for _, e := range g.removeBuf {
		g.world.RemoveEntity(e)
		g.numChems--
	}
}

// emitChems lets each food item release a chem marker at its position.
func (g *Game) emitChems() {
	type emission struct {
		pos    components.Position
		chemID uint8
	}
	var emitted []emission

	query := g.foodFilter.Query()
	for query.Next() {
		pos, food := query.Get()
		if g.rng.Float64() < float64(food.EmitChance) {
			emitted = append(emitted, emission{pos: *pos, chemID: food.ChemID})
		}
	}
	for _, e := range emitted {
		g.spawnChem(e.pos, e.chemID)
	}
}
