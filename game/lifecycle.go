package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/genome"
	"github.com/pthm-cable/blobs/neural"
	"github.com/pthm-cable/blobs/systems"
	"github.com/pthm-cable/blobs/telemetry"
)

// randomPosition returns a uniform position inside the world.
func (g *Game) randomPosition() components.Position {
	return components.Position{
		X: g.rng.Float32() * g.cfg.Derived.WorldW32,
		Y: g.rng.Float32() * g.cfg.Derived.WorldH32,
	}
}

// spawnBlobs tops the population up to population.min_blobs. Configured seed
// genomes are used once each, in order, before random genomes.
func (g *Game) spawnBlobs() {
	cfg := g.cfg
	for g.numBlobs < cfg.Population.MinBlobs {
		var gen genome.Genome
		if g.nextSeed < len(cfg.Population.SeedGenomes) {
			gen = cfg.Population.SeedGenomes[g.nextSeed]
			g.nextSeed++
		} else {
			gen = genome.Random(g.rng)
		}
		g.spawnBlob(g.randomPosition(), gen, float32(cfg.Population.InitialEnergy), 0)
	}
}

// spawnBlob creates a blob entity and decodes its controller.
func (g *Game) spawnBlob(pos components.Position, gen genome.Genome, energy float32, generation uint16) ecs.Entity {
	id := g.nextID
	g.nextID++

	g.brains[id] = neural.FromGenome(gen, g.cfg.Derived.Layout)

	vel := components.Velocity{}
	acc := components.Acceleration{}
	blob := components.Blob{
		ID:         id,
		Energy:     energy,
		Generation: generation,
		Genome:     gen,
	}
	entity := g.blobMapper.NewEntity(&pos, &vel, &acc, &blob)
	g.numBlobs++
	return entity
}

// spawnFood adds up to limit food items while below food.min_food.
func (g *Game) spawnFood(limit int) {
	cfg := g.cfg
	for i := 0; i < limit && g.numFood < cfg.Food.MinFood; i++ {
		pos := g.randomPosition()
		vel := components.Velocity{}
		acc := components.Acceleration{}
		food := components.Food{
			Nutrition:  float32(cfg.Food.Nutrition),
			ChemID:     cfg.Food.ChemID,
			EmitChance: float32(cfg.Food.EmitChance),
		}
		g.foodMapper.NewEntity(&pos, &vel, &acc, &food)
		g.numFood++
	}
}

// spawnChem drops a chem marker at pos.
func (g *Game) spawnChem(pos components.Position, chemID uint8) {
	vel := components.Velocity{}
	acc := components.Acceleration{}
	chem := components.Chem{
		ChemID:       chemID,
		DissolveLife: uint16(g.cfg.Chem.DissolveLife),
	}
	g.chemMapper.NewEntity(&pos, &vel, &acc, &chem)
	g.numChems++
}

// cleanupDead removes blobs whose energy dropped below zero, and their controllers.
func (g *Game) cleanupDead() {
	// First pass: collect (the world is locked while a query is open)
	g.removeBuf = g.removeBuf[:0]
	var ids []uint32
	query := g.blobFilter.Query()
	for query.Next() {
		_, blob := query.Get()
		if !blob.Alive() {
			g.removeBuf = append(g.removeBuf, query.Entity())
			ids = append(ids, blob.ID)
		}
	}

	// Second pass: remove
	for i, e := range g.removeBuf {
		delete(g.brains, ids[i])
		g.world.RemoveEntity(e)
		g.numBlobs--
	}
}

// offspring is a pending child collected during the reproduction pass.
type offspring struct {
	pos        components.Position
	gen        genome.Genome
	energy     float32
	generation uint16
}

// updateReproduction lets each blob attempt to reproduce using the latest
// reproduce output of its controller. Children appear at the parent's position
// with a mutated genome and half the parent's energy.
func (g *Game) updateReproduction() {
	mut := g.cfg.Derived.Mutator
	var children []offspring

	query := g.blobFilter.Query()
	for query.Next() {
		pos, blob := query.Get()
		brain, ok := g.brains[blob.ID]
		if !ok {
			continue
		}
		if !systems.ShouldReproduce(g.rng, brain.Output(neural.OutputReproduce)) {
			continue
		}
		energy, ok := systems.SplitEnergy(blob)
		if !ok {
			continue
		}
		children = append(children, offspring{
			pos:        *pos,
			gen:        mut.Mutate(g.rng, blob.Genome),
			energy:     energy,
			generation: blob.Generation + 1,
		})
	}

	for _, c := range children {
		g.spawnBlob(c.pos, c.gen, c.energy, c.generation)
	}
}

// updateLineage offers every blob to the best-lineage tracker.
func (g *Game) updateLineage() {
	query := g.blobFilter.Query()
	for query.Next() {
		_, blob := query.Get()
		r := telemetry.LineageRecord{
			Tick:       g.tick,
			BlobID:     blob.ID,
			Generation: blob.Generation,
			Age:        blob.Age,
			Energy:     blob.Energy,
			Genome:     blob.Genome,
		}
		if g.lineage.Consider(r) {
			if err := g.outputManager.WriteLineage(r); err != nil {
				g.logError("failed to write lineage", err)
			}
		}
	}
}
