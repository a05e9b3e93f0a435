package main

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/game"
	"github.com/pthm-cable/blobs/systems"
	"github.com/pthm-cable/blobs/telemetry"
)

// FitnessEvaluator runs headless simulations and scores how far lineages evolve.
// Runs are sequential: the simulation reads the global config and hot-path cache.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	bestFitness float64
	bestLineage telemetry.LineageRecord
	lastMeanGen float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestLineage returns the most advanced lineage seen in any evaluation.
func (fe *FitnessEvaluator) BestLineage() telemetry.LineageRecord {
	return fe.bestLineage
}

// LastMeanGeneration returns the mean best generation of the most recent evaluation.
func (fe *FitnessEvaluator) LastMeanGeneration() float64 {
	return fe.lastMeanGen
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// the negated mean of the best generation reached across seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	cfg.Telemetry.LineageMetric = "generation"
	cfg.Telemetry.LogInterval = 0
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejecting parameters", "error", err)
		return 0
	}
	config.Set(cfg)
	systems.InitCache()

	var total float64
	for _, seed := range fe.seeds {
		best, ok := fe.runSimulation(seed)
		if !ok {
			continue
		}
		total += float64(best.Generation)
		if best.Generation > fe.bestLineage.Generation {
			fe.bestLineage = best
		}
	}

	fe.lastMeanGen = total / float64(len(fe.seeds))
	fitness := -fe.lastMeanGen
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
	}
	return fitness
}

// runSimulation runs one seed to maxTicks and returns its best lineage.
func (fe *FitnessEvaluator) runSimulation(seed int64) (telemetry.LineageRecord, bool) {
	g, err := game.NewGame(game.Options{Seed: seed})
	if err != nil {
		slog.Error("failed to create game", "seed", seed, "error", err)
		return telemetry.LineageRecord{}, false
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.Step()
	}
	return g.BestLineage()
}
