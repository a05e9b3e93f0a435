package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/game"
	"github.com/pthm-cable/blobs/systems"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output perf and world counts via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	workers := flag.Int("workers", 0, "Evaluation workers (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Initialize cached config values for hot paths
	systems.InitCache()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g, err := game.NewGame(game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Workers:   *workers,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"world", []int{cfg.World.Width, cfg.World.Height},
		"field_layout", cfg.Derived.Layout.String(),
		"window_convention", cfg.Derived.Proximity.Convention.String(),
	)

	for *maxTicks <= 0 || g.Tick() < *maxTicks {
		g.Step()
	}

	best, ok := g.BestLineage()
	slog.Info("max ticks reached",
		"tick", g.Tick(),
		"blobs", g.NumBlobs(),
		"best_generation", best.Generation,
		"best_genome", best.Genome.String(),
		"has_best", ok,
	)
}
