package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/genome"
	"github.com/pthm-cable/blobs/systems"
)

func init() {
	config.MustInit("")
	systems.InitCache()
}

// breeder decodes to a single Direct synapse from input 1 to the reproduce
// output with weight 127/32, so with no chems nearby the drive is σ(1.98).
var breeder = genome.New(0, 0x467F)

// withConfig applies edit to the global config for the duration of the test.
func withConfig(t *testing.T, edit func(cfg *config.Config)) {
	t.Helper()
	cfg := config.Cfg()
	saved := *cfg
	edit(cfg)
	t.Cleanup(func() { *cfg = saved })
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	g, err := NewGame(opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestNewGame_SpawnsPopulation(t *testing.T) {
	g := newTestGame(t, Options{Seed: 42})

	if g.NumBlobs() != 32 {
		t.Errorf("blobs = %d, want 32", g.NumBlobs())
	}
	if g.NumFood() != 128 {
		t.Errorf("food = %d, want 128", g.NumFood())
	}
	if g.NumChems() != 0 {
		t.Errorf("chems = %d, want 0", g.NumChems())
	}
	for _, b := range g.Blobs() {
		if b.Energy != 100 || b.Generation != 0 {
			t.Fatalf("fresh blob %+v, want energy 100 generation 0", b)
		}
	}
	if len(g.brains) != 32 {
		t.Errorf("controllers = %d, want 32", len(g.brains))
	}
}

func TestStep_KeepsInvariants(t *testing.T) {
	g := newTestGame(t, Options{Seed: 42})
	w, h := config.Cfg().Derived.WorldW32, config.Cfg().Derived.WorldH32

	for i := 0; i < 300; i++ {
		g.Step()

		blobs := g.Blobs()
		if len(blobs) != g.NumBlobs() {
			t.Fatalf("tick %d: counted %d blobs, tracked %d", g.Tick(), len(blobs), g.NumBlobs())
		}
		if len(g.brains) != g.NumBlobs() {
			t.Fatalf("tick %d: %d controllers for %d blobs", g.Tick(), len(g.brains), g.NumBlobs())
		}
		for _, b := range blobs {
			if b.Energy < 0 {
				t.Fatalf("tick %d: blob %d survived cleanup with energy %v", g.Tick(), b.ID, b.Energy)
			}
		}
	}

	if g.Tick() != 300 {
		t.Errorf("Tick = %d, want 300", g.Tick())
	}
	if g.NumBlobs() < 32 {
		t.Errorf("blobs = %d right after a respawn round, want at least 32", g.NumBlobs())
	}
	if g.NumChems() == 0 {
		t.Error("no chems were emitted in 300 ticks")
	}

	query := g.moverFilter.Query()
	for query.Next() {
		pos, _, _ := query.Get()
		if pos.X < 0 || pos.X >= w || pos.Y < 0 || pos.Y >= h {
			t.Errorf("entity at (%v, %v) outside the world", pos.X, pos.Y)
		}
	}
}

func TestStep_ChemsDissolve(t *testing.T) {
	withConfig(t, func(cfg *config.Config) {
		cfg.Chem.DissolveLife = 2
		cfg.Food.EmitChance = 1
	})
	g := newTestGame(t, Options{Seed: 42})

	// Every food emits each tick and a chem lives for three dissolve passes.
	for i := 0; i < 10; i++ {
		g.Step()
	}
	if limit := 3 * 128; g.NumChems() > limit {
		t.Errorf("chems = %d, want at most %d with life 2", g.NumChems(), limit)
	}
	if g.NumChems() == 0 {
		t.Error("no chems present")
	}
}

// TestStep_ParallelMatchesSerial checks that evaluation results do not depend
// on worker count or batch size.
func TestStep_ParallelMatchesSerial(t *testing.T) {
	run := func(t *testing.T, workers, batch, threshold int) *Game {
		withConfig(t, func(cfg *config.Config) {
			cfg.Parallel.BatchSize = batch
			cfg.Parallel.Threshold = threshold
		})
		g := newTestGame(t, Options{Seed: 7, Workers: workers})
		for i := 0; i < 200; i++ {
			g.Step()
		}
		return g
	}

	want := run(t, 1, 16, 1<<30).Blobs() // inline
	variants := []struct {
		name                      string
		workers, batch, threshold int
	}{
		{"1 worker", 1, 16, 0},
		{"4 workers", 4, 16, 0},
		{"4 workers batch 1", 4, 1, 0},
		{"3 workers batch 7", 3, 7, 0},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			got := run(t, v.workers, v.batch, v.threshold).Blobs()
			if len(got) != len(want) {
				t.Fatalf("blobs = %d, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("blob %d = %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestStep_SameSeedSameWorld(t *testing.T) {
	a := newTestGame(t, Options{Seed: 3})
	b := newTestGame(t, Options{Seed: 3})
	for i := 0; i < 120; i++ {
		a.Step()
		b.Step()
	}
	ab, bb := a.Blobs(), b.Blobs()
	if len(ab) != len(bb) || a.NumFood() != b.NumFood() || a.NumChems() != b.NumChems() {
		t.Fatalf("worlds diverged: %d/%d blobs, %d/%d food", len(ab), len(bb), a.NumFood(), b.NumFood())
	}
	for i := range ab {
		if ab[i] != bb[i] {
			t.Fatalf("blob %d differs", i)
		}
	}
}

func TestSpawn_UsesSeedGenomes(t *testing.T) {
	seeds := []genome.Genome{breeder, genome.MustParse("297748235675921506640778121573503598592")}
	withConfig(t, func(cfg *config.Config) {
		cfg.Population.SeedGenomes = seeds
	})
	g := newTestGame(t, Options{Seed: 42})

	blobs := g.Blobs()
	if blobs[0].Genome != seeds[0] || blobs[1].Genome != seeds[1] {
		t.Errorf("first genomes = %v, %v; want the seeds", blobs[0].Genome, blobs[1].Genome)
	}
	if blobs[2].Genome == seeds[0] || blobs[2].Genome == seeds[1] {
		t.Error("seed genome reused after the seed list was exhausted")
	}
}

func TestReproduction_SplitsEnergyAndTracksLineage(t *testing.T) {
	seeds := make([]genome.Genome, 32)
	for i := range seeds {
		seeds[i] = breeder
	}
	withConfig(t, func(cfg *config.Config) {
		cfg.Population.SeedGenomes = seeds
		cfg.Schedule.SlowInterval = 1
		cfg.Food.MinFood = 0 // no feeding, so every parent holds the same energy
	})
	dir := t.TempDir()
	g := newTestGame(t, Options{Seed: 42, OutputDir: dir})

	g.Step()

	if g.NumBlobs() <= 32 {
		t.Fatalf("blobs = %d, want children beyond the 32 breeders", g.NumBlobs())
	}
	var parents, children int
	for _, b := range g.Blobs() {
		switch b.Generation {
		case 0:
			if b.Energy < 60 {
				parents++
			}
		case 1:
			children++
			if b.Energy < 45 || b.Energy > 50 {
				t.Errorf("child energy = %v, want about half of 100", b.Energy)
			}
		}
	}
	if children != g.NumBlobs()-32 || parents != children {
		t.Errorf("children = %d, halved parents = %d, extra blobs = %d", children, parents, g.NumBlobs()-32)
	}

	best, ok := g.BestLineage()
	if !ok || best.Generation != 1 {
		t.Fatalf("best lineage = %+v, %v; want generation 1", best, ok)
	}

	g.Unload()
	data, err := os.ReadFile(filepath.Join(dir, "lineage.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), best.Genome.String()) {
		t.Errorf("lineage.csv does not mention %s:\n%s", best.Genome, data)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}

func TestCleanupDead_RemovesStarved(t *testing.T) {
	g := newTestGame(t, Options{Seed: 42})

	query := g.blobFilter.Query()
	n := 0
	for query.Next() {
		_, blob := query.Get()
		if n%2 == 0 {
			blob.Energy = -1
		}
		n++
	}

	g.cleanupDead()

	if g.NumBlobs() != 16 || len(g.brains) != 16 {
		t.Errorf("after cleanup: %d blobs, %d controllers; want 16", g.NumBlobs(), len(g.brains))
	}
	for _, b := range g.Blobs() {
		if b.Energy < 0 {
			t.Errorf("blob %d with negative energy survived", b.ID)
		}
	}
}

func TestFeeding_EatsAndRemovesFood(t *testing.T) {
	g := newTestGame(t, Options{Seed: 42})

	// Move every blob onto the first food item.
	var target struct{ X, Y float32 }
	fq := g.foodFilter.Query()
	first := true
	for fq.Next() {
		pos, _ := fq.Get()
		if first {
			target.X, target.Y = pos.X, pos.Y
			first = false
		}
	}
	bq := g.blobFilter.Query()
	for bq.Next() {
		pos, _ := bq.Get()
		pos.X, pos.Y = target.X, target.Y
	}

	g.updateFeeding()

	if g.NumFood() > 127 {
		t.Errorf("food = %d, want the shared item eaten", g.NumFood())
	}
	fed := 0
	for _, b := range g.Blobs() {
		if b.Energy > 100 {
			fed++
		}
	}
	if fed != 1 {
		t.Errorf("%d blobs gained energy from one food item, want 1", fed)
	}
}
