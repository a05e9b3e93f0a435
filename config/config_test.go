package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/blobs/genome"
	"github.com/pthm-cable/blobs/proximity"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Population.MinBlobs != 32 {
		t.Errorf("MinBlobs = %d, want 32", cfg.Population.MinBlobs)
	}
	if cfg.Parallel.BatchSize != 16 {
		t.Errorf("BatchSize = %d, want 16", cfg.Parallel.BatchSize)
	}
	if cfg.Derived.SensorRadius != 10 {
		t.Errorf("SensorRadius = %v, want 10", cfg.Derived.SensorRadius)
	}
	if cfg.Derived.Layout != genome.LayoutReference {
		t.Errorf("Layout = %s, want reference", cfg.Derived.Layout)
	}
	if cfg.Derived.Proximity != proximity.ReferenceOptions {
		t.Errorf("Proximity = %+v, want %+v", cfg.Derived.Proximity, proximity.ReferenceOptions)
	}
	if m := cfg.Derived.Mutator; m == nil || m.Regions() != 8 || m.Rate() != genome.MutationRate {
		t.Errorf("Mutator = %+v, want 8 regions at %g", m, genome.MutationRate)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, `
neural:
  field_layout: nominal
proximity:
  convention: include_right
  min_points: 1
mutation:
  regions: 1
population:
  seed_genomes:
    - 297748235675921506640778121573503598592
    - "27412239664388069923010120978984735311"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.Layout != genome.LayoutNominal {
		t.Errorf("Layout = %s, want nominal", cfg.Derived.Layout)
	}
	want := proximity.Options{Convention: proximity.IncludeRight, MinPoints: 1}
	if cfg.Derived.Proximity != want {
		t.Errorf("Proximity = %+v, want %+v", cfg.Derived.Proximity, want)
	}
	if cfg.Derived.Mutator.Regions() != 1 {
		t.Errorf("Regions = %d, want 1", cfg.Derived.Mutator.Regions())
	}
	if len(cfg.Population.SeedGenomes) != 2 {
		t.Fatalf("SeedGenomes = %d, want 2", len(cfg.Population.SeedGenomes))
	}
	if got := cfg.Population.SeedGenomes[0].InternalCount(); got != 14 {
		t.Errorf("seed genome internal count = %d, want 14", got)
	}
	// Untouched keys keep their defaults.
	if cfg.Food.MinFood != 128 {
		t.Errorf("MinFood = %d, want default 128", cfg.Food.MinFood)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"layout", "neural:\n  field_layout: sideways\n", "field layout"},
		{"convention", "proximity:\n  convention: middle\n", "window convention"},
		{"regions", "mutation:\n  regions: 3\n", "regions"},
		{"rate", "mutation:\n  rate: 2\n", "mutation rate"},
		{"batch", "parallel:\n  batch_size: 0\n", "batch_size"},
		{"min points", "proximity:\n  min_points: 0\n", "min_points"},
		{"lineage", "telemetry:\n  lineage_metric: fitness\n", "lineage_metric"},
		{"genome", "population:\n  seed_genomes: [not-a-number]\n", "invalid value"},
		{"yaml", "world: [", "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Population.SeedGenomes = []genome.Genome{genome.MustParse("297748235675921506640778121573503598592")}
	cfg.World.Width = 640

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.World.Width != 640 {
		t.Errorf("Width = %d, want 640", back.World.Width)
	}
	if len(back.Population.SeedGenomes) != 1 || back.Population.SeedGenomes[0] != cfg.Population.SeedGenomes[0] {
		t.Errorf("SeedGenomes = %v, want %v", back.Population.SeedGenomes, cfg.Population.SeedGenomes)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg did not panic before Init")
		}
	}()
	Cfg()
}

func TestCloneAndRevalidate(t *testing.T) {
	cfg := Defaults()
	cfg.Population.SeedGenomes = []genome.Genome{genome.New(0, 1)}

	cp := cfg.Clone()
	cp.Sensors.RadiusSq = 400
	cp.Population.SeedGenomes[0] = genome.New(0, 2)
	if err := cp.Revalidate(); err != nil {
		t.Fatalf("Revalidate: %v", err)
	}

	if cp.Derived.SensorRadius != 20 {
		t.Errorf("clone SensorRadius = %v, want 20", cp.Derived.SensorRadius)
	}
	if cfg.Derived.SensorRadius != 10 || cfg.Population.SeedGenomes[0] != genome.New(0, 1) {
		t.Error("editing the clone changed the original")
	}

	cp.Mutation.Regions = 5
	if err := cp.Revalidate(); err == nil {
		t.Error("Revalidate accepted 5 mutation regions")
	}
}
