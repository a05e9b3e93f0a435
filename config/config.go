// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/blobs/genome"
	"github.com/pthm-cable/blobs/proximity"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Physics      PhysicsConfig      `yaml:"physics"`
	Population   PopulationConfig   `yaml:"population"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Energy       EnergyConfig       `yaml:"energy"`
	Food         FoodConfig         `yaml:"food"`
	Chem         ChemConfig         `yaml:"chem"`
	Sensors      SensorsConfig      `yaml:"sensors"`
	Neural       NeuralConfig       `yaml:"neural"`
	Proximity    ProximityConfig    `yaml:"proximity"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	Parallel     ParallelConfig     `yaml:"parallel"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds simulation world dimensions. Positions wrap at the edges.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PhysicsConfig holds the water drift model.
type PhysicsConfig struct {
	BrownianScale float64 `yaml:"brownian_scale"` // Standard normal kick is divided by this
	Drag          float64 `yaml:"drag"`           // Velocity multiplier applied each tick
}

// PopulationConfig holds blob population parameters.
type PopulationConfig struct {
	MinBlobs      int             `yaml:"min_blobs"`      // Respawn random blobs below this count
	InitialEnergy float64         `yaml:"initial_energy"` // Energy of freshly spawned blobs
	SeedGenomes   []genome.Genome `yaml:"seed_genomes"`   // Used round-robin before random genomes
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	DriveThreshold float64 `yaml:"drive_threshold"` // Raw reproduce output must exceed this
	StarveEnergy   float64 `yaml:"starve_energy"`   // At or below this, an attempt starves the parent
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Regions int     `yaml:"regions"` // Equal bit regions, one possible flip each
	Rate    float64 `yaml:"rate"`    // Per-region flip probability
}

// EnergyConfig holds metabolism parameters.
type EnergyConfig struct {
	BaseDrain       float64 `yaml:"base_drain"`        // Energy lost per tick for existing
	MoveCostDivisor float64 `yaml:"move_cost_divisor"` // Cost = (|dx|+|dy|)^2 / this
	AgeStep         float64 `yaml:"age_step"`          // Age gained per tick
}

// FoodConfig holds food parameters.
type FoodConfig struct {
	MinFood     int     `yaml:"min_food"`      // Respawn food below this count
	SpawnBatch  int     `yaml:"spawn_batch"`   // Max food spawned per slow tick
	Nutrition   float64 `yaml:"nutrition"`     // Energy gained when eaten
	EatRadiusSq float64 `yaml:"eat_radius_sq"` // Squared eating distance
	EmitChance  float64 `yaml:"emit_chance"`   // Per-tick chance to emit a chem
	ChemID      uint8   `yaml:"chem_id"`
}

// ChemConfig holds chemical marker parameters.
type ChemConfig struct {
	DissolveLife int `yaml:"dissolve_life"` // Ticks before a chem dissolves
}

// SensorsConfig holds sensor parameters.
type SensorsConfig struct {
	RadiusSq       float64 `yaml:"radius_sq"`       // Squared chem sensing distance
	OscillatorFreq float64 `yaml:"oscillator_freq"` // Oscillator = 0.5 + sin(age*freq)/2
}

// NeuralConfig holds genome decoding parameters.
type NeuralConfig struct {
	FieldLayout string `yaml:"field_layout"` // reference | nominal
}

// ProximityConfig holds marker index parameters.
type ProximityConfig struct {
	Convention string `yaml:"convention"` // exclude_right | include_right
	MinPoints  int    `yaml:"min_points"`
}

// ScheduleConfig holds tick cadence parameters.
type ScheduleConfig struct {
	SlowInterval int `yaml:"slow_interval"` // Ticks between spawn/reproduction rounds
}

// ParallelConfig holds worker pool parameters.
type ParallelConfig struct {
	BatchSize int `yaml:"batch_size"` // Blobs per work chunk
	Threshold int `yaml:"threshold"`  // Below this many blobs, evaluate inline
	Workers   int `yaml:"workers"`    // 0 = GOMAXPROCS
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LineageMetric string `yaml:"lineage_metric"` // generation | age
	PerfWindow    int    `yaml:"perf_window"`    // Ticks in the rolling perf window
	LogInterval   int    `yaml:"log_interval"`   // Ticks between perf log lines (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW32     float32
	WorldH32     float32
	SensorRadius float32 // sqrt(Sensors.RadiusSq), the index window limit
	Layout       genome.Layout
	Proximity    proximity.Options
	Mutator      *genome.Mutator
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration, e.g. with a tuned copy.
func Set(cfg *Config) {
	global = cfg
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Population.SeedGenomes = append([]genome.Genome(nil), c.Population.SeedGenomes...)
	return &cp
}

// Revalidate recomputes derived values after fields were changed in code.
func (c *Config) Revalidate() error {
	if err := c.computeDerived(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// computeDerived validates the loaded values and fills Derived.
func (c *Config) computeDerived() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.Parallel.BatchSize < 1 {
		return fmt.Errorf("parallel.batch_size must be at least 1, got %d", c.Parallel.BatchSize)
	}
	if c.Proximity.MinPoints < 1 {
		return fmt.Errorf("proximity.min_points must be at least 1, got %d", c.Proximity.MinPoints)
	}
	if c.Schedule.SlowInterval < 1 {
		return fmt.Errorf("schedule.slow_interval must be at least 1, got %d", c.Schedule.SlowInterval)
	}
	if c.Physics.BrownianScale <= 0 || c.Energy.MoveCostDivisor <= 0 {
		return fmt.Errorf("physics.brownian_scale and energy.move_cost_divisor must be positive")
	}
	if c.Sensors.RadiusSq < 0 {
		return fmt.Errorf("sensors.radius_sq must not be negative, got %g", c.Sensors.RadiusSq)
	}
	switch c.Telemetry.LineageMetric {
	case "generation", "age":
	default:
		return fmt.Errorf("telemetry.lineage_metric must be generation or age, got %q", c.Telemetry.LineageMetric)
	}

	layout, err := genome.ParseLayout(c.Neural.FieldLayout)
	if err != nil {
		return err
	}
	conv, err := proximity.ParseConvention(c.Proximity.Convention)
	if err != nil {
		return err
	}
	mut, err := genome.NewMutator(c.Mutation.Regions, c.Mutation.Rate)
	if err != nil {
		return err
	}

	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	c.Derived.SensorRadius = float32(math.Sqrt(c.Sensors.RadiusSq))
	c.Derived.Layout = layout
	c.Derived.Proximity = proximity.Options{Convention: conv, MinPoints: c.Proximity.MinPoints}
	c.Derived.Mutator = mut
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
