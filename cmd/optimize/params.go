// Package main provides CMA-ES tuning of blob ecology parameters.
package main

import (
	"github.com/pthm-cable/blobs/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Food supply
			{Name: "nutrition", Path: "food.nutrition", Min: 10, Max: 60, Default: 33.33},
			{Name: "min_food", Path: "food.min_food", Min: 32, Max: 512, Default: 128},
			{Name: "emit_chance", Path: "food.emit_chance", Min: 0.02, Max: 0.3, Default: 0.1},
			// Sensing and water
			{Name: "sensor_radius_sq", Path: "sensors.radius_sq", Min: 25, Max: 400, Default: 100},
			{Name: "brownian_scale", Path: "physics.brownian_scale", Min: 2, Max: 32, Default: 8},
			// Reproduction and mutation
			{Name: "drive_threshold", Path: "reproduction.drive_threshold", Min: 0.1, Max: 0.6, Default: 0.3},
			{Name: "mutation_rate", Path: "mutation.rate", Min: 0.0001, Max: 0.01, Default: 0.001},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config and recomputes its
// derived values. Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	cfg.Food.Nutrition = clamped[0]
	cfg.Food.MinFood = int(clamped[1])
	cfg.Food.EmitChance = clamped[2]
	cfg.Sensors.RadiusSq = clamped[3]
	cfg.Physics.BrownianScale = clamped[4]
	cfg.Reproduction.DriveThreshold = clamped[5]
	cfg.Mutation.Rate = clamped[6]

	return cfg.Revalidate()
}

// ExtractFromConfig extracts current parameter values from a Config.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Food.Nutrition,
		float64(cfg.Food.MinFood),
		cfg.Food.EmitChance,
		cfg.Sensors.RadiusSq,
		cfg.Physics.BrownianScale,
		cfg.Reproduction.DriveThreshold,
		cfg.Mutation.Rate,
	}
}
