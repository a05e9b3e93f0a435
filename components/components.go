// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/blobs/genome"

// Blob holds the state of one genome-driven agent.
// Its controller lives outside the ECS, keyed by ID.
type Blob struct {
	ID         uint32
	Energy     float32
	Age        float32
	Generation uint16
	Genome     genome.Genome
}

// Alive reports whether the blob still has energy. Blobs are removed below zero.
func (b *Blob) Alive() bool {
	return b.Energy >= 0
}

// Food is a stationary nutrient source that emits chems.
type Food struct {
	Nutrition  float32
	ChemID     uint8
	EmitChance float32 // per-tick probability of emitting a chem
}

// Chem is a chemical marker blobs can sense. It dissolves after DissolveLife ticks.
type Chem struct {
	ChemID       uint8
	DissolveLife uint16
}
