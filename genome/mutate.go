package genome

import (
	"fmt"
	"math/rand"
)

// MutationRate is the per-region probability of a single bit flip.
const MutationRate = 0.001

// DefaultRegions spreads mutation pressure evenly over eight 16-bit fields.
const DefaultRegions = 8

// Mutator derives child genomes by flipping at most one bit per region.
type Mutator struct {
	regions int
	width   int
	rate    float64
}

// NewMutator creates a mutator that splits the genome into regions equal,
// contiguous bit ranges and flips one bit in each with probability rate.
func NewMutator(regions int, rate float64) (*Mutator, error) {
	if regions < 1 || regions > Bits || Bits%regions != 0 {
		return nil, fmt.Errorf("genome: regions must evenly divide %d bits, got %d", Bits, regions)
	}
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("genome: mutation rate must be in [0,1], got %g", rate)
	}
	return &Mutator{regions: regions, width: Bits / regions, rate: rate}, nil
}

// DefaultMutator returns the eight-region mutator at MutationRate.
func DefaultMutator() *Mutator {
	return &Mutator{regions: DefaultRegions, width: Bits / DefaultRegions, rate: MutationRate}
}

// Regions returns the number of regions.
func (m *Mutator) Regions() int { return m.regions }

// Rate returns the per-region flip probability.
func (m *Mutator) Rate() float64 { return m.rate }

// Region returns the region index containing bit and its [start, end) bit range.
func (m *Mutator) Region(bit int) (idx, start, end int) {
	idx = bit / m.width
	return idx, idx * m.width, (idx + 1) * m.width
}

// Mutate returns a child of parent. Each region independently flips one
// uniformly chosen bit of its own range with probability Rate.
func (m *Mutator) Mutate(rng *rand.Rand, parent Genome) Genome {
	child := parent
	for i := 0; i < m.regions; i++ {
		if rng.Float64() < m.rate {
			child = child.Flip(i*m.width + rng.Intn(m.width))
		}
	}
	return child
}
