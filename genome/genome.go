// Package genome encodes a blob's entire brain in a single 128-bit value.
//
// The top four bits hold the internal neuron count, the next twelve are
// reserved, and the remaining 112 bits are seven 16-bit synapse descriptors.
// Any 128-bit pattern is a legal genome.
package genome

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"lukechampine.com/uint128"
)

// Layout constants.
const (
	Bits           = 128
	Slots          = 7  // synapse descriptor slots
	SlotBits       = 16 // width of one descriptor
	internalOffset = 124
	internalWidth  = 4
	reservedBits   = 12
)

// ErrInvalid is returned when a genome's text form cannot be parsed.
var ErrInvalid = errors.New("genome: invalid value")

// Genome is an immutable 128-bit value. The zero value is a valid genome.
type Genome struct {
	bits uint128.Uint128
}

// New builds a genome from its high and low 64-bit halves.
func New(hi, lo uint64) Genome {
	return Genome{bits: uint128.New(lo, hi)}
}

// Random draws a uniformly random genome from rng.
func Random(rng *rand.Rand) Genome {
	return New(rng.Uint64(), rng.Uint64())
}

// Parse reads a genome from its decimal integer form.
func Parse(s string) (Genome, error) {
	u, err := uint128.FromString(strings.TrimSpace(s))
	if err != nil {
		return Genome{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}
	return Genome{bits: u}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Genome {
	g, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return g
}

// Hi returns the upper 64 bits.
func (g Genome) Hi() uint64 { return g.bits.Hi }

// Lo returns the lower 64 bits.
func (g Genome) Lo() uint64 { return g.bits.Lo }


// Bit reports whether bit i (0 = least significant) is set.
func (g Genome) Bit(i int) bool {
	return g.field(uint(i), 1) == 1
}

// Flip returns a copy of g with bit i inverted.
func (g Genome) Flip(i int) Genome {
	return Genome{bits: g.bits.Xor(uint128.From64(1).Lsh(uint(i)))}
}

// Diff returns the indices of the bits that differ between g and o, ascending.
func (g Genome) Diff(o Genome) []int {
	x := g.bits.Xor(o.bits)
	var idx []int
	for !x.IsZero() {
		i := x.TrailingZeros()
		idx = append(idx, i)
		x = x.Xor(uint128.From64(1).Lsh(uint(i)))
	}
	return idx
}

// InternalCount returns the number of internal neurons encoded in the top four bits.
func (g Genome) InternalCount() int {
	return int(g.field(internalOffset, internalWidth))
}

// Descriptor returns the raw 16-bit synapse descriptor for slot 1..Slots.
// Slot 1 sits directly below the reserved field; slot 7 is the lowest 16 bits.
func (g Genome) Descriptor(slot int) uint16 {
	off := uint(Slots-slot) * SlotBits
	return uint16(g.field(off, SlotBits))
}

// field extracts width bits (width <= 64) starting at bit offset.
func (g Genome) field(offset, width uint) uint64 {
	v := g.bits.Rsh(offset).Lo
	if width >= 64 {
		return v
	}
	return v & (1<<width - 1)
}

// String returns the decimal integer form.
func (g Genome) String() string {
	return g.bits.String()
}

// MarshalText implements encoding.TextMarshaler.
func (g Genome) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Genome) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Reserved returns the 12 unused bits between the internal count and slot 1.
func (g Genome) Reserved() uint16 {
	return uint16(g.field(internalOffset-reservedBits, reservedBits))
}
