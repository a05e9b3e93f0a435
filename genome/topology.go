package genome

import (
	"fmt"
	"strings"
)

// Layer sizes shared by every network.
const (
	NumInputs   = 3
	NumOutputs  = 4
	MaxInternal = 15
)

// Category classifies a synapse by the layers it connects.
// The set is closed; evaluation processes categories in a fixed order.
type Category uint8

const (
	Direct             Category = iota // input -> output
	ToInternal                         // input -> internal
	InternalToOutput                   // internal -> output
	SelfLoop                           // internal -> same internal
	InternalToInternal                 // internal -> other internal
	NumCategories
)

// EvalOrder is the order in which a controller processes synapse categories.
var EvalOrder = [NumCategories]Category{ToInternal, SelfLoop, InternalToInternal, InternalToOutput, Direct}

var categoryNames = [NumCategories]string{"direct", "to_internal", "internal_to_output", "self_loop", "internal_to_internal"}

func (c Category) String() string {
	if c < NumCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Synapse is one decoded, validated connection.
type Synapse struct {
	Source   uint8
	Dest     uint8
	Weight   float32
	Category Category
}

// Topology is the network structure decoded from a genome.
// Synapse lists keep decode (slot) order and are never modified after Decode.
type Topology struct {
	internal int
	lists    [NumCategories][]Synapse
}

// Internal returns the internal neuron count (0..MaxInternal).
func (t *Topology) Internal() int { return t.internal }

// Synapses returns the synapses of category c in decode order.
// The returned slice is shared; callers must not modify it.
func (t *Topology) Synapses(c Category) []Synapse { return t.lists[c] }

// Len returns the total number of synapses that survived validation.
func (t *Topology) Len() int {
	n := 0
	for _, l := range t.lists {
		n += len(l)
	}
	return n
}

// String renders the topology one synapse per line, in evaluation order.
func (t *Topology) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "internal=%d synapses=%d", t.internal, t.Len())
	for _, c := range EvalOrder {
		for _, s := range t.lists[c] {
			fmt.Fprintf(&b, "\n  %-20s %2d -> %2d  %+.5f", c, s.Source, s.Dest, s.Weight)
		}
	}
	return b.String()
}

// Layout selects how the source and destination indices are read from a descriptor.
type Layout uint8

const (
	// LayoutReference reads the source index from bits 15-14 and the destination
	// index from bits 11-9. Both fields overlap their layer flag bit, which is what
	// the historical decoder did and what its reference genomes were bred under.
	LayoutReference Layout = iota
	// LayoutNominal reads the source index from bits 14-12 and the destination
	// index from bits 10-8.
	LayoutNominal
)

func (l Layout) String() string {
	switch l {
	case LayoutReference:
		return "reference"
	case LayoutNominal:
		return "nominal"
	}
	return fmt.Sprintf("layout(%d)", uint8(l))
}

// ParseLayout maps a config name to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reference":
		return LayoutReference, nil
	case "nominal":
		return LayoutNominal, nil
	}
	return 0, fmt.Errorf("genome: unknown field layout %q", s)
}

// descriptor is a parsed but not yet validated synapse slot.
type descriptor struct {
	srcInternal bool
	dstInternal bool
	src, dst    uint8
	weight      float32
}

func (l Layout) parse(d uint16) descriptor {
	p := descriptor{
		srcInternal: d&(1<<15) != 0,
		dstInternal: d&(1<<11) != 0,
		// Two's-complement weight code scaled to [-4, 4).
		weight: float32(int8(d&0xff)) / 32,
	}
	if l == LayoutNominal {
		p.src = uint8(d>>12) & 7
		p.dst = uint8(d>>8) & 7
	} else {
		p.src = uint8(d>>14) & 3
		p.dst = uint8(d>>9) & 7
	}
	return p
}

// classify returns the category of d and whether its indices fit the layers.
func classify(d descriptor, nInternal int) (Category, bool) {
	n := uint8(nInternal)
	switch {
	case !d.srcInternal && !d.dstInternal:
		return Direct, d.src < NumInputs && d.dst < NumOutputs
	case !d.srcInternal:
		return ToInternal, d.src < NumInputs && d.dst < n
	case !d.dstInternal:
		return InternalToOutput, d.src < n && d.dst < NumOutputs
	case d.src == d.dst:
		return SelfLoop, d.src < n
	default:
		return InternalToInternal, d.src < n && d.dst < n
	}
}

// Decode derives a topology from g using the reference field layout.
func Decode(g Genome) *Topology {
	return LayoutReference.Decode(g)
}

// Decode derives a topology from g. Descriptors whose indices fall outside their
// layers are dropped; a genome with no valid descriptor yields an empty topology.
func (l Layout) Decode(g Genome) *Topology {
	t := &Topology{internal: g.InternalCount()}
	for slot := 1; slot <= Slots; slot++ {
		d := l.parse(g.Descriptor(slot))
		cat, ok := classify(d, t.internal)
		if !ok {
			continue
		}
		t.lists[cat] = append(t.lists[cat], Synapse{
			Source:   d.src,
			Dest:     d.dst,
			Weight:   d.weight,
			Category: cat,
		})
	}
	return t
}
