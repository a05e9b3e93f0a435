// Package neural evaluates the recurrent networks decoded from blob genomes.
package neural

import (
	"math"

	"github.com/pthm-cable/blobs/genome"
)

// Input neuron indices written by the sensor stage.
const (
	InputChemX  = 0 // summed x offset to nearby chems
	InputChemY  = 1 // summed y offset to nearby chems
	InputEnergy = 2
)

// Output neuron indices.
const (
	OutputMoveX     = 0
	OutputMoveY     = 1
	OutputConsume   = 2
	OutputReproduce = 3
)

// IntentThreshold is the rescaled output level above which an intent fires.
const IntentThreshold = 0.7

// Initial activation values.
const (
	initialInputWeight    = 0
	initialInternalWeight = 0.5
	initialOutputWeight   = 0
)

// Neuron holds an activation output and the weighted input pending for it.
type Neuron struct {
	Weight float32
	Sum    float32
}

// Activate replaces Weight with the sigmoid of Sum. Sum is left untouched.
func (n *Neuron) Activate() {
	n.Weight = Sigmoid(n.Sum)
}

// Sigmoid is the logistic function 1 / (1 + e^-x).
func Sigmoid(x float32) float32 {
	e := float32(math.Exp(float64(-x)))
	return 1 / (1 + e)
}

// Output is the decision produced by one evaluation.
type Output struct {
	DX, DY    float32 // motion deltas in [-1, 1]
	Consume   bool
	Reproduce bool
}

// Controller owns one decoded topology and the neuron layers it drives.
// Layers are fixed-size arrays addressed by synapse indices, so evaluation
// never allocates.
type Controller struct {
	topo     *genome.Topology
	inputs   [genome.NumInputs]Neuron
	internal [genome.MaxInternal]Neuron
	outputs  [genome.NumOutputs]Neuron

	// Oscillator is an external timing signal kept beside the network.
	// No synapse can address it; the input layer stays at NumInputs.
	Oscillator float32
}

// New creates a controller for topo with neurons at their initial values.
func New(topo *genome.Topology) *Controller {
	c := &Controller{topo: topo}
	c.Reset()
	return c
}

// FromGenome decodes g with layout and wraps the result in a controller.
func FromGenome(g genome.Genome, layout genome.Layout) *Controller {
	return New(layout.Decode(g))
}

// Reset restores every neuron to its initial state.
func (c *Controller) Reset() {
	for i := range c.inputs {
		c.inputs[i] = Neuron{Weight: initialInputWeight}
	}
	for i := range c.internal {
		c.internal[i] = Neuron{Weight: initialInternalWeight}
	}
	for i := range c.outputs {
		c.outputs[i] = Neuron{Weight: initialOutputWeight}
	}
	c.Oscillator = 0
}

// SetInput writes a sensed value directly into input neuron i's Weight.
func (c *Controller) SetInput(i int, v float32) { c.inputs[i].Weight = v }

// Input returns input neuron i's current value.
func (c *Controller) Input(i int) float32 { return c.inputs[i].Weight }

// Output returns output neuron i's last activation in [0, 1].
func (c *Controller) Output(i int) float32 { return c.outputs[i].Weight }

// Eval runs one fixed-order pass over the synapse categories and returns the
// rescaled outputs. Internal neurons are re-activated each time they act as a
// source, so later categories see sums accumulated by earlier ones.
func (c *Controller) Eval() Output {
	t := c.topo

	for _, s := range t.Synapses(genome.ToInternal) {
		c.internal[s.Dest].Sum += c.inputs[s.Source].Weight * s.Weight
	}
	for _, s := range t.Synapses(genome.SelfLoop) {
		n := &c.internal[s.Source]
		n.Activate()
		n.Sum += n.Weight * s.Weight
	}
	for _, s := range t.Synapses(genome.InternalToInternal) {
		src := &c.internal[s.Source]
		src.Activate()
		c.internal[s.Dest].Sum += src.Weight * s.Weight
	}
	for _, s := range t.Synapses(genome.InternalToOutput) {
		src := &c.internal[s.Source]
		src.Activate()
		c.outputs[s.Dest].Sum += src.Weight * s.Weight
	}
	for _, s := range t.Synapses(genome.Direct) {
		c.outputs[s.Dest].Sum += c.inputs[s.Source].Weight * s.Weight
	}

	for i := range c.outputs {
		c.outputs[i].Activate()
	}

	for i := range c.inputs {
		c.inputs[i].Sum = 0
	}
	for i := range c.internal {
		c.internal[i].Sum = 0
	}
	for i := range c.outputs {
		c.outputs[i].Sum = 0
	}

	return Output{
		DX:        rescale(c.outputs[OutputMoveX].Weight),
		DY:        rescale(c.outputs[OutputMoveY].Weight),
		Consume:   rescale(c.outputs[OutputConsume].Weight) > IntentThreshold,
		Reproduce: rescale(c.outputs[OutputReproduce].Weight) > IntentThreshold,
	}
}

// rescale maps a sigmoid output from [0, 1] to [-1, 1].
func rescale(w float32) float32 {
	return 2*w - 1
}

// State is a copy of all neuron activations, for inspection.
type State struct {
	Inputs     [genome.NumInputs]float32
	Internal   []float32
	Outputs    [genome.NumOutputs]float32
	Oscillator float32
}

// State captures the current activations. Only decoded internal neurons are included.
func (c *Controller) State() State {
	s := State{
		Internal:   make([]float32, c.topo.Internal()),
		Oscillator: c.Oscillator,
	}
	for i := range c.inputs {
		s.Inputs[i] = c.inputs[i].Weight
	}
	for i := range s.Internal {
		s.Internal[i] = c.internal[i].Weight
	}
	for i := range c.outputs {
		s.Outputs[i] = c.outputs[i].Weight
	}
	return s
}
