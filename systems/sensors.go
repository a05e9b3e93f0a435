// Package systems provides per-entity simulation steps.
package systems

import (
	"math"

	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/neural"
	"github.com/pthm-cable/blobs/proximity"
)

// SensorReading is the raw input a blob perceives in one tick.
type SensorReading struct {
	ChemX, ChemY float32 // summed offsets from nearby chems to the blob
	ChemCount    int
	Energy       float32
	Oscillator   float32
}

// ReadSensors sums the offsets to every chem within the sensing radius.
// chems is normally the pruned run returned by proximity.Index.Range; any
// superset gives the same result because each marker is distance-checked.
func ReadSensors(pos components.Position, blob *components.Blob, chems []proximity.Point) SensorReading {
	r := SensorReading{Energy: blob.Energy}
	for _, c := range chems {
		if distanceSq(pos.X, pos.Y, c.X, c.Y) < cachedSensorRadiusSq {
			r.ChemX += pos.X - c.X
			r.ChemY += pos.Y - c.Y
			r.ChemCount++
		}
	}
	r.Oscillator = 0.5 + float32(math.Sin(float64(blob.Age*cachedOscillatorFreq)))/2
	return r
}

// Apply writes the reading into ctrl. Each sensed quantity is squashed through
// the sigmoid before it lands in the input neuron.
func (r SensorReading) Apply(ctrl *neural.Controller) {
	ctrl.SetInput(neural.InputChemX, neural.Sigmoid(r.ChemX))
	ctrl.SetInput(neural.InputChemY, neural.Sigmoid(r.ChemY))
	ctrl.SetInput(neural.InputEnergy, neural.Sigmoid(r.Energy))
	ctrl.Oscillator = r.Oscillator
}

// ComputeSensors queries the chem index around pos and feeds the result to ctrl.
func ComputeSensors(ctrl *neural.Controller, pos components.Position, blob *components.Blob, chems *proximity.Index) SensorReading {
	r := ReadSensors(pos, blob, chems.Range(pos.X, cachedSensorRadius))
	r.Apply(ctrl)
	return r
}
