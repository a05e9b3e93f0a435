package neural

import (
	"fmt"

	"github.com/pthm-cable/blobs/genome"
)

// IODescriptor describes a controller input or output for display.
type IODescriptor struct {
	ID          string  // Unique identifier
	Label       string  // Display name
	Description string  // Extended description
	Min         float32 // Minimum value
	Max         float32 // Maximum value
	IsCentered  bool    // True for values presented on [-1, 1]
}

// InputDescriptors returns metadata for the input layer, indexed like SetInput.
func InputDescriptors() []IODescriptor {
	return []IODescriptor{
		{ID: "chem_x", Label: "Chem X", Description: "σ of summed x offsets to nearby chems", Min: 0, Max: 1},
		{ID: "chem_y", Label: "Chem Y", Description: "σ of summed y offsets to nearby chems", Min: 0, Max: 1},
		{ID: "energy", Label: "Energy", Description: "σ of current energy", Min: 0, Max: 1},
	}
}

// OutputDescriptors returns metadata for the output layer as reported by Eval.
func OutputDescriptors() []IODescriptor {
	return []IODescriptor{
		{ID: "move_x", Label: "Move X", Description: "Acceleration delta on x", Min: -1, Max: 1, IsCentered: true},
		{ID: "move_y", Label: "Move Y", Description: "Acceleration delta on y", Min: -1, Max: 1, IsCentered: true},
		{ID: "consume", Label: "Consume", Description: "Consume intent (rescaled > 0.7)", Min: -1, Max: 1, IsCentered: true},
		{ID: "reproduce", Label: "Reproduce", Description: "Reproduce intent; raw activation is the drive", Min: -1, Max: 1, IsCentered: true},
	}
}

// InputByID returns the descriptor for a specific input by ID.
func InputByID(id string) (IODescriptor, bool) {
	return byID(InputDescriptors(), id)
}

// OutputByID returns the descriptor for a specific output by ID.
func OutputByID(id string) (IODescriptor, bool) {
	return byID(OutputDescriptors(), id)
}

func byID(ds []IODescriptor, id string) (IODescriptor, bool) {
	for _, d := range ds {
		if d.ID == id {
			return d, true
		}
	}
	return IODescriptor{}, false
}

// SynapseLabels names the source and destination neurons of s.
func SynapseLabels(s genome.Synapse) (src, dst string) {
	internal := func(i uint8) string { return fmt.Sprintf("internal_%d", i) }
	switch s.Category {
	case genome.Direct:
		return InputDescriptors()[s.Source].ID, OutputDescriptors()[s.Dest].ID
	case genome.ToInternal:
		return InputDescriptors()[s.Source].ID, internal(s.Dest)
	case genome.InternalToOutput:
		return internal(s.Source), OutputDescriptors()[s.Dest].ID
	default:
		return internal(s.Source), internal(s.Dest)
	}
}
