package systems

import (
	"github.com/pthm-cable/blobs/components"
	"github.com/pthm-cable/blobs/neural"
)

// ApplyOutput turns a network decision into acceleration and metabolic cost.
// Movement cost grows with the square of the summed motion deltas.
// Returns the energy spent.
func ApplyOutput(acc *components.Acceleration, blob *components.Blob, out neural.Output) float32 {
	acc.X += out.DX
	acc.Y += out.DY

	mov := abs32(out.DX) + abs32(out.DY)
	cost := mov*mov/cachedMoveCostDivisor + cachedBaseDrain

	blob.Energy -= cost
	blob.Age += cachedAgeStep
	return cost
}
