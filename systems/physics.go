package systems

import (
	"math/rand"

	"github.com/pthm-cable/blobs/components"
)

// Drift integrates one tick of water movement: a Brownian kick is added to the
// accumulated acceleration, velocity integrates it, position wraps at the world
// edges, drag decays velocity and acceleration is cleared.
func Drift(rng *rand.Rand, pos *components.Position, vel *components.Velocity, acc *components.Acceleration, width, height float32) {
	acc.X += float32(rng.NormFloat64()) / cachedBrownianScale
	acc.Y += float32(rng.NormFloat64()) / cachedBrownianScale

	vel.X += acc.X
	vel.Y += acc.Y

	pos.X = Wrap(pos.X+vel.X, width)
	pos.Y = Wrap(pos.Y+vel.Y, height)

	vel.X *= cachedDrag
	vel.Y *= cachedDrag

	acc.X = 0
	acc.Y = 0
}
