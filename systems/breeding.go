package systems

import (
	"math/rand"

	"github.com/pthm-cable/blobs/components"
)

// ShouldReproduce draws whether a blob attempts to reproduce this round.
// drive is the raw reproduce output in [0, 1]; above the threshold the
// attempt probability is the excess.
func ShouldReproduce(rng *rand.Rand, drive float32) bool {
	if drive <= cachedDriveThreshold {
		return false
	}
	return rng.Float64() < float64(drive-cachedDriveThreshold)
}

// SplitEnergy settles the energy of a reproduction attempt. A parent at or
// below the starvation level spends everything and produces no child;
// otherwise parent and child each get half.
func SplitEnergy(parent *components.Blob) (childEnergy float32, ok bool) {
	if parent.Energy <= cachedStarveEnergy {
		parent.Energy = 0
		return 0, false
	}
	parent.Energy /= 2
	return parent.Energy, true
}
