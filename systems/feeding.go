package systems

import "github.com/pthm-cable/blobs/components"

// FoodItem is a per-tick view of one food entity for feeding.
type FoodItem struct {
	Pos       components.Position
	Nutrition float32
	Eaten     bool
}

// InEatRange reports whether a blob at pos can eat food at food.
func InEatRange(pos, food components.Position) bool {
	return distanceSq(pos.X, pos.Y, food.X, food.Y) < cachedEatRadiusSq
}

// Feed lets the blob at pos eat every uneaten item in range, marking each as
// eaten. Returns the number of items eaten.
func Feed(pos components.Position, blob *components.Blob, foods []FoodItem) int {
	n := 0
	for i := range foods {
		f := &foods[i]
		if f.Eaten || !InEatRange(pos, f.Pos) {
			continue
		}
		f.Eaten = true
		blob.Energy += f.Nutrition
		n++
	}
	return n
}
