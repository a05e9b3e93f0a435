package systems

import "math"

// Wrap maps v into [0, size) for toroidal world coordinates.
func Wrap(v, size float32) float32 {
	m := float32(math.Mod(float64(v), float64(size)))
	if m < 0 {
		m += size
	}
	// Rounding can land exactly on size for tiny negative inputs.
	if m >= size {
		m = 0
	}
	return m
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// abs32 returns the absolute value of x.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
