package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y float32
}

// Acceleration accumulates forces for the current tick. Drift consumes and clears it.
type Acceleration struct {
	X, Y float32
}
