package guard

import "github.com/zeusync/guardai/internal/core/systems/physics"

// Blackboard is the memory shared by the leaves of one guard. Only leaves
// read or write it, always from the guard's own tick.
type Blackboard struct {
	LastKnownPosition physics.Vec3
	HasLastKnown      bool
	// Target is the entity last detected, NoEntity before any detection.
	Target physics.EntityID
	// FollowCounter is the remaining pursuit budget after losing sight.
	FollowCounter int
	Curious       bool
}

func (b *Blackboard) remember(id physics.EntityID, pos physics.Vec3) {
	b.Target = id
	b.LastKnownPosition = pos
	b.HasLastKnown = true
}
